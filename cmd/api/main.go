/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/digdir/bod-roadmapreport/internal/adapters/github"
    "github.com/digdir/bod-roadmapreport/internal/cache"
    "github.com/digdir/bod-roadmapreport/internal/config"
    httpx "github.com/digdir/bod-roadmapreport/internal/http"
    "github.com/digdir/bod-roadmapreport/internal/jobs"
    "github.com/digdir/bod-roadmapreport/internal/logger"
    "github.com/digdir/bod-roadmapreport/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)

    if cfg.GitHubToken == "" {
        log.Fatal().Msg("GITHUB_TOKEN is required")
    }
    if cfg.ProjectNodeID == "" {
        log.Fatal().Msg("PROJECT_NODE_ID is required")
    }

    // Adapters
    gh := github.NewClient(cfg, log)
    store := cache.NewStore(cfg.CacheFile)

    // Services
    svc := services.New(cfg, log, gh, store)

    // HTTP server (Gin)
    router := httpx.NewRouter(cfg, log, svc)

    // Cron
    cron := jobs.NewCron(cfg, log, svc)
    cron.Start()
    defer cron.Stop()

    // graceful shutdown
    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
