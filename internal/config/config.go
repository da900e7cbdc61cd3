/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "log"
    "os"
    "strconv"
    "strings"
    "time"
)

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string

    GitHubToken      string
    GitHubGraphQLURL string
    ProjectNodeID    string
    RequiredLabel    string
    ProductPrefix    string

    CacheFile string
    CacheTTL  time.Duration

    HTTPTimeout time.Duration
    GitHubRPS   float64

    WarmCron string
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func flt(key string, def float64) float64 {
    v := os.Getenv(key)
    if v == "" { return def }
    f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
    if err != nil { return def }
    return f
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "Europe/Oslo"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),

        GitHubToken:      getenv("GITHUB_TOKEN", ""),
        GitHubGraphQLURL: getenv("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql"),
        ProjectNodeID:    getenv("PROJECT_NODE_ID", ""),
        RequiredLabel:    getenv("REQUIRED_LABEL", ""),
        ProductPrefix:    getenv("PRODUCT_LABEL_PREFIX", "Produkt: "),

        CacheFile: getenv("CACHE_FILE", "data/issue-cache.json"),
        CacheTTL:  dur("CACHE_TTL", time.Hour),

        HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
        GitHubRPS:   flt("GITHUB_RPS", 2),

        WarmCron: getenv("WARM_CRON", "*/30 * * * *"),
    }

    // set global timezone if available
    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }
    return cfg
}
