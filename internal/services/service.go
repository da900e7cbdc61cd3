/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/digdir/bod-roadmapreport/internal/cache"
    "github.com/digdir/bod-roadmapreport/internal/config"
    "github.com/digdir/bod-roadmapreport/internal/domain"
    "github.com/digdir/bod-roadmapreport/internal/metrics"
    "github.com/rs/zerolog"
)

// Configuration errors, surfaced before any lock or network traffic.
var (
    ErrMissingToken   = errors.New("missing github token")
    ErrMissingProject = errors.New("missing project node id")
)

type fetcher interface {
    ProjectItems(ctx context.Context, projectID, requiredLabel string) ([]domain.Issue, error)
}

// Service owns the check-fetch-persist critical section. At most one caller
// is inside it at a time, so a stale cache costs exactly one upstream fetch
// no matter how many report requests pile up.
type Service struct {
    cfg   config.Config
    log   zerolog.Logger
    gh    fetcher
    store *cache.Store
    calc  metrics.Calculator

    mu sync.Mutex
}

func New(cfg config.Config, log zerolog.Logger, gh fetcher, store *cache.Store) *Service {
    return &Service{
        cfg:   cfg,
        log:   log,
        gh:    gh,
        store: store,
        calc:  metrics.Calculator{ProductPrefix: cfg.ProductPrefix},
    }
}

// Issues returns the current batch, from cache when fresh, otherwise from
// one upstream fetch whose result replaces the snapshot. A failed fetch
// leaves the cache untouched and propagates to this caller only; queued
// callers re-run the check themselves.
func (s *Service) Issues(ctx context.Context) ([]domain.Issue, error) {
    if strings.TrimSpace(s.cfg.GitHubToken) == "" { return nil, ErrMissingToken }
    if strings.TrimSpace(s.cfg.ProjectNodeID) == "" { return nil, ErrMissingProject }

    s.mu.Lock()
    defer s.mu.Unlock()

    if s.store.Fresh(s.cfg.CacheTTL) {
        // a fresh but unreadable snapshot is a miss, fall through to fetch
        if issues := s.store.Read(); len(issues) > 0 {
            s.log.Debug().Int("issues", len(issues)).Dur("age", s.store.Age()).Msg("serving cached issues")
            return issues, nil
        }
    }

    issues, err := s.gh.ProjectItems(ctx, s.cfg.ProjectNodeID, s.cfg.RequiredLabel)
    if err != nil { return nil, fmt.Errorf("fetch roadmap issues: %w", err) }
    if err := s.store.Write(issues); err != nil { return nil, fmt.Errorf("write issue cache: %w", err) }
    s.log.Info().Int("issues", len(issues)).Msg("issue cache refreshed")
    return issues, nil
}

// Report maps the batch through the metric calculator. An issue without a
// product label is dropped from the report and logged, the rest of the
// batch survives.
func (s *Service) Report(ctx context.Context, now time.Time) ([]domain.IssueMetrics, error) {
    issues, err := s.Issues(ctx)
    if err != nil { return nil, err }
    out := make([]domain.IssueMetrics, 0, len(issues))
    for _, issue := range issues {
        m, err := s.calc.Compute(issue, now)
        if err != nil {
            s.log.Warn().Err(err).Int("number", issue.Number).Str("title", issue.Title).Msg("issue excluded from report")
            continue
        }
        out = append(out, m)
    }
    return out, nil
}

// Warm refreshes the cache if stale, discarding the batch. Used by the
// cron job so interactive requests mostly hit a warm snapshot.
func (s *Service) Warm(ctx context.Context) error {
    _, err := s.Issues(ctx)
    return err
}
