/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/digdir/bod-roadmapreport/internal/config"
    "github.com/digdir/bod-roadmapreport/internal/domain"
    "github.com/digdir/bod-roadmapreport/internal/services"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
)

type service interface {
    Issues(ctx context.Context) ([]domain.Issue, error)
    Report(ctx context.Context, now time.Time) ([]domain.IssueMetrics, error)
    Warm(ctx context.Context) error
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Report(c *gin.Context) {
    report, err := h.svc.Report(c.Request.Context(), time.Now())
    if err != nil {
        c.JSON(statusFor(err), gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, report)
}

func (h *Handlers) Issues(c *gin.Context) {
    issues, err := h.svc.Issues(c.Request.Context())
    if err != nil {
        c.JSON(statusFor(err), gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, issues)
}

func (h *Handlers) Refresh(c *gin.Context) {
    // Run in background detached from the HTTP request to avoid context cancellation
    go func() {
        if err := h.svc.Warm(context.Background()); err != nil {
            h.log.Error().Err(err).Msg("manual refresh failed")
        }
    }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// statusFor maps configuration errors to 500 and upstream failures to 502.
func statusFor(err error) int {
    if errors.Is(err, services.ErrMissingToken) || errors.Is(err, services.ErrMissingProject) {
        return http.StatusInternalServerError
    }
    return http.StatusBadGateway
}
