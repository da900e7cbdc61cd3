/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package metrics derives schedule-health numbers from a single roadmap
// issue. Everything here is a pure function of the issue and a caller
// supplied "now"; no clock is sampled internally.
package metrics

import (
    "errors"
    "fmt"
    "math"
    "strconv"
    "strings"
    "time"

    "github.com/digdir/bod-roadmapreport/internal/domain"
)

// Project field names as they appear on the roadmap board.
const (
    FieldProgression = "Progresjon (%)"
    FieldStart       = "Start"
    FieldEnd         = "Sluttdato"
    FieldEstimate    = "Estimerte ukesverk"
)

// ErrNoProductLabel marks an issue without a product classification label.
var ErrNoProductLabel = errors.New("no product label")

type Calculator struct {
    // ProductPrefix identifies the classification label, e.g. "Produkt: ".
    ProductPrefix string
}

// Compute derives the metric record for one issue. It fails only when the
// issue has no product label; every other missing or unparsable input falls
// back to a documented default.
func (c Calculator) Compute(issue domain.Issue, now time.Time) (domain.IssueMetrics, error) {
    product, ok := c.product(issue)
    if !ok {
        return domain.IssueMetrics{}, fmt.Errorf("issue #%d: %w", issue.Number, ErrNoProductLabel)
    }

    progression := c.progression(issue)
    start := parseDate(issue.Field(FieldStart))
    end := parseDate(issue.Field(FieldEnd))

    // an unknown start or end stays the zero-time sentinel; the day spans
    // below then come out with large magnitudes on purpose
    totalDays := roundDays(end.Sub(start))

    var daysOverdue float64
    switch {
    case issue.ClosedAt == nil && end.Before(now):
        daysOverdue = roundDays(now.Sub(end))
    case issue.ClosedAt != nil && issue.ClosedAt.After(end):
        daysOverdue = roundDays(issue.ClosedAt.Sub(end))
    }

    // zero or reversed spans would divide by zero; both ratios are defined
    // as 0 for that boundary
    var pctOverdue float64
    if totalDays != 0 {
        pctOverdue = math.Round(daysOverdue / totalDays * 100)
    }
    if pctOverdue < 0 { pctOverdue = 0 }

    var expected float64
    if totalDays != 0 {
        elapsed := now.Sub(start).Hours() / 24
        expected = clamp(math.Round(elapsed/totalDays*100), 0, 100)
    }

    var success *float64
    if !start.After(now) {
        v := clamp(progression-pctOverdue*3, 0, 100)
        success = &v
    }

    return domain.IssueMetrics{
        Number:              issue.Number,
        Title:               issue.Title,
        Product:             product,
        Progression:         progression,
        StartDate:           start,
        EndDate:             end,
        ClosedAt:            issue.ClosedAt,
        TotalDays:           totalDays,
        DaysOverdue:         daysOverdue,
        PercentageOverdue:   pctOverdue,
        EstimatedManWeeks:   c.estimate(issue),
        SuccessIndicator:    success,
        ExpectedProgression: expected,
    }, nil
}

// product returns the first label carrying the product prefix, stripped.
func (c Calculator) product(issue domain.Issue) (string, bool) {
    for _, l := range issue.Labels {
        if strings.HasPrefix(l, c.ProductPrefix) {
            return strings.TrimSpace(strings.TrimPrefix(l, c.ProductPrefix)), true
        }
    }
    return "", false
}

// progression falls back to 100 for closed issues and 0 for open ones when
// the field is absent or not a number.
func (c Calculator) progression(issue domain.Issue) float64 {
    v, err := strconv.ParseFloat(strings.TrimSpace(issue.Field(FieldProgression)), 64)
    if err != nil {
        if issue.ClosedAt != nil { return 100 }
        return 0
    }
    return v
}

// estimate normalizes the decimal comma the board uses before parsing.
func (c Calculator) estimate(issue domain.Issue) float64 {
    raw := strings.ReplaceAll(strings.TrimSpace(issue.Field(FieldEstimate)), ",", ".")
    v, err := strconv.ParseFloat(raw, 64)
    if err != nil { return 0 }
    return v
}

func parseDate(s string) time.Time {
    s = strings.TrimSpace(s)
    if t, err := time.Parse("2006-01-02", s); err == nil { return t }
    if t, err := time.Parse(time.RFC3339, s); err == nil { return t }
    return time.Time{}
}

func roundDays(d time.Duration) float64 {
    return math.Round(d.Hours() / 24)
}

func clamp(v, lo, hi float64) float64 {
    if v < lo { return lo }
    if v > hi { return hi }
    return v
}
