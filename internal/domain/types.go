/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package domain

import "time"

// Issue is one roadmap item as flattened from the project board.
// Serialized verbatim into the cache snapshot, immutable after fetch.
type Issue struct {
    Number   int          `json:"number"`
    Title    string       `json:"title"`
    ClosedAt *time.Time   `json:"closedAt,omitempty"`
    Labels   []string     `json:"labels"`
    Fields   []FieldValue `json:"fields"`
}

// FieldValue is a named project field coerced to string, whatever the
// source type (text, single-select, number, date) was.
type FieldValue struct {
    Name  string `json:"name"`
    Value string `json:"value"`
}

// Field returns the value of the named field, empty string if absent.
func (i Issue) Field(name string) string {
    for _, f := range i.Fields {
        if f.Name == name { return f.Value }
    }
    return ""
}

// HasLabel reports whether the issue carries the exact label.
func (i Issue) HasLabel(name string) bool {
    for _, l := range i.Labels {
        if l == name { return true }
    }
    return false
}

// IssueMetrics is the derived schedule-health record served to consumers.
// Recomputed on every request, never persisted.
type IssueMetrics struct {
    Number              int        `json:"number"`
    Title               string     `json:"title"`
    Product             string     `json:"product"`
    Progression         float64    `json:"progression"`
    StartDate           time.Time  `json:"startDate"`
    EndDate             time.Time  `json:"endDate"`
    ClosedAt            *time.Time `json:"closedAt,omitempty"`
    TotalDays           float64    `json:"totalDays"`
    DaysOverdue         float64    `json:"daysOverdue"`
    PercentageOverdue   float64    `json:"percentageOverdue"`
    EstimatedManWeeks   float64    `json:"estimatedManWeeks"`
    SuccessIndicator    *float64   `json:"successIndicator"`
    ExpectedProgression float64    `json:"expectedProgression"`
}
