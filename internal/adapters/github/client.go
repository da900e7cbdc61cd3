/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package github

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"

    "github.com/digdir/bod-roadmapreport/internal/config"
    "github.com/rs/zerolog"
    "golang.org/x/time/rate"
)

// Client speaks the GitHub GraphQL API. Requests are throttled client-side
// because the report cache exists precisely to protect a rate-limited
// upstream.
type Client struct {
    endpoint string
    token    string
    http     *http.Client
    limiter  *rate.Limiter
    log      zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    rps := cfg.GitHubRPS
    if rps <= 0 { rps = 2 }
    return &Client{
        endpoint: cfg.GitHubGraphQLURL,
        token:    cfg.GitHubToken,
        http:     &http.Client{Timeout: cfg.HTTPTimeout},
        limiter:  rate.NewLimiter(rate.Limit(rps), 1),
        log:      log,
    }
}

type graphQLRequest struct {
    Query     string         `json:"query"`
    Variables map[string]any `json:"variables"`
}

func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
    if c.endpoint == "" { return errors.New("github: empty endpoint") }
    if err := c.limiter.Wait(ctx); err != nil { return err }

    b, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
    if err != nil { return err }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
    if err != nil { return err }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+c.token)

    resp, err := c.http.Do(req)
    if err != nil { return err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        body, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("github api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
    }
    return json.NewDecoder(resp.Body).Decode(out)
}
