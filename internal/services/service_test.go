/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "os"
    "path/filepath"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/digdir/bod-roadmapreport/internal/cache"
    "github.com/digdir/bod-roadmapreport/internal/config"
    "github.com/digdir/bod-roadmapreport/internal/domain"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type stubFetcher struct {
    calls  int32
    issues []domain.Issue
    err    error
    delay  time.Duration
}

func (f *stubFetcher) ProjectItems(ctx context.Context, projectID, requiredLabel string) ([]domain.Issue, error) {
    atomic.AddInt32(&f.calls, 1)
    if f.delay > 0 { time.Sleep(f.delay) }
    if f.err != nil { return nil, f.err }
    return f.issues, nil
}

func testConfig() config.Config {
    return config.Config{
        GitHubToken:   "token",
        ProjectNodeID: "PVT_test",
        ProductPrefix: "Produkt: ",
        CacheTTL:      time.Hour,
    }
}

func batch() []domain.Issue {
    return []domain.Issue{
        {
            Number: 1,
            Title:  "Ny innboks",
            Labels: []string{"Produkt: Altinn"},
            Fields: []domain.FieldValue{
                {Name: "Progresjon (%)", Value: "50"},
                {Name: "Start", Value: "2025-01-01"},
                {Name: "Sluttdato", Value: "2025-12-31"},
            },
        },
    }
}

func newTestService(t *testing.T, f *stubFetcher) (*Service, string) {
    t.Helper()
    path := filepath.Join(t.TempDir(), "issues.json")
    svc := New(testConfig(), zerolog.Nop(), f, cache.NewStore(path))
    return svc, path
}

func TestIssues_ConfigurationErrors(t *testing.T) {
    f := &stubFetcher{issues: batch()}

    t.Run("missing token", func(t *testing.T) {
        cfg := testConfig()
        cfg.GitHubToken = ""
        svc := New(cfg, zerolog.Nop(), f, cache.NewStore(filepath.Join(t.TempDir(), "c.json")))
        _, err := svc.Issues(context.Background())
        require.ErrorIs(t, err, ErrMissingToken)
    })

    t.Run("missing project", func(t *testing.T) {
        cfg := testConfig()
        cfg.ProjectNodeID = ""
        svc := New(cfg, zerolog.Nop(), f, cache.NewStore(filepath.Join(t.TempDir(), "c.json")))
        _, err := svc.Issues(context.Background())
        require.ErrorIs(t, err, ErrMissingProject)
    })

    assert.EqualValues(t, 0, atomic.LoadInt32(&f.calls), "configuration errors must not reach upstream")
}

func TestIssues_FetchesWhenCacheAbsent(t *testing.T) {
    f := &stubFetcher{issues: batch()}
    svc, path := newTestService(t, f)

    got, err := svc.Issues(context.Background())
    require.NoError(t, err)
    assert.Equal(t, batch(), got)
    assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls))

    // the fetch result must have been persisted
    _, statErr := os.Stat(path)
    assert.NoError(t, statErr)
}

func TestIssues_ServesCachedWhenFresh(t *testing.T) {
    f := &stubFetcher{issues: batch()}
    svc, _ := newTestService(t, f)

    _, err := svc.Issues(context.Background())
    require.NoError(t, err)
    got, err := svc.Issues(context.Background())
    require.NoError(t, err)

    assert.Equal(t, batch(), got)
    assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls), "second call must hit the cache")
}

func TestIssues_FetchErrorLeavesCacheUntouched(t *testing.T) {
    f := &stubFetcher{err: errors.New("github api status=502 body=bad gateway")}
    svc, path := newTestService(t, f)

    _, err := svc.Issues(context.Background())
    require.Error(t, err)
    assert.ErrorContains(t, err, "status=502")

    _, statErr := os.Stat(path)
    assert.True(t, os.IsNotExist(statErr), "failed fetch must not write a snapshot")
}

func TestIssues_MalformedCacheTriggersFetch(t *testing.T) {
    f := &stubFetcher{issues: batch()}
    svc, path := newTestService(t, f)

    // a fresh-looking but unreadable snapshot must count as a miss
    require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o644))

    got, err := svc.Issues(context.Background())
    require.NoError(t, err)
    assert.Equal(t, batch(), got)
    assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls))
}

func TestIssues_ConcurrentStaleCacheFetchesOnce(t *testing.T) {
    f := &stubFetcher{issues: batch(), delay: 50 * time.Millisecond}
    svc, _ := newTestService(t, f)

    const callers = 10
    var wg sync.WaitGroup
    errs := make([]error, callers)
    for i := 0; i < callers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = svc.Issues(context.Background())
        }(i)
    }
    wg.Wait()

    for i, err := range errs {
        require.NoError(t, err, "caller %d", i)
    }
    assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls), "stale cache must cost exactly one upstream fetch")
}

func TestReport_SkipsIssuesWithoutProductLabel(t *testing.T) {
    issues := append(batch(), domain.Issue{Number: 99, Title: "Uklassifisert", Labels: []string{"roadmap"}})
    f := &stubFetcher{issues: issues}
    svc, _ := newTestService(t, f)

    report, err := svc.Report(context.Background(), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
    require.NoError(t, err)
    require.Len(t, report, 1, "unlabelled issue is excluded, batch survives")
    assert.Equal(t, 1, report[0].Number)
    assert.Equal(t, "Altinn", report[0].Product)
    assert.Equal(t, 50.0, report[0].Progression)
}

func TestReport_PropagatesFetchError(t *testing.T) {
    f := &stubFetcher{err: errors.New("boom")}
    svc, _ := newTestService(t, f)

    _, err := svc.Report(context.Background(), time.Now())
    require.Error(t, err)
}

func TestWarm_RefreshesCache(t *testing.T) {
    f := &stubFetcher{issues: batch()}
    svc, path := newTestService(t, f)

    require.NoError(t, svc.Warm(context.Background()))
    _, statErr := os.Stat(path)
    assert.NoError(t, statErr)
    // warming a fresh cache is a no-op
    require.NoError(t, svc.Warm(context.Background()))
    assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls))
}
