package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/insights"
	"github.com/kosarica/insight-service/internal/storage"
	"github.com/kosarica/insight-service/internal/stores"
	"github.com/kosarica/insight-service/internal/weather"
)

func TestSchedulerRunsAndStops(t *testing.T) {
	var runs atomic.Int32
	s := New(nil, Job{
		Name:       "tick",
		Interval:   5 * time.Millisecond,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}, Job{Name: "disabled", Run: func(ctx context.Context) error {
		t.Error("job without interval must not run")
		return nil
	}})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	s.Stop()
	s.Stop()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
	assert.Equal(t, []string{"tick", "disabled"}, s.Jobs())
}

func TestSchedulerStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(nil, Job{Name: "idle", Interval: time.Hour, Run: func(ctx context.Context) error { return nil }})
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

func TestRunOnce(t *testing.T) {
	boom := errors.New("boom")
	s := New(nil, Job{Name: "fails", Interval: time.Hour, Run: func(ctx context.Context) error { return boom }})

	assert.ErrorIs(t, s.RunOnce(context.Background(), "fails"), boom)
	assert.ErrorIs(t, s.RunOnce(context.Background(), "missing"), ErrUnknownJob)
}

type fakeRefresher struct {
	mu     sync.Mutex
	points []weather.Point
	failOn string
}

func (f *fakeRefresher) Refresh(ctx context.Context, p weather.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
	if p.Label == f.failOn {
		return errors.New("upstream down")
	}
	return nil
}

func TestWeatherRefreshJob(t *testing.T) {
	repo, err := stores.NewMemoryRepositoryFrom(stores.SeedStores())
	require.NoError(t, err)
	homes := repo.HomeStores()
	require.NotEmpty(t, homes)

	ok := &fakeRefresher{}
	job := WeatherRefreshJob(repo, ok, time.Minute)
	assert.Equal(t, JobWeatherRefresh, job.Name)
	assert.True(t, job.RunOnStart)
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, ok.points, len(homes))
	assert.Equal(t, engine.PointFor(homes[0]), ok.points[0])

	failing := &fakeRefresher{failOn: engine.PointFor(homes[0]).Label}
	err = WeatherRefreshJob(repo, failing, time.Minute).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), homes[0].StoreID)
	assert.Len(t, failing.points, len(homes), "remaining stores are still refreshed")
}

type fakeAnalyzer struct {
	reports []engine.Report
	err     error
}

func (f fakeAnalyzer) AnalyzeAll(ctx context.Context, req engine.Request) ([]engine.Report, error) {
	return f.reports, f.err
}

func TestArchiveInsights(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 10, 16, 12, 30, 0, 0, time.UTC)
	analyzer := fakeAnalyzer{reports: []engine.Report{
		{
			Store: stores.Store{StoreID: "HS-A", Name: "A"},
			Insights: []insights.Insight{
				{ID: "ins_1", StoreID: "HS-A", Priority: insights.PriorityHigh, Title: "one"},
				{ID: "ins_2", StoreID: "HS-A", Priority: insights.PriorityLow, Title: "two"},
			},
		},
		{Store: stores.Store{StoreID: "HS-B", Name: "B"}, Insights: []insights.Insight{}},
	}}

	key, count, err := ArchiveInsights(ctx, analyzer, store, now)
	require.NoError(t, err)
	assert.Equal(t, "reports/2026-10-16/insights-123000.json", key)
	assert.Equal(t, 2, count)

	content, err := store.Get(ctx, key)
	require.NoError(t, err)
	var archive Archive
	require.NoError(t, json.Unmarshal(content, &archive))
	require.Len(t, archive.Stores, 2)
	assert.Equal(t, "HS-A", archive.Stores[0].StoreID)
	assert.Len(t, archive.Stores[0].Insights, 2)
	assert.True(t, archive.GeneratedAt.Equal(now))

	info, err := store.GetInfo(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, info.Metadata)
	assert.Equal(t, 2, info.Metadata.StoreCount)

	_, _, err = ArchiveInsights(ctx, fakeAnalyzer{err: errors.New("db down")}, store, now)
	assert.ErrorContains(t, err, "db down")
}

func TestInsightArchiveJobPrunes(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	for _, k := range []string{
		"reports/2026-10-01/insights-080000.json",
		"reports/2026-10-09/insights-080000.json",
		"reports/2026-10-10/insights-080000.json",
		"reports/notes/readme.json",
	} {
		require.NoError(t, store.Put(ctx, k, []byte("{}"), nil))
	}

	job := InsightArchiveJob(fakeAnalyzer{}, store, ArchiveConfig{
		Interval:      time.Hour,
		RetentionDays: 6,
		Now:           func() time.Time { return now },
	})
	require.NoError(t, job.Run(ctx))

	keys, err := store.List(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reports/2026-10-10/insights-080000.json",
		"reports/2026-10-16/insights-080000.json",
		"reports/notes/readme.json",
	}, keys)
}
