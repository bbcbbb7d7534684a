package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/insights"
	"github.com/kosarica/insight-service/internal/storage"
	"github.com/kosarica/insight-service/internal/stores"
	"github.com/kosarica/insight-service/internal/weather"
)

const (
	JobWeatherRefresh = "weather-refresh"
	JobInsightArchive = "insight-archive"
)

// WeatherRefresher forces a fresh fetch for a point, e.g. weather.CachedProvider.
type WeatherRefresher interface {
	Refresh(ctx context.Context, p weather.Point) error
}

// WeatherRefreshJob refreshes the weather cache for every active home store.
// One failing store does not stop the others.
func WeatherRefreshJob(repo stores.Repository, wx WeatherRefresher, interval time.Duration) Job {
	logger := log.With().Str("component", "scheduler").Str("job", JobWeatherRefresh).Logger()
	return Job{
		Name:       JobWeatherRefresh,
		Interval:   interval,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			var errs []error
			refreshed := 0
			for _, s := range repo.HomeStores() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := wx.Refresh(ctx, engine.PointFor(s)); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", s.StoreID, err))
					continue
				}
				refreshed++
			}
			logger.Info().Int("refreshed", refreshed).Int("failed", len(errs)).Msg("Weather refresh complete")
			return errors.Join(errs...)
		},
	}
}

// ReportAnalyzer produces reports for every home store.
type ReportAnalyzer interface {
	AnalyzeAll(ctx context.Context, req engine.Request) ([]engine.Report, error)
}

// Archive is the JSON document written for each archive run.
type Archive struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Stores      []StoreInsights `json:"stores"`
}

// StoreInsights is the archived slice of one store's report.
type StoreInsights struct {
	StoreID  string             `json:"store_id"`
	Name     string             `json:"name"`
	Insights []insights.Insight `json:"insights"`
}

// ArchiveConfig controls the insight archive job.
type ArchiveConfig struct {
	Interval      time.Duration
	RetentionDays int
	Now           func() time.Time
}

// InsightArchiveJob recomputes insights for every home store, writes them to
// storage under a timestamped report key and prunes reports past retention.
func InsightArchiveJob(analyzer ReportAnalyzer, store storage.Storage, cfg ArchiveConfig) Job {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := log.With().Str("component", "scheduler").Str("job", JobInsightArchive).Logger()
	return Job{
		Name:     JobInsightArchive,
		Interval: cfg.Interval,
		Run: func(ctx context.Context) error {
			now := cfg.Now()
			key, count, err := ArchiveInsights(ctx, analyzer, store, now)
			if err != nil {
				return err
			}
			logger.Info().Str("key", key).Int("insights", count).Msg("Insight report archived")

			if cfg.RetentionDays > 0 {
				pruned, err := PruneReports(ctx, store, now, cfg.RetentionDays)
				if err != nil {
					return err
				}
				if pruned > 0 {
					logger.Info().Int("pruned", pruned).Msg("Old insight reports removed")
				}
			}
			return nil
		},
	}
}

// ArchiveInsights runs one analysis pass and stores it. It returns the key
// written and the number of insights archived.
func ArchiveInsights(ctx context.Context, analyzer ReportAnalyzer, store storage.Storage, now time.Time) (string, int, error) {
	reports, err := analyzer.AnalyzeAll(ctx, engine.Request{})
	if err != nil {
		return "", 0, fmt.Errorf("failed to analyze stores: %w", err)
	}

	archive := Archive{GeneratedAt: now.UTC(), Stores: make([]StoreInsights, 0, len(reports))}
	count := 0
	for _, r := range reports {
		archive.Stores = append(archive.Stores, StoreInsights{
			StoreID:  r.Store.StoreID,
			Name:     r.Store.Name,
			Insights: r.Insights,
		})
		count += len(r.Insights)
	}

	content, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal insight archive: %w", err)
	}

	key := storage.ReportKey(now)
	md := &storage.Metadata{
		ContentType:  "application/json",
		GeneratedAt:  now.UTC(),
		StoreCount:   len(reports),
		InsightCount: count,
	}
	if err := store.Put(ctx, key, content, md); err != nil {
		return "", 0, fmt.Errorf("failed to store insight archive: %w", err)
	}
	return key, count, nil
}

// PruneReports deletes archived reports whose day is older than
// retentionDays before now. Keys that do not carry a date are left alone.
func PruneReports(ctx context.Context, store storage.Storage, now time.Time, retentionDays int) (int, error) {
	keys, err := store.List(ctx, "reports/")
	if err != nil {
		return 0, err
	}
	cutoff := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -retentionDays)

	pruned := 0
	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) < 3 {
			continue
		}
		day, err := time.Parse("2006-01-02", parts[1])
		if err != nil || !day.Before(cutoff) {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
