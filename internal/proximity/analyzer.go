package proximity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/insight-service/internal/stores"
)

// Config holds the proximity analyzer settings.
type Config struct {
	DefaultRadiusKm float64       `mapstructure:"default_radius_km"`
	Concurrency     int           `mapstructure:"concurrency"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		DefaultRadiusKm: 5.0,
		Concurrency:     4,
		CacheTTL:        10 * time.Minute,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.DefaultRadiusKm <= 0 {
		return ErrInvalidConfig{Field: "default_radius_km", Reason: "must be positive"}
	}
	if c.Concurrency < 1 {
		return ErrInvalidConfig{Field: "concurrency", Reason: "must be at least 1"}
	}
	if c.CacheTTL < 0 {
		return ErrInvalidConfig{Field: "cache_ttl", Reason: "must be non-negative"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}

// Analyzer runs proximity analysis against a store repository.
type Analyzer struct {
	repo    stores.Repository
	config  Config
	cache   *resultCache
	metrics *MetricsRecorder
	now     func() time.Time
	logger  zerolog.Logger
}

// NewAnalyzer creates a repository-backed analyzer. A zero CacheTTL disables caching.
func NewAnalyzer(repo stores.Repository, config Config) *Analyzer {
	a := &Analyzer{
		repo:    repo,
		config:  config,
		metrics: NewMetricsRecorder(),
		now:     time.Now,
		logger:  log.With().Str("component", "proximity_analyzer").Logger(),
	}
	if config.CacheTTL > 0 {
		a.cache = newResultCache(config.CacheTTL)
	}
	return a
}

// DefaultRadiusKm returns the configured default radius.
func (a *Analyzer) DefaultRadiusKm() float64 {
	return a.config.DefaultRadiusKm
}

// ForStore analyzes the competitors around one store.
func (a *Analyzer) ForStore(ctx context.Context, storeID string, radiusKm float64) (Result, error) {
	if !(radiusKm > 0) {
		return Result{}, fmt.Errorf("%w: got %v", ErrInvalidRadius, radiusKm)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	home, err := a.repo.Get(storeID)
	if err != nil {
		return Result{}, err
	}

	now := a.now()
	var key cacheKey
	if a.cache != nil {
		key = a.cache.key(storeID, radiusKm, now, a.repo.Version())
		if r, ok := a.cache.get(key); ok {
			a.metrics.RecordCacheHit()
			return r, nil
		}
		a.metrics.RecordCacheMiss()
	}

	start := time.Now()
	result := analyzeAt(home, a.repo.Competitors(), radiusKm, now)
	a.metrics.RecordAnalysis("single", time.Since(start))
	a.metrics.RecordResult(result)

	if a.cache != nil {
		a.cache.put(key, result)
	}

	a.logger.Debug().
		Str("store_id", storeID).
		Float64("radius_km", radiusKm).
		Int("competitors", result.Count()).
		Msg("Proximity analysis complete")
	return result, nil
}

// All analyzes every active home store.
func (a *Analyzer) All(ctx context.Context, radiusKm float64) ([]Result, error) {
	if !(radiusKm > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radiusKm)
	}

	start := time.Now()
	homes := a.repo.HomeStores()
	results, err := AnalyzeAll(ctx, homes, a.repo.Competitors(), radiusKm, a.config.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("proximity analysis: %w", err)
	}
	a.metrics.RecordAnalysis("all", time.Since(start))

	a.logger.Info().
		Int("home_stores", len(homes)).
		Float64("radius_km", radiusKm).
		Dur("duration", time.Since(start)).
		Msg("Proximity analysis for all stores complete")
	return results, nil
}
