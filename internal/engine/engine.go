// Package engine composes the analysis pipeline for a home store: proximity,
// sales trend, stock advice, demand forecast, weather and insights.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/insights"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/stores"
	"github.com/kosarica/insight-service/internal/weather"
)

var (
	// ErrNotHomeStore is returned when a per-store analysis names a competitor store.
	ErrNotHomeStore = errors.New("store is not a home store")
	// ErrInvalidWindow is returned for a negative window or horizon, or one
	// beyond the configured maximum.
	ErrInvalidWindow = errors.New("invalid window")
	// ErrWeatherUnavailable is returned when no weather provider is configured.
	ErrWeatherUnavailable = errors.New("weather provider not configured")
)

// Config holds the pipeline defaults and the per-stage settings.
type Config struct {
	WindowDays      int                       `mapstructure:"window_days"`
	ForecastDays    int                       `mapstructure:"forecast_days"`
	MaxWindowDays   int                       `mapstructure:"max_window_days"`
	MaxForecastDays int                       `mapstructure:"max_forecast_days"`
	Concurrency     int                       `mapstructure:"concurrency"`
	Inventory       analytics.InventoryConfig `mapstructure:"inventory"`
	Forecast        analytics.ForecastConfig  `mapstructure:"forecast"`
	Insights        insights.Config           `mapstructure:"insights"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		WindowDays:      30,
		ForecastDays:    7,
		MaxWindowDays:   365,
		MaxForecastDays: 90,
		Concurrency:     4,
		Inventory:       analytics.DefaultInventoryConfig(),
		Forecast:        analytics.DefaultForecastConfig(),
		Insights:        insights.DefaultConfig(),
	}
}

// Validate validates the configuration and every stage configuration.
func (c Config) Validate() error {
	if c.WindowDays < 2 {
		return fmt.Errorf("window_days: must be at least 2")
	}
	if c.ForecastDays < 1 {
		return fmt.Errorf("forecast_days: must be at least 1")
	}
	if c.MaxWindowDays < c.WindowDays {
		return fmt.Errorf("max_window_days: must be at least window_days (%d)", c.WindowDays)
	}
	if c.MaxForecastDays < c.ForecastDays {
		return fmt.Errorf("max_forecast_days: must be at least forecast_days (%d)", c.ForecastDays)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency: must be at least 1")
	}
	if err := c.Inventory.Validate(); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	if err := c.Insights.Validate(); err != nil {
		return fmt.Errorf("insights: %w", err)
	}
	return nil
}

// Request selects the store and the optional overrides for one analysis.
// Zero values fall back to the configured defaults.
type Request struct {
	StoreID      string
	RadiusKm     float64
	WindowDays   int
	ForecastDays int
}

// Report bundles every analysis output for one home store.
type Report struct {
	Store       stores.Store                        `json:"store"`
	Proximity   proximity.Result                    `json:"proximity"`
	Trend       analytics.SalesTrend                `json:"sales_trend"`
	Inventory   []analytics.InventoryRecommendation `json:"inventory"`
	Forecasts   []analytics.DemandForecast          `json:"forecasts"`
	Weather     *weather.Snapshot                   `json:"weather"`
	Insights    []insights.Insight                  `json:"insights"`
	GeneratedAt time.Time                           `json:"generated_at"`
}

// Engine runs the analysis pipeline. Every call reads the store catalogue and
// data provider afresh; the engine itself holds no analysis state.
type Engine struct {
	repo       stores.Repository
	analyzer   *proximity.Analyzer
	data       analytics.DataProvider
	weather    weather.Provider
	calendar   *analytics.SeasonalCalendar
	trend      *analytics.TrendEstimator
	advisor    *analytics.InventoryAdvisor
	forecaster *analytics.DemandForecaster
	synth      *insights.Synthesizer
	config     Config
	metrics    *MetricsRecorder
	tracer     trace.Tracer
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates an engine. A nil weather provider disables weather input.
func New(repo stores.Repository, analyzer *proximity.Analyzer, data analytics.DataProvider, wx weather.Provider, config Config) *Engine {
	return &Engine{
		repo:       repo,
		analyzer:   analyzer,
		data:       data,
		weather:    wx,
		calendar:   analytics.DefaultCalendar(),
		trend:      analytics.NewTrendEstimator(),
		advisor:    analytics.NewInventoryAdvisor(config.Inventory),
		forecaster: analytics.NewDemandForecaster(config.Forecast),
		synth:      insights.NewSynthesizer(config.Insights),
		config:     config,
		metrics:    NewMetricsRecorder(),
		tracer:     otel.Tracer("github.com/kosarica/insight-service/internal/engine"),
		now:        time.Now,
		logger:     log.With().Str("component", "engine").Logger(),
	}
}

// WithCalendar replaces the seasonal calendar.
func (e *Engine) WithCalendar(c *analytics.SeasonalCalendar) *Engine {
	e.calendar = c
	return e
}

// WithClock replaces the engine clock.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Stores returns the store catalogue the engine reads.
func (e *Engine) Stores() stores.Repository {
	return e.repo
}

// DefaultRadiusKm returns the configured default proximity radius.
func (e *Engine) DefaultRadiusKm() float64 {
	return e.analyzer.DefaultRadiusKm()
}

// HomeStore returns the store if it exists and belongs to the home network.
func (e *Engine) HomeStore(storeID string) (stores.Store, error) {
	s, err := e.repo.Get(storeID)
	if err != nil {
		return stores.Store{}, err
	}
	if !s.IsHome() {
		return stores.Store{}, fmt.Errorf("%w: %s", ErrNotHomeStore, storeID)
	}
	return s, nil
}

func (e *Engine) normalize(req Request) (Request, error) {
	if req.RadiusKm == 0 {
		req.RadiusKm = e.analyzer.DefaultRadiusKm()
	}
	if !(req.RadiusKm > 0) {
		return req, fmt.Errorf("%w: got %v", proximity.ErrInvalidRadius, req.RadiusKm)
	}
	if req.WindowDays == 0 {
		req.WindowDays = e.config.WindowDays
	}
	if req.ForecastDays == 0 {
		req.ForecastDays = e.config.ForecastDays
	}
	if req.WindowDays < 0 || req.WindowDays > e.config.MaxWindowDays {
		return req, fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidWindow, e.config.MaxWindowDays, req.WindowDays)
	}
	if req.ForecastDays < 0 || req.ForecastDays > e.config.MaxForecastDays {
		return req, fmt.Errorf("%w: forecast days must be between 1 and %d, got %d", ErrInvalidWindow, e.config.MaxForecastDays, req.ForecastDays)
	}
	return req, nil
}

// window returns the inclusive day range ending today.
func (e *Engine) window(days int) (time.Time, time.Time) {
	end := e.now()
	return end.AddDate(0, 0, -(days - 1)), end
}

func (e *Engine) startSpan(ctx context.Context, name, storeID string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("store.id", storeID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Competitors runs proximity analysis for one home store.
func (e *Engine) Competitors(ctx context.Context, storeID string, radiusKm float64) (result proximity.Result, err error) {
	ctx, span := e.startSpan(ctx, "engine.Competitors", storeID)
	defer func() { endSpan(span, err) }()

	req, err := e.normalize(Request{StoreID: storeID, RadiusKm: radiusKm})
	if err != nil {
		return proximity.Result{}, err
	}
	if _, err = e.HomeStore(storeID); err != nil {
		return proximity.Result{}, err
	}
	return e.proximity(ctx, storeID, req.RadiusKm)
}

// CompetitorsAll runs proximity analysis for every active home store,
// sorted by store ID.
func (e *Engine) CompetitorsAll(ctx context.Context, radiusKm float64) (results []proximity.Result, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.CompetitorsAll")
	defer func() { endSpan(span, err) }()

	req, err := e.normalize(Request{RadiusKm: radiusKm})
	if err != nil {
		return nil, err
	}
	start := time.Now()
	results, err = e.analyzer.All(ctx, req.RadiusKm)
	e.metrics.RecordStage("proximity_all", time.Since(start))
	if err != nil {
		e.metrics.RecordStageError("proximity_all")
		return nil, err
	}
	return results, nil
}

func (e *Engine) proximity(ctx context.Context, storeID string, radiusKm float64) (proximity.Result, error) {
	start := time.Now()
	result, err := e.analyzer.ForStore(ctx, storeID, radiusKm)
	e.metrics.RecordStage("proximity", time.Since(start))
	if err != nil {
		e.metrics.RecordStageError("proximity")
		return proximity.Result{}, fmt.Errorf("proximity analysis for %s: %w", storeID, err)
	}
	return result, nil
}

// salesWindow loads the sales history for the window. Provider failures
// degrade to an empty series.
func (e *Engine) salesWindow(ctx context.Context, storeID string, days int) ([]analytics.SalesRecord, time.Time, time.Time) {
	start, end := e.window(days)
	series, err := e.data.SalesHistory(ctx, storeID, start, end)
	if err != nil {
		e.metrics.RecordStageError("sales_history")
		e.logger.Warn().Err(err).Str("store_id", storeID).Msg("Sales history unavailable, continuing with empty series")
		return nil, start, end
	}
	return series, start, end
}

// Trend estimates the sales trend over the last days (0 means the default window).
func (e *Engine) Trend(ctx context.Context, storeID string, days int) (trend analytics.SalesTrend, err error) {
	ctx, span := e.startSpan(ctx, "engine.Trend", storeID)
	defer func() { endSpan(span, err) }()

	req, err := e.normalize(Request{StoreID: storeID, WindowDays: days})
	if err != nil {
		return analytics.SalesTrend{}, err
	}
	if _, err = e.HomeStore(storeID); err != nil {
		return analytics.SalesTrend{}, err
	}
	series, start, end := e.salesWindow(ctx, storeID, req.WindowDays)
	return e.estimate(storeID, series, start, end), nil
}

func (e *Engine) estimate(storeID string, series []analytics.SalesRecord, start, end time.Time) analytics.SalesTrend {
	began := time.Now()
	trend := e.trend.Estimate(storeID, series, start, end)
	e.metrics.RecordStage("trend", time.Since(began))
	return trend
}

// Inventory recommends stock levels per category.
func (e *Engine) Inventory(ctx context.Context, storeID string) (recs []analytics.InventoryRecommendation, err error) {
	ctx, span := e.startSpan(ctx, "engine.Inventory", storeID)
	defer func() { endSpan(span, err) }()

	if _, err = e.HomeStore(storeID); err != nil {
		return nil, err
	}
	series, start, end := e.salesWindow(ctx, storeID, e.config.WindowDays)
	trend := e.estimate(storeID, series, start, end)
	return e.inventory(ctx, storeID, series, start, end, trend), nil
}

func (e *Engine) inventory(ctx context.Context, storeID string, series []analytics.SalesRecord, start, end time.Time, trend analytics.SalesTrend) []analytics.InventoryRecommendation {
	began := time.Now()
	defer func() { e.metrics.RecordStage("inventory", time.Since(began)) }()

	levels, err := e.data.StockLevels(ctx, storeID)
	if err != nil {
		e.metrics.RecordStageError("stock_levels")
		e.logger.Warn().Err(err).Str("store_id", storeID).Msg("Stock levels unavailable, assuming zero stock")
	}
	stock := map[string]int{}
	for _, l := range levels {
		stock[l.Category] = l.CurrentStock
	}
	velocity := analytics.VelocityByCategory(series, start, end)

	inputs := make([]analytics.InventoryInput, 0, len(stock))
	for _, category := range categories(stock, velocity) {
		inputs = append(inputs, analytics.InventoryInput{
			Category:        category,
			CurrentStock:    stock[category],
			DailyVelocity:   velocity[category],
			SeasonalFactors: e.calendar.FactorsFor(end, category),
			SalesGrowthPct:  trend.SalesGrowth,
			HasGrowth:       trend.HasData(),
		})
	}
	return e.advisor.RecommendAll(inputs)
}

func categories(stock map[string]int, velocity map[string]float64) []string {
	seen := map[string]bool{}
	var out []string
	for c := range stock {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for c := range velocity {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Forecast predicts demand per category for the next days (0 means default)
// with competition measured within radiusKm (0 means default).
func (e *Engine) Forecast(ctx context.Context, storeID string, days int, radiusKm float64) (out []analytics.DemandForecast, err error) {
	ctx, span := e.startSpan(ctx, "engine.Forecast", storeID)
	defer func() { endSpan(span, err) }()

	req, err := e.normalize(Request{StoreID: storeID, RadiusKm: radiusKm, ForecastDays: days})
	if err != nil {
		return nil, err
	}
	store, err := e.HomeStore(storeID)
	if err != nil {
		return nil, err
	}
	prox, err := e.proximity(ctx, storeID, req.RadiusKm)
	if err != nil {
		return nil, err
	}
	series, start, end := e.salesWindow(ctx, storeID, e.config.WindowDays)
	trend := e.estimate(storeID, series, start, end)
	snap := e.currentWeather(ctx, store)
	return e.forecast(series, start, end, trend, prox, snap, req.ForecastDays), nil
}

func (e *Engine) forecast(series []analytics.SalesRecord, start, end time.Time, trend analytics.SalesTrend, prox proximity.Result, snap *weather.Snapshot, days int) []analytics.DemandForecast {
	began := time.Now()
	defer func() { e.metrics.RecordStage("forecast", time.Since(began)) }()

	velocity := analytics.VelocityByCategory(series, start, end)
	pressure := analytics.PressureFrom(prox)
	var condition weather.Condition
	if snap != nil {
		condition = snap.Condition
	}

	out := []analytics.DemandForecast{}
	for _, category := range categories(nil, velocity) {
		out = append(out, e.forecaster.Forecast(analytics.ForecastRequest{
			Category:       category,
			BaselineDemand: velocity[category],
			Days:           days,
			StartDate:      end,
			Trend:          &trend,
			Calendar:       e.calendar,
			Competition:    pressure,
			Weather:        condition,
			History:        analytics.DailyUnits(series, category, start, end),
		})...)
	}
	return out
}

// Weather returns the current weather at a home store.
func (e *Engine) Weather(ctx context.Context, storeID string) (snap weather.Snapshot, err error) {
	ctx, span := e.startSpan(ctx, "engine.Weather", storeID)
	defer func() { endSpan(span, err) }()

	store, err := e.HomeStore(storeID)
	if err != nil {
		return weather.Snapshot{}, err
	}
	if e.weather == nil {
		return weather.Snapshot{}, ErrWeatherUnavailable
	}
	return e.weather.Current(ctx, PointFor(store))
}

// PointFor is the weather lookup point of a store, labelled with its city.
func PointFor(s stores.Store) weather.Point {
	label := s.Location.City
	if label == "" {
		label = s.Name
	}
	return weather.Point{Latitude: s.Location.Latitude, Longitude: s.Location.Longitude, Label: label}
}

// currentWeather fetches weather for the report; failures leave it out.
func (e *Engine) currentWeather(ctx context.Context, store stores.Store) *weather.Snapshot {
	if e.weather == nil {
		return nil
	}
	began := time.Now()
	snap, err := e.weather.Current(ctx, PointFor(store))
	e.metrics.RecordStage("weather", time.Since(began))
	if err != nil {
		e.metrics.RecordStageError("weather")
		e.logger.Warn().Err(err).Str("store_id", store.StoreID).Msg("Weather unavailable, continuing without it")
		return nil
	}
	return &snap
}

// Insights returns the active insights for a home store.
func (e *Engine) Insights(ctx context.Context, req Request) ([]insights.Insight, error) {
	report, err := e.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return insights.FilterActive(report.Insights, e.now()), nil
}

// Analyze runs the whole pipeline for one home store.
func (e *Engine) Analyze(ctx context.Context, req Request) (report Report, err error) {
	ctx, span := e.startSpan(ctx, "engine.Analyze", req.StoreID)
	defer func() { endSpan(span, err) }()
	began := time.Now()

	req, err = e.normalize(req)
	if err != nil {
		return Report{}, err
	}
	store, err := e.HomeStore(req.StoreID)
	if err != nil {
		return Report{}, err
	}
	return e.analyze(ctx, store, req, began)
}

func (e *Engine) analyze(ctx context.Context, store stores.Store, req Request, began time.Time) (Report, error) {
	prox, err := e.proximity(ctx, store.StoreID, req.RadiusKm)
	if err != nil {
		return Report{}, err
	}
	series, start, end := e.salesWindow(ctx, store.StoreID, req.WindowDays)
	trend := e.estimate(store.StoreID, series, start, end)
	recs := e.inventory(ctx, store.StoreID, series, start, end, trend)
	snap := e.currentWeather(ctx, store)
	forecasts := e.forecast(series, start, end, trend, prox, snap, req.ForecastDays)

	synthStart := time.Now()
	list := e.synth.Synthesize(insights.Input{
		StoreID:   store.StoreID,
		Trend:     &trend,
		Inventory: recs,
		Proximity: &prox,
		Weather:   snap,
		Forecasts: forecasts,
		AsOf:      end,
	})
	e.metrics.RecordStage("insights", time.Since(synthStart))
	e.metrics.RecordInsights(list)
	e.metrics.RecordStage("report", time.Since(began))

	e.logger.Debug().
		Str("store_id", store.StoreID).
		Int("competitors", prox.Count()).
		Int("insights", len(list)).
		Dur("duration", time.Since(began)).
		Msg("Store analysis complete")

	return Report{
		Store:       store,
		Proximity:   prox,
		Trend:       trend,
		Inventory:   recs,
		Forecasts:   forecasts,
		Weather:     snap,
		Insights:    list,
		GeneratedAt: end,
	}, nil
}

// AnalyzeAll runs the pipeline for every active home store and returns the
// reports sorted by store ID. req.StoreID is ignored.
func (e *Engine) AnalyzeAll(ctx context.Context, req Request) (reports []Report, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.AnalyzeAll")
	defer func() { endSpan(span, err) }()

	req, err = e.normalize(req)
	if err != nil {
		return nil, err
	}
	homes := e.repo.HomeStores()
	span.SetAttributes(attribute.Int("home_stores", len(homes)))

	reports = make([]Report, len(homes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.config.Concurrency))
	for i, home := range homes {
		g.Go(func() error {
			r, err := e.analyze(gctx, home, req, time.Now())
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze all stores: %w", err)
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Store.StoreID < reports[j].Store.StoreID })
	e.logger.Info().Int("home_stores", len(reports)).Msg("Analysis for all home stores complete")
	return reports, nil
}
