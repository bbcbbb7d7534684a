package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/insights"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/stores"
	"github.com/kosarica/insight-service/internal/weather"
)

var clock = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type failingProvider struct{}

func (failingProvider) SalesHistory(ctx context.Context, storeID string, start, end time.Time) ([]analytics.SalesRecord, error) {
	return nil, errors.New("warehouse offline")
}

func (failingProvider) StockLevels(ctx context.Context, storeID string) ([]analytics.StockLevel, error) {
	return nil, errors.New("warehouse offline")
}

type failingWeather struct{}

func (failingWeather) Current(ctx context.Context, p weather.Point) (weather.Snapshot, error) {
	return weather.Snapshot{}, errors.New("weather api down")
}

func decliningFixture() *analytics.FixtureProvider {
	p := analytics.NewFixtureProvider()
	start := time.Date(2026, 9, 17, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		rec := analytics.SalesRecord{Date: start.AddDate(0, 0, i), Category: "Ethnic Wear", Amount: 1000, Units: 2}
		if i >= 15 {
			rec.Amount, rec.Units = 700, 1
		}
		p.AddSales("HS-ROH-01", rec)
	}
	p.SetStock("HS-ROH-01", analytics.StockLevel{Category: "Ethnic Wear", CurrentStock: 5})
	return p
}

func newEngine(t *testing.T, data analytics.DataProvider, wx weather.Provider) *Engine {
	t.Helper()
	repo, err := stores.NewMemoryRepositoryFrom(stores.SeedStores())
	require.NoError(t, err)
	analyzer := proximity.NewAnalyzer(repo, proximity.DefaultConfig())
	return New(repo, analyzer, data, wx, DefaultConfig()).WithClock(func() time.Time { return clock })
}

func rain() weather.Provider {
	return weather.StaticProvider{Snapshot: weather.Snapshot{
		TemperatureC: 26, Humidity: 90, Condition: weather.ConditionRain, Description: "moderate rain", ObservedAt: clock,
	}}
}

func TestAnalyzeReport(t *testing.T) {
	e := newEngine(t, decliningFixture(), rain())

	report, err := e.Analyze(context.Background(), Request{StoreID: "HS-ROH-01"})
	require.NoError(t, err)

	assert.Equal(t, "HS-ROH-01", report.Store.StoreID)
	assert.Equal(t, clock, report.GeneratedAt)

	assert.Equal(t, 5.0, report.Proximity.RadiusKm)
	assert.Equal(t, 3, report.Proximity.Count())
	require.NotNil(t, report.Proximity.ClosestCompetitor)
	assert.Equal(t, "CP-ZUD-ROH", report.Proximity.ClosestCompetitor.Store.StoreID)

	assert.Equal(t, 30, report.Trend.Days)
	assert.InDelta(t, -30.0, report.Trend.SalesGrowth, 1e-9)

	require.Len(t, report.Inventory, 1)
	rec := report.Inventory[0]
	assert.Equal(t, "Ethnic Wear", rec.Category)
	assert.Equal(t, 32, rec.RecommendedStock)
	assert.Equal(t, 27, rec.ReorderQuantity)
	assert.Equal(t, analytics.UrgencyCritical, rec.Urgency)
	assert.Equal(t, []string{"Diwali festive season (x1.50)"}, rec.SeasonalFactors)

	require.Len(t, report.Forecasts, 7)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), report.Forecasts[0].ForecastDate)
	assert.Equal(t, 0.92, report.Forecasts[0].WeatherFactor)
	assert.Equal(t, 1.0, report.Forecasts[2].WeatherFactor)

	require.NotNil(t, report.Weather)
	assert.Equal(t, "New Delhi", report.Weather.Location)

	require.NotEmpty(t, report.Insights)
	assert.Equal(t, insights.PriorityCritical, report.Insights[0].Priority)
	assert.Equal(t, "Critical Stock Shortage: Ethnic Wear", report.Insights[0].Title)
	assert.Equal(t, insights.PriorityHigh, report.Insights[1].Priority)
	assert.Equal(t, insights.CategorySales, report.Insights[1].Category)

	var hasWeather bool
	for _, in := range report.Insights {
		if in.Category == insights.CategoryWeather {
			hasWeather = true
		}
	}
	assert.True(t, hasWeather)
}

func TestAnalyzeErrors(t *testing.T) {
	e := newEngine(t, decliningFixture(), rain())
	ctx := context.Background()

	_, err := e.Analyze(ctx, Request{StoreID: "NOPE"})
	assert.ErrorIs(t, err, stores.ErrStoreNotFound)

	_, err = e.Analyze(ctx, Request{StoreID: "CP-ZUD-ROH"})
	assert.ErrorIs(t, err, ErrNotHomeStore)

	_, err = e.Analyze(ctx, Request{StoreID: "HS-ROH-01", RadiusKm: -1})
	assert.ErrorIs(t, err, proximity.ErrInvalidRadius)

	_, err = e.Analyze(ctx, Request{StoreID: "HS-ROH-01", ForecastDays: -2})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = e.Competitors(ctx, "HS-ROH-01", -5)
	assert.ErrorIs(t, err, proximity.ErrInvalidRadius)
}

func TestWindowUpperBound(t *testing.T) {
	e := newEngine(t, analytics.NewSyntheticProvider(), nil)
	ctx := context.Background()
	cfg := DefaultConfig()

	_, err := e.Trend(ctx, "HS-ROH-01", 20000000)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = e.Trend(ctx, "HS-ROH-01", cfg.MaxWindowDays+1)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = e.Forecast(ctx, "HS-ROH-01", cfg.MaxForecastDays+1, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = e.Analyze(ctx, Request{StoreID: "HS-ROH-01", WindowDays: cfg.MaxWindowDays + 1})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	trend, err := e.Trend(ctx, "HS-ROH-01", cfg.MaxWindowDays)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxWindowDays, trend.Days)

	forecasts, err := e.Forecast(ctx, "HS-ROH-01", cfg.MaxForecastDays, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, forecasts)
}

func TestAnalyzeDegradesOnProviderFailures(t *testing.T) {
	e := newEngine(t, failingProvider{}, failingWeather{})

	report, err := e.Analyze(context.Background(), Request{StoreID: "HS-ROH-01"})
	require.NoError(t, err)

	assert.False(t, report.Trend.HasData())
	assert.Empty(t, report.Inventory)
	assert.Empty(t, report.Forecasts)
	assert.Nil(t, report.Weather)
	assert.Equal(t, 3, report.Proximity.Count())
}

func TestCapabilities(t *testing.T) {
	e := newEngine(t, decliningFixture(), rain())
	ctx := context.Background()

	prox, err := e.Competitors(ctx, "HS-ROH-01", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, prox.Count())

	trend, err := e.Trend(ctx, "HS-ROH-01", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, trend.Days)
	assert.Equal(t, 7000.0, trend.TotalSales)

	recs, err := e.Inventory(ctx, "HS-ROH-01")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	forecasts, err := e.Forecast(ctx, "HS-ROH-01", 3, 0)
	require.NoError(t, err)
	assert.Len(t, forecasts, 3)

	snap, err := e.Weather(ctx, "HS-ROH-01")
	require.NoError(t, err)
	assert.Equal(t, weather.ConditionRain, snap.Condition)

	active, err := e.Insights(ctx, Request{StoreID: "HS-ROH-01"})
	require.NoError(t, err)
	assert.NotEmpty(t, active)

	_, err = e.Trend(ctx, "CP-ZUD-ROH", 0)
	assert.ErrorIs(t, err, ErrNotHomeStore)
}

func TestCompetitorsAll(t *testing.T) {
	e := newEngine(t, analytics.NewFixtureProvider(), nil)

	results, err := e.CompetitorsAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].HomeStoreID, results[i].HomeStoreID)
	}
	for _, r := range results {
		assert.Equal(t, 5.0, r.RadiusKm)
		if r.HomeStoreID == "HS-ROH-01" {
			assert.Equal(t, 3, r.Count())
		}
	}

	_, err = e.CompetitorsAll(context.Background(), -1)
	assert.ErrorIs(t, err, proximity.ErrInvalidRadius)
}

func TestWeatherUnavailable(t *testing.T) {
	e := newEngine(t, decliningFixture(), nil)

	_, err := e.Weather(context.Background(), "HS-ROH-01")
	assert.ErrorIs(t, err, ErrWeatherUnavailable)

	report, err := e.Analyze(context.Background(), Request{StoreID: "HS-ROH-01"})
	require.NoError(t, err)
	assert.Nil(t, report.Weather)
}

func TestAnalyzeAll(t *testing.T) {
	e := newEngine(t, analytics.NewFixtureProvider(), nil)

	reports, err := e.AnalyzeAll(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, reports, 5)
	for i := 1; i < len(reports); i++ {
		assert.Less(t, reports[i-1].Store.StoreID, reports[i].Store.StoreID)
	}

	var cp Report
	for _, r := range reports {
		if r.Store.StoreID == "HS-CP-01" {
			cp = r
		}
	}
	assert.Equal(t, 5, cp.Proximity.Count())
	require.NotEmpty(t, cp.Insights)
	assert.Equal(t, insights.CategoryCompetition, cp.Insights[0].Category)
	assert.Equal(t, insights.PriorityMedium, cp.Insights[0].Priority)
}

func TestAnalyzeAllCancelled(t *testing.T) {
	e := newEngine(t, analytics.NewFixtureProvider(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.AnalyzeAll(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxForecastDays = 3
	assert.ErrorContains(t, cfg.Validate(), "max_forecast_days")

	cfg = DefaultConfig()
	cfg.Inventory.TargetDaysOfCover = 0
	assert.ErrorContains(t, cfg.Validate(), "inventory: target_days_of_cover")
}
