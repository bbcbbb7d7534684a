package insights

import (
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/stores"
	"github.com/kosarica/insight-service/internal/weather"
)

var passTime = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func storeAt(id, chain string, lat, lon float64) stores.Store {
	return stores.Store{
		StoreID:  id,
		Name:     chain + " " + id,
		Chain:    chain,
		Location: stores.GeoLocation{Latitude: lat, Longitude: lon},
		IsActive: true,
	}
}

func landscape(n int) *proximity.Result {
	home := storeAt("HS-1", "HOME", 28.7372, 77.1188)
	var comps []stores.Store
	for i := 0; i < n; i++ {
		chain := "Zudio"
		if i == n-1 {
			chain = "Westside"
		}
		comps = append(comps, storeAt(fmt.Sprintf("C%d", i), chain, 28.7380+0.001*float64(i), 77.1190))
	}
	r := proximity.Analyze(home, comps, 5)
	return &r
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DensityThreshold = 3
	return cfg
}

func fullInput() Input {
	return Input{
		StoreID: "HS-1",
		AsOf:    passTime,
		Inventory: []analytics.InventoryRecommendation{
			{Category: "Ethnic Wear", CurrentStock: 50, RecommendedStock: 200, ReorderQuantity: 150, StockoutRisk: 75, Urgency: analytics.UrgencyCritical},
			{Category: "Footwear", CurrentStock: 20, RecommendedStock: 100, ReorderQuantity: 80, StockoutRisk: 80, Urgency: analytics.UrgencyCritical},
			{Category: "Winter Wear", CurrentStock: 130, RecommendedStock: 100, OverstockCost: 450, Urgency: analytics.UrgencyNone},
		},
		Trend: &analytics.SalesTrend{
			StoreID:                   "HS-1",
			Days:                      30,
			TotalSales:                180000,
			SalesGrowth:               -20,
			AverageDailySales:         6000,
			PeakSalesDay:              "Saturday",
			PeakSalesPeriod:           weather.PeriodEvening,
			UnderperformingCategories: []analytics.CategoryGrowth{{Category: "Footwear", GrowthPct: -25}},
		},
		Proximity: landscape(4),
		Weather: &weather.Snapshot{
			Location: "Rohini", TemperatureC: 24, Humidity: 88,
			Condition: weather.ConditionRain, Description: "moderate rain",
		},
	}
}

func findByTitle(t *testing.T, list []Insight, prefix string) Insight {
	t.Helper()
	for _, in := range list {
		if len(in.Title) >= len(prefix) && in.Title[:len(prefix)] == prefix {
			return in
		}
	}
	t.Fatalf("no insight titled %q", prefix)
	return Insight{}
}

func TestSynthesizeFullPass(t *testing.T) {
	out := NewSynthesizer(testConfig()).Synthesize(fullInput())
	require.Len(t, out, 7)

	first := out[0]
	assert.Equal(t, PriorityCritical, first.Priority)
	assert.Equal(t, CategoryInventory, first.Category)
	assert.Equal(t, "Critical Stock Shortage: 2 Categories", first.Title)
	assert.Contains(t, first.RecommendedActions, "Reorder 150 units of Ethnic Wear")
	assert.Contains(t, first.RecommendedActions, "Reorder 80 units of Footwear")

	decline := out[1]
	assert.Equal(t, PriorityHigh, decline.Priority)
	assert.Equal(t, CategorySales, decline.Category)
	assert.Equal(t, "Sales Declining 20.0%", decline.Title)
	assert.Equal(t, 80.0, decline.ConfidenceScore)

	competition := findByTitle(t, out, "High Competitor Density")
	assert.Equal(t, PriorityMedium, competition.Priority)
	assert.Equal(t, CategoryCompetition, competition.Category)
	assert.Contains(t, competition.Description, "Zudio 3, Westside 1")

	weatherAlert := findByTitle(t, out, "Weather Alert: Rain")
	assert.Equal(t, PriorityMedium, weatherAlert.Priority)
	assert.Equal(t, weatherActions[weather.ConditionRain], weatherAlert.RecommendedActions)

	overstock := findByTitle(t, out, "Overstock Holding Cost")
	assert.Equal(t, PriorityLow, overstock.Priority)
	assert.Equal(t, CategoryOperations, overstock.Category)
	assert.Nil(t, overstock.ExpiresAt)

	peak := findByTitle(t, out, "Peak Traffic: Saturday Evening")
	assert.Equal(t, CategoryCustomer, peak.Category)

	underperforming := findByTitle(t, out, "Underperforming Categories: Footwear")
	assert.Equal(t, PriorityMedium, underperforming.Priority)
}

func TestSynthesizeOrdering(t *testing.T) {
	out := NewSynthesizer(testConfig()).Synthesize(fullInput())
	assert.True(t, sort.SliceIsSorted(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ConfidenceScore > out[j].ConfidenceScore
	}))
}

func TestSynthesizeTTL(t *testing.T) {
	cfg := testConfig()
	out := NewSynthesizer(cfg).Synthesize(fullInput())
	for _, in := range out {
		assert.Equal(t, passTime, in.CreatedAt)
		ttl, ok := cfg.TTL(in.Priority)
		if !ok {
			assert.Nil(t, in.ExpiresAt, in.Title)
			continue
		}
		require.NotNil(t, in.ExpiresAt, in.Title)
		assert.Equal(t, passTime.Add(ttl), *in.ExpiresAt, in.Title)
	}
	assert.Equal(t, passTime.Add(48*time.Hour), *out[0].ExpiresAt)
}

func TestSingleCriticalCategoryTitle(t *testing.T) {
	out := NewSynthesizer(testConfig()).Synthesize(Input{
		StoreID: "HS-1",
		AsOf:    passTime,
		Inventory: []analytics.InventoryRecommendation{
			{Category: "Ethnic Wear", CurrentStock: 50, RecommendedStock: 200, ReorderQuantity: 150, StockoutRisk: 75, Urgency: analytics.UrgencyCritical},
			{Category: "Kids Wear", CurrentStock: 40, RecommendedStock: 100, ReorderQuantity: 60, StockoutRisk: 60, Urgency: analytics.UrgencyHigh},
		},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "Critical Stock Shortage: Ethnic Wear", out[0].Title)
	assert.Equal(t, "Low Stock Warning: Kids Wear", out[1].Title)
	assert.Equal(t, PriorityHigh, out[1].Priority)
}

func TestCompetitionScalesWithCount(t *testing.T) {
	s := NewSynthesizer(testConfig())

	assert.Empty(t, s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Proximity: landscape(2)}))

	out := s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Proximity: landscape(4)})
	require.Len(t, out, 1)
	assert.Equal(t, PriorityMedium, out[0].Priority)

	out = s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Proximity: landscape(6)})
	require.Len(t, out, 1)
	assert.Equal(t, PriorityHigh, out[0].Priority)
}

func TestSalesRules(t *testing.T) {
	s := NewSynthesizer(DefaultConfig())

	mild := s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Trend: &analytics.SalesTrend{TotalSales: 100, SalesGrowth: -5}})
	assert.Empty(t, mild)

	growth := s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Trend: &analytics.SalesTrend{TotalSales: 100, SalesGrowth: 18.5, Days: 30}})
	require.Len(t, growth, 1)
	assert.Equal(t, "Sales Growing 18.5%", growth[0].Title)
	assert.Equal(t, PriorityLow, growth[0].Priority)

	assert.Empty(t, s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Trend: &analytics.SalesTrend{}}))
}

func TestWeatherRules(t *testing.T) {
	s := NewSynthesizer(DefaultConfig())

	clear := s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Weather: &weather.Snapshot{Condition: weather.ConditionClear, TemperatureC: 30}})
	assert.Empty(t, clear)

	hot := s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Weather: &weather.Snapshot{Location: "Delhi", Condition: weather.ConditionClear, TemperatureC: 41}})
	require.Len(t, hot, 1)
	assert.Equal(t, "Extreme Heat: 41°C", hot[0].Title)

	cold := s.Synthesize(Input{StoreID: "HS-1", AsOf: passTime, Weather: &weather.Snapshot{Condition: weather.ConditionFog, TemperatureC: 6}})
	require.Len(t, cold, 2)
	for _, in := range cold {
		assert.Equal(t, CategoryWeather, in.Category)
		assert.Equal(t, PriorityMedium, in.Priority)
	}
}

func TestForecastSurge(t *testing.T) {
	day := passTime.AddDate(0, 0, 1)
	out := NewSynthesizer(DefaultConfig()).Synthesize(Input{
		StoreID: "HS-1",
		AsOf:    passTime,
		Forecasts: []analytics.DemandForecast{
			{Category: "Ethnic Wear", ForecastDate: day, PredictedDemand: 30, ConfidenceScore: 75, TrendFactor: 1, SeasonalFactor: 1.5, CompetitionFactor: 1, WeatherFactor: 1},
			{Category: "Ethnic Wear", ForecastDate: day.AddDate(0, 0, 1), PredictedDemand: 36, ConfidenceScore: 71, TrendFactor: 1.2, SeasonalFactor: 1.5, CompetitionFactor: 1, WeatherFactor: 1},
			{Category: "Footwear", ForecastDate: day, PredictedDemand: 10, ConfidenceScore: 75, TrendFactor: 1, SeasonalFactor: 1, CompetitionFactor: 1, WeatherFactor: 1},
		},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "Demand Surge Expected: Ethnic Wear", out[0].Title)
	assert.Equal(t, 71.0, out[0].ConfidenceScore)
	assert.Contains(t, out[0].Description, "x1.80")
}

func TestDeterministicIDs(t *testing.T) {
	s := NewSynthesizer(testConfig())
	a := s.Synthesize(fullInput())
	b := s.Synthesize(fullInput())
	assert.Equal(t, a, b)

	seen := map[string]bool{}
	for _, in := range a {
		assert.Regexp(t, `^ins_[0-9a-f]{16}$`, in.ID)
		assert.False(t, seen[in.ID], "duplicate id %s", in.ID)
		seen[in.ID] = true
	}

	later := fullInput()
	later.AsOf = passTime.Add(2 * time.Hour)
	c := s.Synthesize(later)
	assert.Equal(t, a[0].ID, c[0].ID)

	nextDay := fullInput()
	nextDay.AsOf = passTime.AddDate(0, 0, 1)
	assert.NotEqual(t, a[0].ID, s.Synthesize(nextDay)[0].ID)
}

func TestDedupeSupersedes(t *testing.T) {
	older := Insight{ID: "ins_a", Title: "old"}
	newer := Insight{ID: "ins_a", Title: "new"}
	other := Insight{ID: "ins_b"}

	kept, superseded := dedupe([]Insight{older, other, newer})
	require.Len(t, kept, 2)
	assert.Equal(t, "new", kept[0].Title)
	assert.Equal(t, "ins_b", kept[1].ID)
	require.Len(t, superseded, 1)
	assert.Equal(t, "old", superseded[0].Title)
}

func TestRunReportsSuperseded(t *testing.T) {
	in := Input{
		StoreID: "HS-1",
		AsOf:    passTime,
		Forecasts: []analytics.DemandForecast{
			{Category: "Rainwear", ForecastDate: passTime, TrendFactor: 1, SeasonalFactor: 1.5, CompetitionFactor: 1, WeatherFactor: 1},
		},
	}
	pass := NewSynthesizer(DefaultConfig()).Run(in)
	assert.Len(t, pass.Insights, 1)
	assert.Empty(t, pass.Superseded)
}

func TestStrongerSurgeDaySupersedes(t *testing.T) {
	day := func(n int, seasonal float64) analytics.DemandForecast {
		return analytics.DemandForecast{
			Category: "Rainwear", ForecastDate: passTime.AddDate(0, 0, n), PredictedDemand: 10 * seasonal,
			ConfidenceScore: 80, TrendFactor: 1, SeasonalFactor: seasonal, CompetitionFactor: 1, WeatherFactor: 1,
		}
	}
	in := Input{
		StoreID:   "HS-1",
		AsOf:      passTime,
		Forecasts: []analytics.DemandForecast{day(1, 1.3), day(2, 1.8), day(3, 1.5), day(4, 1.1)},
	}

	pass := NewSynthesizer(DefaultConfig()).Run(in)
	require.Len(t, pass.Insights, 1)
	assert.Contains(t, pass.Insights[0].Description, "2026-10-18")
	assert.Contains(t, pass.Insights[0].Description, "x1.80")

	require.Len(t, pass.Superseded, 1)
	assert.Contains(t, pass.Superseded[0].Description, "2026-10-17")
	assert.Equal(t, pass.Insights[0].ID, pass.Superseded[0].ID)
	assert.Equal(t, StateSuperseded, pass.StateOf(pass.Superseded[0], passTime))
	assert.Equal(t, StateActive, pass.StateOf(pass.Insights[0], passTime))
}

func TestSynthesizeUsesClock(t *testing.T) {
	s := NewSynthesizer(DefaultConfig())
	s.now = func() time.Time { return passTime }
	out := s.Synthesize(Input{StoreID: "HS-1", Weather: &weather.Snapshot{Condition: weather.ConditionRain, TemperatureC: 25}})
	require.Len(t, out, 1)
	assert.Equal(t, passTime, out[0].CreatedAt)
}

func TestInsightState(t *testing.T) {
	exp := passTime.Add(48 * time.Hour)
	in := Insight{CreatedAt: passTime, ExpiresAt: &exp}

	assert.Equal(t, StateGenerated, in.State(passTime.Add(-time.Minute)))
	assert.Equal(t, StateActive, in.State(passTime))
	assert.Equal(t, StateActive, in.State(exp))
	assert.Equal(t, StateExpired, in.State(exp.Add(time.Second)))

	forever := Insight{CreatedAt: passTime}
	assert.Equal(t, StateActive, forever.State(passTime.AddDate(10, 0, 0)))
}

func TestFilterActive(t *testing.T) {
	out := NewSynthesizer(testConfig()).Synthesize(fullInput())

	assert.Len(t, FilterActive(out, passTime), len(out))

	afterCritical := FilterActive(out, passTime.Add(72*time.Hour))
	for _, in := range afterCritical {
		assert.NotEqual(t, PriorityCritical, in.Priority)
	}
	assert.Len(t, afterCritical, len(out)-1)

	farFuture := FilterActive(out, passTime.AddDate(1, 0, 0))
	for _, in := range farFuture {
		assert.Equal(t, PriorityLow, in.Priority)
	}
	assert.Len(t, farFuture, 2)
}

func TestPriorityJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		P Priority `json:"p"`
	}{PriorityCritical})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"critical"}`, string(data))

	var p Priority
	require.NoError(t, json.Unmarshal([]byte(`"High"`), &p))
	assert.Equal(t, PriorityHigh, p)
	assert.Error(t, json.Unmarshal([]byte(`"urgent"`), &p))
	assert.True(t, PriorityCritical > PriorityHigh && PriorityHigh > PriorityMedium && PriorityMedium > PriorityLow)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.SalesDeclinePct = 5
	assert.EqualError(t, cfg.Validate(), "sales_decline_pct: must be negative")

	cfg = DefaultConfig()
	cfg.CriticalTTL = 0
	assert.Error(t, cfg.Validate())
}
