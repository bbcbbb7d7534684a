package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/weather"
)

// ForecastConfig tunes the demand forecaster.
type ForecastConfig struct {
	BaseConfidence     float64 `mapstructure:"base_confidence"`
	HorizonDecay       float64 `mapstructure:"horizon_decay"`
	MinConfidence      float64 `mapstructure:"min_confidence"`
	MaxConfidence      float64 `mapstructure:"max_confidence"`
	CompetitionWeight  float64 `mapstructure:"competition_weight"`
	WeatherHorizonDays int     `mapstructure:"weather_horizon_days"`
}

// DefaultForecastConfig returns the default forecaster settings.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		BaseConfidence:     90,
		HorizonDecay:       4,
		MinConfidence:      5,
		MaxConfidence:      95,
		CompetitionWeight:  0.06,
		WeatherHorizonDays: 2,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c ForecastConfig) Validate() error {
	if c.MinConfidence < 0 || c.MaxConfidence > 100 || c.MinConfidence > c.MaxConfidence {
		return ErrInvalidConfig{Field: "min_confidence", Reason: "must satisfy 0 <= min <= max <= 100"}
	}
	if c.HorizonDecay <= 0 {
		return ErrInvalidConfig{Field: "horizon_decay", Reason: "must be positive"}
	}
	if c.CompetitionWeight < 0 {
		return ErrInvalidConfig{Field: "competition_weight", Reason: "must be non-negative"}
	}
	if c.WeatherHorizonDays < 0 {
		return ErrInvalidConfig{Field: "weather_horizon_days", Reason: "must be non-negative"}
	}
	return nil
}

// CompetitionPressure summarises nearby competition for the forecaster.
type CompetitionPressure struct {
	Count    int
	RadiusKm float64
	// WeightedDensity sums 1 - 0.5*d/r over competitors, so nearer stores weigh more.
	WeightedDensity float64
}

// PressureFrom derives competition pressure from a proximity result.
func PressureFrom(r proximity.Result) CompetitionPressure {
	p := CompetitionPressure{Count: r.Count(), RadiusKm: r.RadiusKm}
	if r.RadiusKm <= 0 {
		return p
	}
	for _, c := range r.Competitors {
		p.WeightedDensity += 1 - 0.5*c.DistanceKm/r.RadiusKm
	}
	return p
}

// weatherSensitivity maps condition -> category -> multiplier. "*" is the
// fallback for categories not listed.
var weatherSensitivity = map[weather.Condition]map[string]float64{
	weather.ConditionRain: {
		"*": 0.92, "footwear": 0.75, "rainwear": 1.6, "home decor": 1.15, "accessories": 0.9,
	},
	weather.ConditionThunderstorm: {
		"*": 0.85, "footwear": 0.7, "rainwear": 1.5, "home decor": 1.1,
	},
	weather.ConditionDrizzle: {
		"*": 0.97, "footwear": 0.9, "rainwear": 1.25,
	},
	weather.ConditionClear: {
		"*": 1.0, "footwear": 1.05, "western wear": 1.05,
	},
	weather.ConditionSnow: {
		"*": 0.8, "winter wear": 1.4,
	},
	weather.ConditionFog: {
		"*": 0.93, "winter wear": 1.15,
	},
	weather.ConditionMist: {"*": 0.97},
	weather.ConditionHaze: {"*": 0.95},
	weather.ConditionDust: {"*": 0.9},
}

// WeatherMultiplier returns the demand multiplier for category under condition.
func WeatherMultiplier(condition weather.Condition, category string) float64 {
	table, ok := weatherSensitivity[condition]
	if !ok {
		return 1.0
	}
	if m, ok := table[strings.ToLower(strings.TrimSpace(category))]; ok {
		return m
	}
	if m, ok := table["*"]; ok {
		return m
	}
	return 1.0
}

// ForecastRequest is the input for one category forecast.
type ForecastRequest struct {
	Category       string
	BaselineDemand float64
	Days           int
	// StartDate is the as-of date; forecasts cover the following Days days.
	StartDate   time.Time
	Trend       *SalesTrend
	Calendar    *SeasonalCalendar
	Competition CompetitionPressure
	Weather     weather.Condition
	// History is recent daily demand, used to widen uncertainty.
	History []float64
}

// DemandForecaster predicts per-day category demand.
type DemandForecaster struct {
	config ForecastConfig
}

// NewDemandForecaster creates a forecaster.
func NewDemandForecaster(config ForecastConfig) *DemandForecaster {
	return &DemandForecaster{config: config}
}

// Forecast returns one forecast per day for the request horizon. The output is
// a pure function of the request.
func (f *DemandForecaster) Forecast(req ForecastRequest) []DemandForecast {
	if req.Days <= 0 {
		return []DemandForecast{}
	}
	baseline := req.BaselineDemand
	if math.IsNaN(baseline) || baseline < 0 {
		baseline = 0
	}

	trendFactor := 1.0
	if req.Trend != nil {
		trendFactor = clamp(1+req.Trend.SalesGrowth/100, 0.5, 2.0)
	}
	competitionFactor := clamp(1/(1+f.config.CompetitionWeight*req.Competition.WeightedDensity), 0.5, 1.0)
	weatherNow := WeatherMultiplier(req.Weather, req.Category)
	variancePenalty := f.variancePenalty(req.History)

	start := dayOf(req.StartDate)
	out := make([]DemandForecast, 0, req.Days)
	for d := 1; d <= req.Days; d++ {
		date := start.AddDate(0, 0, d)
		seasonalFactors := req.Calendar.FactorsFor(date, req.Category)
		seasonal := clamp(compositeMultiplier(seasonalFactors), 0.5, 2.0)

		weatherFactor := 1.0
		if d <= f.config.WeatherHorizonDays {
			weatherFactor = weatherNow
		}

		fc := DemandForecast{
			Category:          req.Category,
			ForecastDate:      date,
			TrendFactor:       trendFactor,
			SeasonalFactor:    seasonal,
			CompetitionFactor: competitionFactor,
			WeatherFactor:     weatherFactor,
			AdjustmentFactors: []string{},
		}
		fc.PredictedDemand = math.Max(0, baseline*fc.CombinedFactor())
		fc.ConfidenceScore = clamp(
			f.config.BaseConfidence-f.config.HorizonDecay*float64(d-1)-variancePenalty,
			f.config.MinConfidence, f.config.MaxConfidence,
		)

		if req.Trend != nil && trendFactor != 1 {
			fc.AdjustmentFactors = append(fc.AdjustmentFactors, fmt.Sprintf("Sales trend %+.1f%% (x%.2f)", req.Trend.SalesGrowth, trendFactor))
		}
		for _, sf := range seasonalFactors {
			fc.AdjustmentFactors = append(fc.AdjustmentFactors, sf.Label())
		}
		if req.Competition.Count > 0 {
			fc.AdjustmentFactors = append(fc.AdjustmentFactors, fmt.Sprintf("%d competitors within %.1f km (x%.2f)",
				req.Competition.Count, req.Competition.RadiusKm, competitionFactor))
		}
		if weatherFactor != 1 {
			fc.AdjustmentFactors = append(fc.AdjustmentFactors, fmt.Sprintf("Weather: %s (x%.2f)", req.Weather, weatherFactor))
		}
		out = append(out, fc)
	}
	return out
}

// variancePenalty converts the coefficient of variation of history into
// confidence points. Missing history costs a flat 15.
func (f *DemandForecaster) variancePenalty(history []float64) float64 {
	if len(history) < 2 {
		return 15
	}
	var sum float64
	for _, v := range history {
		sum += v
	}
	mean := sum / float64(len(history))
	if mean <= 0 {
		return 15
	}
	var sq float64
	for _, v := range history {
		sq += (v - mean) * (v - mean)
	}
	cv := math.Sqrt(sq/float64(len(history))) / mean
	return math.Min(30, 30*cv)
}

// DailyUnits returns per-day unit totals for a category between start and end inclusive.
func DailyUnits(series []SalesRecord, category string, start, end time.Time) []float64 {
	start, end = dayOf(start), dayOf(end)
	if end.Before(start) {
		return nil
	}
	out := make([]float64, daysBetween(start, end)+1)
	for _, rec := range series {
		if rec.Category != category {
			continue
		}
		idx := daysBetween(start, rec.Date.In(start.Location()))
		if idx >= 0 && idx < len(out) {
			out[idx] += float64(rec.Units)
		}
	}
	return out
}
