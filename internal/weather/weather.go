// Package weather models current conditions at a store and fetches them from
// OpenWeatherMap. Analytics only consume Snapshot values; fetching and caching
// live here.
package weather

import (
	"context"
	"strings"
	"time"
)

// Condition is a normalised weather condition.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
	ConditionHaze         Condition = "Haze"
	ConditionFog          Condition = "Fog"
	ConditionDust         Condition = "Dust"
	ConditionUnknown      Condition = "Unknown"
)

var knownConditions = []Condition{
	ConditionClear, ConditionClouds, ConditionRain, ConditionDrizzle, ConditionThunderstorm,
	ConditionSnow, ConditionMist, ConditionHaze, ConditionFog, ConditionDust,
}

// ParseCondition maps a provider condition name onto a Condition.
func ParseCondition(s string) Condition {
	s = strings.TrimSpace(s)
	for _, c := range knownConditions {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	switch strings.ToLower(s) {
	case "smoke":
		return ConditionHaze
	case "sand", "ash", "squall", "tornado":
		return ConditionDust
	}
	return ConditionUnknown
}

// Period is a coarse time-of-day bucket.
type Period string

const (
	PeriodMorning   Period = "Morning"
	PeriodAfternoon Period = "Afternoon"
	PeriodEvening   Period = "Evening"
	PeriodNight     Period = "Night"
)

// Periods lists buckets in day order.
var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}

// PeriodForHour buckets an hour of the day: 6-12 Morning, 12-18 Afternoon,
// 18-22 Evening, otherwise Night.
func PeriodForHour(hour int) Period {
	switch {
	case hour >= 6 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 18:
		return PeriodAfternoon
	case hour >= 18 && hour < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// PeriodAt buckets t using its own location.
func PeriodAt(t time.Time) Period {
	return PeriodForHour(t.Hour())
}

// Snapshot is the current weather at a store.
type Snapshot struct {
	Location     string    `json:"location"`
	TemperatureC float64   `json:"temperature_celsius"`
	Humidity     int       `json:"humidity"`
	Condition    Condition `json:"condition"`
	Description  string    `json:"description"`
	Period       Period    `json:"period"`
	ObservedAt   time.Time `json:"observed_at"`
}

// Point is the coordinate a snapshot is requested for.
type Point struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// Provider returns the current weather at a point.
type Provider interface {
	Current(ctx context.Context, p Point) (Snapshot, error)
}

// StaticProvider returns the same snapshot for every point. Used in tests and
// when no weather API key is configured.
type StaticProvider struct {
	Snapshot Snapshot
}

// Current returns the fixed snapshot labelled for the point.
func (s StaticProvider) Current(ctx context.Context, p Point) (Snapshot, error) {
	snap := s.Snapshot
	if snap.Location == "" {
		snap.Location = p.Label
	}
	return snap, nil
}
