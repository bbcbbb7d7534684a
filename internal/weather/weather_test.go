package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/insight-service/internal/http/ratelimit"
)

func TestPeriodForHour(t *testing.T) {
	tests := []struct {
		hour     int
		expected Period
	}{
		{0, PeriodNight},
		{5, PeriodNight},
		{6, PeriodMorning},
		{11, PeriodMorning},
		{12, PeriodAfternoon},
		{17, PeriodAfternoon},
		{18, PeriodEvening},
		{21, PeriodEvening},
		{22, PeriodNight},
		{23, PeriodNight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, PeriodForHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestSnapshotJSON(t *testing.T) {
	snap := Snapshot{
		Location:     "New Delhi",
		TemperatureC: 31.5,
		Humidity:     60,
		Condition:    ConditionRain,
		Description:  "light rain",
		Period:       PeriodEvening,
		ObservedAt:   time.Date(2026, 10, 16, 19, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, 31.5, m["temperature_celsius"])
	assert.Equal(t, "Evening", m["period"])
	assert.NotContains(t, m, "temperature")
	assert.NotContains(t, m, "time_period")

	var back Snapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, snap, back)
}

func TestParseCondition(t *testing.T) {
	assert.Equal(t, ConditionRain, ParseCondition("rain"))
	assert.Equal(t, ConditionThunderstorm, ParseCondition("Thunderstorm"))
	assert.Equal(t, ConditionHaze, ParseCondition("Smoke"))
	assert.Equal(t, ConditionUnknown, ParseCondition("Meteor"))
}

func testLimits() ratelimit.Config {
	return ratelimit.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Timeout: time.Second}
}

func TestClientCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		// 2026-07-15 13:30 UTC is 19:00 in India (UTC+5:30).
		w.Write([]byte(`{
			"name": "Rohini",
			"dt": 1784122200,
			"timezone": 19800,
			"main": {"temp": 31.5, "humidity": 82},
			"weather": [{"main": "Rain", "description": "moderate rain"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret", Limits: testLimits()}, nil)
	snap, err := c.Current(context.Background(), Point{Latitude: 28.7372, Longitude: 77.1188, Label: "HS-ROH-01"})
	require.NoError(t, err)

	assert.Equal(t, "Rohini", snap.Location)
	assert.Equal(t, ConditionRain, snap.Condition)
	assert.Equal(t, "moderate rain", snap.Description)
	assert.Equal(t, 31.5, snap.TemperatureC)
	assert.Equal(t, 82, snap.Humidity)
	assert.Equal(t, PeriodEvening, snap.Period)
}

func TestClientRequiresKey(t *testing.T) {
	c := NewClient(ClientConfig{}, nil)
	_, err := c.Current(context.Background(), Point{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

type countingProvider struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (p *countingProvider) Current(ctx context.Context, pt Point) (Snapshot, error) {
	n := p.calls.Add(1)
	if p.fail.Load() {
		return Snapshot{}, errors.New("unavailable")
	}
	return Snapshot{Location: pt.Label, TemperatureC: float64(n)}, nil
}

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	cache := NewCachedProvider(inner, time.Minute)
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	pt := Point{Latitude: 28.7, Longitude: 77.1, Label: "x"}
	first, err := cache.Current(context.Background(), pt)
	require.NoError(t, err)
	second, err := cache.Current(context.Background(), pt)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	now = now.Add(2 * time.Minute)
	inner.fail.Store(true)
	stale, err := cache.Current(context.Background(), pt)
	require.NoError(t, err)
	assert.Equal(t, first, stale)

	_, err = cache.Current(context.Background(), Point{Latitude: 1, Longitude: 1})
	assert.Error(t, err)

	inner.fail.Store(false)
	require.NoError(t, cache.Refresh(context.Background(), pt))
	fresh, err := cache.Current(context.Background(), pt)
	require.NoError(t, err)
	assert.NotEqual(t, first.TemperatureC, fresh.TemperatureC)
}

func TestStaticProviderLabelsLocation(t *testing.T) {
	p := StaticProvider{Snapshot: Snapshot{Condition: ConditionClear}}
	snap, err := p.Current(context.Background(), Point{Label: "HS-CP-01"})
	require.NoError(t, err)
	assert.Equal(t, "HS-CP-01", snap.Location)
}
