package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	insighthttp "github.com/kosarica/insight-service/internal/http"
	"github.com/kosarica/insight-service/internal/http/ratelimit"
)

// DefaultBaseURL is the OpenWeatherMap API root.
const DefaultBaseURL = "https://api.openweathermap.org"

// ErrNoAPIKey is returned when the client is used without credentials.
var ErrNoAPIKey = errors.New("weather api key not configured")

// ClientConfig configures the OpenWeatherMap client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Limits  ratelimit.Config
}

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	http    *insighthttp.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

// NewClient creates a weather client.
func NewClient(cfg ClientConfig, logger *zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "weather_client").Logger()
	}
	return &Client{
		http:    insighthttp.NewClient(cfg.Limits),
		baseURL: base,
		apiKey:  cfg.APIKey,
		logger:  l,
	}
}

type owmResponse struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	// Timezone is the shift from UTC in seconds.
	Timezone int `json:"timezone"`
	Main     struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// Current fetches the current weather at p.
func (c *Client) Current(ctx context.Context, p Point) (Snapshot, error) {
	if c.apiKey == "" {
		return Snapshot{}, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Latitude, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(p.Longitude, 'f', 4, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	endpoint := c.baseURL + "/data/2.5/weather?" + q.Encode()

	var body owmResponse
	if err := c.http.GetJSON(ctx, endpoint, &body); err != nil {
		c.logger.Warn().Err(err).Str("location", p.Label).Msg("Weather fetch failed")
		return Snapshot{}, fmt.Errorf("weather fetch for %s: %w", p.Label, err)
	}

	return body.toSnapshot(p.Label), nil
}

func (r owmResponse) toSnapshot(label string) Snapshot {
	observed := time.Unix(r.Dt, 0).In(time.FixedZone("local", r.Timezone))
	snap := Snapshot{
		Location:     r.Name,
		TemperatureC: r.Main.Temp,
		Humidity:     r.Main.Humidity,
		Condition:    ConditionUnknown,
		Period:       PeriodAt(observed),
		ObservedAt:   observed,
	}
	if snap.Location == "" {
		snap.Location = label
	}
	if len(r.Weather) > 0 {
		snap.Condition = ParseCondition(r.Weather[0].Main)
		snap.Description = r.Weather[0].Description
	}
	return snap
}
