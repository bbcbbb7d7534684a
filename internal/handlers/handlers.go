// Package handlers exposes the analysis engine over a JSON REST API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/geo"
	"github.com/kosarica/insight-service/internal/llm"
	"github.com/kosarica/insight-service/internal/middleware"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/stores"
)

// errBadRequest marks malformed query parameters and bodies.
var errBadRequest = errors.New("bad request")

// StoreAdmin applies administrative store changes.
type StoreAdmin interface {
	SetActive(storeID string, active bool) (stores.Store, error)
	Relocate(storeID string, loc stores.GeoLocation) (stores.Store, error)
}

// ChatAssistant answers chat messages about a store.
type ChatAssistant interface {
	Answer(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)
}

// Handler serves the REST API.
type Handler struct {
	engine    *engine.Engine
	admin     StoreAdmin
	assistant ChatAssistant
	logger    zerolog.Logger
}

// New creates the API handler. A nil admin disables store updates.
func New(e *engine.Engine, admin StoreAdmin, assistant ChatAssistant) *Handler {
	return &Handler{
		engine:    e,
		admin:     admin,
		assistant: assistant,
		logger:    log.With().Str("component", "handlers").Logger(),
	}
}

// RouteConfig holds the per-route protections.
type RouteConfig struct {
	AdminAPIKey   string
	RateLimit     middleware.RateLimiterConfig
	ChatPerSecond float64
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter, cfg RouteConfig) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	if cfg.RateLimit.RequestsPerSecond > 0 {
		api.Use(middleware.RateLimit(cfg.RateLimit))
	}
	{
		api.GET("/stores", h.ListStores)
		api.GET("/stores/:storeId", h.GetStore)
		api.GET("/stores/:storeId/competitors", h.Competitors)
		api.GET("/stores/:storeId/trends", h.Trends)
		api.GET("/stores/:storeId/inventory", h.Inventory)
		api.GET("/stores/:storeId/forecast", h.Forecast)
		api.GET("/stores/:storeId/insights", h.Insights)
		api.GET("/stores/:storeId/weather", h.Weather)
		api.GET("/proximity", h.ProximityAll)

		chat := api.Group("/chat")
		if cfg.ChatPerSecond > 0 {
			chat.Use(middleware.GlobalRateLimit(cfg.ChatPerSecond, max(1, int(math.Ceil(cfg.ChatPerSecond*2)))))
		}
		chat.POST("", h.Chat)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.AdminAPIKey))
		admin.PATCH("/stores/:storeId", h.UpdateStore)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stores.ErrStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, proximity.ErrInvalidRadius),
		errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, stores.ErrInvalidStore),
		errors.Is(err, engine.ErrInvalidWindow),
		errors.Is(err, engine.ErrNotHomeStore):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrWeatherUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Str("request_id", middleware.GetRequestID(c)).Msg("Request failed")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// queryFloat parses an optional float query parameter; absent means 0.
func queryFloat(c *gin.Context, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", errBadRequest, name, raw)
	}
	return v, nil
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, name, raw)
	}
	return v, nil
}
