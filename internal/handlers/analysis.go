package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/geo"
	"github.com/kosarica/insight-service/internal/insights"
	"github.com/kosarica/insight-service/internal/proximity"
)

// ProximityResponse is a proximity result with distances rounded for display
// and a per-chain summary.
type ProximityResponse struct {
	proximity.Result
	ChainSummary []proximity.ChainSummary `json:"chain_summary"`
}

// ProximityListResponse holds one proximity result per home store.
type ProximityListResponse struct {
	RadiusKm float64             `json:"radius_km"`
	Results  []ProximityResponse `json:"results"`
}

// InventoryResponse holds the stock advice for a store.
type InventoryResponse struct {
	StoreID         string                              `json:"store_id"`
	Recommendations []analytics.InventoryRecommendation `json:"recommendations"`
}

// ForecastResponse holds per-category daily demand forecasts.
type ForecastResponse struct {
	StoreID   string                     `json:"store_id"`
	Forecasts []analytics.DemandForecast `json:"forecasts"`
}

// InsightsResponse holds the active insights for a store, most urgent first.
type InsightsResponse struct {
	StoreID  string             `json:"store_id"`
	Insights []insights.Insight `json:"insights"`
	Total    int                `json:"total"`
}

func roundDistance(cd proximity.CompetitorDistance) proximity.CompetitorDistance {
	cd.DistanceKm = geo.RoundKm(cd.DistanceKm, 1)
	return cd
}

// presentProximity rounds every distance to one decimal. The input is not modified.
func presentProximity(r proximity.Result) ProximityResponse {
	out := r
	out.Competitors = make([]proximity.CompetitorDistance, len(r.Competitors))
	for i, cd := range r.Competitors {
		out.Competitors[i] = roundDistance(cd)
	}
	out.CompetitorsByChain = make(map[string][]proximity.CompetitorDistance, len(r.CompetitorsByChain))
	for chain, list := range r.CompetitorsByChain {
		rounded := make([]proximity.CompetitorDistance, len(list))
		for i, cd := range list {
			rounded[i] = roundDistance(cd)
		}
		out.CompetitorsByChain[chain] = rounded
	}
	if r.ClosestCompetitor != nil {
		closest := roundDistance(*r.ClosestCompetitor)
		out.ClosestCompetitor = &closest
	}

	summary := r.ChainSummaries()
	for i := range summary {
		summary[i].NearestKm = geo.RoundKm(summary[i].NearestKm, 1)
	}
	return ProximityResponse{Result: out, ChainSummary: summary}
}

// Competitors returns the competitors around a home store
// @Summary Competitors near a store
// @Description Active competitor stores within the radius, nearest first, grouped by chain
// @Tags analysis
// @Produce json
// @Param storeId path string true "Home store ID"
// @Param radius query number false "Radius in km (default from config)"
// @Success 200 {object} ProximityResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Store not found"
// @Router /api/stores/{storeId}/competitors [get]
func (h *Handler) Competitors(c *gin.Context) {
	radius, err := queryFloat(c, "radius")
	if err != nil {
		h.respondError(c, err)
		return
	}
	result, err := h.engine.Competitors(c.Request.Context(), c.Param("storeId"), radius)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentProximity(result))
}

// ProximityAll returns proximity results for every home store
// @Summary Competitors near every home store
// @Tags analysis
// @Produce json
// @Param radius query number false "Radius in km (default from config)"
// @Success 200 {object} ProximityListResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Router /api/proximity [get]
func (h *Handler) ProximityAll(c *gin.Context) {
	radius, err := queryFloat(c, "radius")
	if err != nil {
		h.respondError(c, err)
		return
	}
	results, err := h.engine.CompetitorsAll(c.Request.Context(), radius)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := ProximityListResponse{Results: make([]ProximityResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = presentProximity(r)
	}
	resp.RadiusKm = radius
	if radius == 0 {
		resp.RadiusKm = h.engine.DefaultRadiusKm()
	}
	c.JSON(http.StatusOK, resp)
}

// Trends returns the sales trend of a home store
// @Summary Sales trend
// @Tags analysis
// @Produce json
// @Param storeId path string true "Home store ID"
// @Param days query int false "Window length in days (default from config, at most max_window_days)"
// @Success 200 {object} analytics.SalesTrend
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Store not found"
// @Router /api/stores/{storeId}/trends [get]
func (h *Handler) Trends(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		h.respondError(c, err)
		return
	}
	trend, err := h.engine.Trend(c.Request.Context(), c.Param("storeId"), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

// Inventory returns stock recommendations for a home store
// @Summary Inventory recommendations
// @Tags analysis
// @Produce json
// @Param storeId path string true "Home store ID"
// @Success 200 {object} InventoryResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Store not found"
// @Router /api/stores/{storeId}/inventory [get]
func (h *Handler) Inventory(c *gin.Context) {
	storeID := c.Param("storeId")
	recs, err := h.engine.Inventory(c.Request.Context(), storeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, InventoryResponse{StoreID: storeID, Recommendations: recs})
}

// Forecast returns daily demand forecasts for a home store
// @Summary Demand forecast
// @Tags analysis
// @Produce json
// @Param storeId path string true "Home store ID"
// @Param days query int false "Horizon in days (default from config, at most max_forecast_days)"
// @Param radius query number false "Competition radius in km (default from config)"
// @Success 200 {object} ForecastResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Store not found"
// @Router /api/stores/{storeId}/forecast [get]
func (h *Handler) Forecast(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		h.respondError(c, err)
		return
	}
	radius, err := queryFloat(c, "radius")
	if err != nil {
		h.respondError(c, err)
		return
	}
	storeID := c.Param("storeId")
	forecasts, err := h.engine.Forecast(c.Request.Context(), storeID, days, radius)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ForecastResponse{StoreID: storeID, Forecasts: forecasts})
}

// Insights returns the active insights for a home store
// @Summary Store insights
// @Description Runs the full analysis and returns unexpired insights, most urgent first
// @Tags analysis
// @Produce json
// @Param storeId path string true "Home store ID"
// @Param radius query number false "Radius in km (default from config)"
// @Param days query int false "Sales window in days (default from config, at most max_window_days)"
// @Success 200 {object} InsightsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Store not found"
// @Router /api/stores/{storeId}/insights [get]
func (h *Handler) Insights(c *gin.Context) {
	radius, err := queryFloat(c, "radius")
	if err != nil {
		h.respondError(c, err)
		return
	}
	days, err := queryInt(c, "days")
	if err != nil {
		h.respondError(c, err)
		return
	}
	storeID := c.Param("storeId")
	list, err := h.engine.Insights(c.Request.Context(), engine.Request{StoreID: storeID, RadiusKm: radius, WindowDays: days})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, InsightsResponse{StoreID: storeID, Insights: list, Total: len(list)})
}

// Weather returns the current weather at a home store
// @Summary Store weather
// @Tags analysis
// @Produce json
// @Param storeId path string true "Home store ID"
// @Success 200 {object} weather.Snapshot
// @Failure 404 {object} map[string]string "Store not found"
// @Failure 503 {object} map[string]string "Weather unavailable"
// @Router /api/stores/{storeId}/weather [get]
func (h *Handler) Weather(c *gin.Context) {
	snap, err := h.engine.Weather(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
