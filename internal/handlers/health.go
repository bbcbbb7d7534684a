package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/insight-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Stores   int    `json:"stores"`
}

// Health handles the health check endpoint
// @Summary Health check
// @Description Reports service status, database connectivity and catalogue size
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
		Stores: len(h.engine.Stores().All()),
	}

	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}
