package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/insight-service/internal/llm"
)

// Chat answers a question about a home store
// @Summary Chat about a store
// @Description Routes the message to the relevant analyses, builds context and asks the model. Falls back to an insight summary when the model is unavailable.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body llm.ChatRequest true "Question"
// @Success 200 {object} llm.ChatResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Store not found"
// @Failure 429 {object} map[string]string "Rate limited"
// @Router /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req llm.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	resp, err := h.assistant.Answer(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
