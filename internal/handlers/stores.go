package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/insight-service/internal/chains"
	"github.com/kosarica/insight-service/internal/stores"
)

// StoresResponse is a list of stores.
type StoresResponse struct {
	Stores []stores.Store `json:"stores"`
	Total  int            `json:"total"`
}

// UpdateStoreRequest changes a store's status or location. At least one
// field must be set.
type UpdateStoreRequest struct {
	IsActive *bool               `json:"is_active"`
	Location *stores.GeoLocation `json:"location"`
}

// ListStores returns the store catalogue
// @Summary List stores
// @Description Returns stores in load order, optionally filtered by chain or home network membership
// @Tags stores
// @Produce json
// @Param chain query string false "Chain name (case-insensitive)"
// @Param home query bool false "Only home stores (true) or only competitors (false)"
// @Success 200 {object} StoresResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Router /api/stores [get]
func (h *Handler) ListStores(c *gin.Context) {
	chainFilter := ""
	if raw := c.Query("chain"); raw != "" {
		canonical, ok := chains.Canonical(raw)
		if !ok {
			h.respondError(c, fmt.Errorf("%w: unknown chain %q", errBadRequest, raw))
			return
		}
		chainFilter = canonical
	}

	var homeFilter *bool
	if raw := c.Query("home"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(c, fmt.Errorf("%w: home must be true or false", errBadRequest))
			return
		}
		homeFilter = &v
	}

	list := make([]stores.Store, 0)
	for _, s := range h.engine.Stores().All() {
		if chainFilter != "" && s.Chain != chainFilter {
			continue
		}
		if homeFilter != nil && s.IsHome() != *homeFilter {
			continue
		}
		list = append(list, s)
	}

	c.JSON(http.StatusOK, StoresResponse{Stores: list, Total: len(list)})
}

// GetStore returns one store
// @Summary Get store
// @Tags stores
// @Produce json
// @Param storeId path string true "Store ID"
// @Success 200 {object} stores.Store
// @Failure 404 {object} map[string]string "Store not found"
// @Router /api/stores/{storeId} [get]
func (h *Handler) GetStore(c *gin.Context) {
	s, err := h.engine.Stores().Get(c.Param("storeId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateStore deactivates, reactivates or relocates a store
// @Summary Update store
// @Description Sets is_active and/or replaces the location. Requires the admin API key.
// @Tags admin
// @Accept json
// @Produce json
// @Param storeId path string true "Store ID"
// @Param request body UpdateStoreRequest true "Changes"
// @Success 200 {object} stores.Store
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Store not found"
// @Router /api/admin/stores/{storeId} [patch]
func (h *Handler) UpdateStore(c *gin.Context) {
	if h.admin == nil {
		h.respondError(c, errors.New("store administration is not available"))
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.IsActive == nil && req.Location == nil {
		h.respondError(c, fmt.Errorf("%w: nothing to update", errBadRequest))
		return
	}

	storeID := c.Param("storeId")
	var (
		updated stores.Store
		err     error
	)
	if req.Location != nil {
		if updated, err = h.admin.Relocate(storeID, *req.Location); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.IsActive != nil {
		if updated, err = h.admin.SetActive(storeID, *req.IsActive); err != nil {
			h.respondError(c, err)
			return
		}
	}

	h.logger.Info().
		Str("store_id", storeID).
		Bool("is_active", updated.IsActive).
		Bool("relocated", req.Location != nil).
		Msg("Store updated")
	c.JSON(http.StatusOK, updated)
}
