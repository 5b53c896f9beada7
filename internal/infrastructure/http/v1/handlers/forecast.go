package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/domain/forecast"
	"stockpilot/internal/domain/ledger"
)

// ForecastHandler serves stock depletion projections.
type ForecastHandler struct {
	BaseHandler
	forecasts *forecast.Service
}

func NewForecastHandler(forecasts *forecast.Service) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts}
}

// Get projects depletion for one item. The horizon defaults to 30 days.
// GET /api/v1/forecast/:itemId
func (h *ForecastHandler) Get(c *gin.Context) {
	h.forecastFor(c, "itemId")
}

// GetForItem serves the same projection nested under the item resource.
// GET /api/v1/items/:id/forecast
func (h *ForecastHandler) GetForItem(c *gin.Context) {
	h.forecastFor(c, "id")
}

func (h *ForecastHandler) forecastFor(c *gin.Context, param string) {
	itemID, ok := h.ParseID(c, param)
	if !ok {
		return
	}
	horizon := h.ParseIntQuery(c, "horizonDays", 0)

	projection, err := h.forecasts.ForecastFor(c.Request.Context(), itemID, horizon)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// List projects depletion for all items matching the filter.
// GET /api/v1/forecast
func (h *ForecastHandler) List(c *gin.Context) {
	horizon := h.ParseIntQuery(c, "horizonDays", 0)
	filter := ledger.ItemFilter{
		Search: c.Query("search"),
		Plant:  c.Query("plant"),
	}

	projections, err := h.forecasts.ForecastAll(c.Request.Context(), filter, horizon)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecasts": projections})
}
