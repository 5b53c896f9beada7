package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/domain/reports"
)

// ReportHandler serves stock alert and turnover reports.
type ReportHandler struct {
	BaseHandler
	reports *reports.Service
}

func NewReportHandler(reports *reports.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Alerts lists items at or below warning thresholds, critical first.
// GET /api/v1/reports/alerts
func (h *ReportHandler) Alerts(c *gin.Context) {
	alerts, err := h.reports.StockAlerts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// Turnover sums inflow and outflow for an item over a period. The
// period defaults to the trailing 30 days.
// GET /api/v1/reports/turnover/:itemId
func (h *ReportHandler) Turnover(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}

	from, ok := h.ParseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.ParseTimeQuery(c, "to")
	if !ok {
		return
	}

	now := time.Now().UTC()
	if to == nil {
		to = &now
	}
	if from == nil {
		start := to.AddDate(0, 0, -30)
		from = &start
	}
	if !to.After(*from) {
		h.Error(c, apperror.NewValidation("'to' must be after 'from'"))
		return
	}

	report, err := h.reports.Turnover(c.Request.Context(), itemID, *from, *to)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
