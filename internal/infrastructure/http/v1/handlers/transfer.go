package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/domain/transfer"
	"stockpilot/internal/infrastructure/http/v1/dto"
)

// TransferHandler serves the transfer workflow endpoints.
type TransferHandler struct {
	BaseHandler
	transfers *transfer.Service
}

func NewTransferHandler(transfers *transfer.Service) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Create creates a draft transfer.
// POST /api/v1/transfers
func (h *TransferHandler) Create(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := req.ToEntity()
	if err := h.transfers.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TransferToResponse(t))
}

// Get returns one transfer with lines and full status history.
// GET /api/v1/transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	t, err := h.transfers.Get(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TransferToResponse(t))
}

// List returns transfers with optional status, warehouse and date filters.
// GET /api/v1/transfers
func (h *TransferHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := transfer.Filter{Limit: page.PageSize, Offset: page.Offset()}
	if raw := c.Query("status"); raw != "" {
		status, err := transfer.ParseStatus(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("warehouseId"); raw != "" {
		warehouseID, err := parseIDString(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.WarehouseID = &warehouseID
	}
	var okTime bool
	if filter.FromDate, okTime = h.ParseTimeQuery(c, "from"); !okTime {
		return
	}
	if filter.ToDate, okTime = h.ParseTimeQuery(c, "to"); !okTime {
		return
	}

	transfers, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	result := make([]dto.TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		result = append(result, dto.TransferToResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"transfers": result, "page": page.Page, "pageSize": page.PageSize})
}

// Transition moves a transfer to a new status. Completion posts the
// stock movements atomically.
// POST /api/v1/transfers/:id/transition
func (h *TransferHandler) Transition(c *gin.Context) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.transfers.Transition(c.Request.Context(), transferID, transfer.Status(req.Status), req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TransferToResponse(t))
}

// History returns the append-only status trail, including rejected
// attempts.
// GET /api/v1/transfers/:id/history
func (h *TransferHandler) History(c *gin.Context) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	history, err := h.transfers.History(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statusHistory": dto.HistoryToResponse(history)})
}

// Delete removes a draft transfer.
// DELETE /api/v1/transfers/:id
func (h *TransferHandler) Delete(c *gin.Context) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.transfers.Delete(c.Request.Context(), transferID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
