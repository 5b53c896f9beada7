package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/domain/receiving"
	"stockpilot/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler serves goods receipt endpoints.
type ReceiptHandler struct {
	BaseHandler
	receipts *receiving.Service
}

func NewReceiptHandler(receipts *receiving.Service) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Create posts a goods receipt and the resulting stock movement.
// POST /api/v1/receipts
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	receipt := req.ToEntity()
	if err := h.receipts.Create(c.Request.Context(), receipt); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ReceiptToResponse(receipt))
}

// Get returns one receipt.
// GET /api/v1/receipts/:id
func (h *ReceiptHandler) Get(c *gin.Context) {
	receiptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receipts.Get(c.Request.Context(), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReceiptToResponse(receipt))
}

// List returns receipts with optional item and date filters.
// GET /api/v1/receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := receiving.Filter{Limit: page.PageSize, Offset: page.Offset()}
	if raw := c.Query("itemId"); raw != "" {
		itemID, err := parseIDString(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ItemID = &itemID
	}
	var okTime bool
	if filter.FromDate, okTime = h.ParseTimeQuery(c, "from"); !okTime {
		return
	}
	if filter.ToDate, okTime = h.ParseTimeQuery(c, "to"); !okTime {
		return
	}

	receipts, err := h.receipts.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	result := make([]dto.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		result = append(result, dto.ReceiptToResponse(receipt))
	}
	c.JSON(http.StatusOK, gin.H{"receipts": result, "page": page.Page, "pageSize": page.PageSize})
}
