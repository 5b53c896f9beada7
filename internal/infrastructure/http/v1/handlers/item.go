package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/infrastructure/http/v1/dto"
)

// ItemHandler serves inventory item and movement endpoints.
type ItemHandler struct {
	BaseHandler
	stock *ledger.Service
}

func NewItemHandler(stock *ledger.Service) *ItemHandler {
	return &ItemHandler{stock: stock}
}

// Create registers a new inventory item.
// POST /api/v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.stock.CreateItem(c.Request.Context(), req.ToEntity())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ItemToResponse(item))
}

// Get returns one item with its derived stock status.
// GET /api/v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.stock.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ItemToResponse(item))
}

// List returns items with optional search, plant and status filters.
// GET /api/v1/items
func (h *ItemHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := ledger.ItemFilter{
		Search: c.Query("search"),
		Plant:  c.Query("plant"),
		Limit:  page.PageSize,
		Offset: page.Offset(),
	}
	if raw := c.Query("status"); raw != "" {
		status := entity.StockStatus(raw)
		filter.Status = &status
	}

	items, err := h.stock.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	result := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		result = append(result, dto.ItemToResponse(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": result, "page": page.Page, "pageSize": page.PageSize})
}

// Update patches mutable item fields.
// PUT /api/v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.stock.UpdateItemDetails(c.Request.Context(), itemID, func(item *entity.InventoryItem) {
		req.ApplyTo(item)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ItemToResponse(item))
}

// Adjust applies a manual signed stock adjustment.
// POST /api/v1/items/:id/adjust
func (h *ItemHandler) Adjust(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.stock.ApplyDelta(c.Request.Context(), itemID,
		types.NewQuantityFromFloat64(req.Quantity), entity.MovementAdjustment,
		entity.Correlation{RecorderID: itemID, RecorderType: "ManualAdjustment"})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MovementToResponse(movement))
}

// Movements returns an item's ledger history, newest first.
// GET /api/v1/items/:id/movements
func (h *ItemHandler) Movements(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := ledger.MovementFilter{Limit: page.PageSize, Offset: page.Offset()}
	if raw := c.Query("kind"); raw != "" {
		kind := entity.MovementKind(raw)
		filter.Kind = &kind
	}
	var okTime bool
	if filter.FromDate, okTime = h.ParseTimeQuery(c, "from"); !okTime {
		return
	}
	if filter.ToDate, okTime = h.ParseTimeQuery(c, "to"); !okTime {
		return
	}

	movements, err := h.stock.Movements(c.Request.Context(), itemID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	result := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		result = append(result, dto.MovementToResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"movements": result})
}
