package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/domain/warehouse"
	"stockpilot/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler manages the location catalog.
type WarehouseHandler struct {
	BaseHandler
	warehouses *warehouse.Service
}

func NewWarehouseHandler(warehouses *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{warehouses: warehouses}
}

// Create registers a new warehouse.
// POST /api/v1/warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := req.ToEntity()
	if err := h.warehouses.Create(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.WarehouseToResponse(w))
}

// Get returns a warehouse by id.
// GET /api/v1/warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	w, err := h.warehouses.Get(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WarehouseToResponse(w))
}

// List returns warehouses, optionally filtered by type or activity.
// GET /api/v1/warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}

	page.Defaults()

	filter := warehouse.Filter{
		ActiveOnly: c.Query("active") == "true",
		Limit:      page.PageSize,
		Offset:     page.Offset(),
	}
	if raw := c.Query("type"); raw != "" {
		t := warehouse.Type(raw)
		filter.Type = &t
	}

	list, err := h.warehouses.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		resp = append(resp, dto.WarehouseToResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": resp, "page": page.Page, "pageSize": page.PageSize})
}

// Update changes catalog fields of an existing warehouse.
// PUT /api/v1/warehouses/:id
func (h *WarehouseHandler) Update(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := h.warehouses.Get(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	w.Name = req.Name
	w.Type = warehouse.Type(req.Type)
	w.Address = req.Address
	if err := h.warehouses.Update(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WarehouseToResponse(w))
}

// Deactivate marks a warehouse inactive, removing it from transfer
// endpoints without losing history.
// POST /api/v1/warehouses/:id/deactivate
func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.warehouses.Deactivate(c.Request.Context(), warehouseID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
