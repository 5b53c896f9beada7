package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/domain/order"
	"stockpilot/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves the sales order endpoints.
type OrderHandler struct {
	BaseHandler
	orders *order.Service
}

func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create creates an order in pending-delivery.
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("error", err.Error()))
		return
	}

	if err := h.orders.Create(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OrderToResponse(o))
}

// Get returns one order with lines and history.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderToResponse(o))
}

// List returns orders with optional status, search and date filters.
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := order.Filter{
		Search: c.Query("search"),
		Limit:  page.PageSize,
		Offset: page.Offset(),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Status = &status
	}
	var okTime bool
	if filter.FromDate, okTime = h.ParseTimeQuery(c, "from"); !okTime {
		return
	}
	if filter.ToDate, okTime = h.ParseTimeQuery(c, "to"); !okTime {
		return
	}

	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	result := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, dto.OrderToResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": result, "page": page.Page, "pageSize": page.PageSize})
}

// Update replaces header fields and lines of a not-yet-done order.
// PUT /api/v1/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.Apply(o); err != nil {
		h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("error", err.Error()))
		return
	}

	if err := h.orders.Update(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderToResponse(o))
}

// UpdateStatus sets the fulfilment stage.
// POST /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), orderID, order.Status(req.Status), req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderToResponse(o))
}

// Delete removes an order that is not done.
// DELETE /api/v1/orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
