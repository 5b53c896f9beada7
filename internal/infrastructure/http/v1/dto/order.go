package dto

import (
	"time"

	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/order"
)

// CreateOrderRequest creates a sales order.
type CreateOrderRequest struct {
	PONumber        string             `json:"poNumber,omitempty"`
	CustomerName    string             `json:"customerName" binding:"required"`
	DeliveryAddress string             `json:"deliveryAddress,omitempty"`
	Lines           []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// OrderLineRequest is one priced position in a create/update request.
type OrderLineRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   string  `json:"unitPrice" binding:"required"`
}

// ToEntity converts the request to a domain order. Unit prices arrive
// as strings to preserve decimal precision.
func (r *CreateOrderRequest) ToEntity() (*order.Order, error) {
	o := order.New(r.PONumber, r.CustomerName)
	o.DeliveryAddress = r.DeliveryAddress
	for _, line := range r.Lines {
		price, err := types.NewMoneyFromString(line.UnitPrice)
		if err != nil {
			return nil, err
		}
		o.AddLine(line.Description, types.NewQuantityFromFloat64(line.Quantity), price)
	}
	return o, nil
}

// UpdateOrderRequest replaces mutable header fields and lines.
type UpdateOrderRequest struct {
	PONumber        string             `json:"poNumber,omitempty"`
	CustomerName    string             `json:"customerName" binding:"required"`
	DeliveryAddress string             `json:"deliveryAddress,omitempty"`
	Lines           []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// Apply overlays the request onto an existing order, replacing its
// lines wholesale.
func (r *UpdateOrderRequest) Apply(o *order.Order) error {
	o.PONumber = r.PONumber
	o.CustomerName = r.CustomerName
	o.DeliveryAddress = r.DeliveryAddress
	o.Lines = o.Lines[:0]
	for _, line := range r.Lines {
		price, err := types.NewMoneyFromString(line.UnitPrice)
		if err != nil {
			return err
		}
		o.AddLine(line.Description, types.NewQuantityFromFloat64(line.Quantity), price)
	}
	return nil
}

// OrderLineResponse is one line of an order.
type OrderLineResponse struct {
	LineID      string  `json:"lineId"`
	LineNo      int     `json:"lineNo"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   string  `json:"unitPrice"`
	LineTotal   string  `json:"lineTotal"`
}

// OrderResponse is the API shape of an order.
type OrderResponse struct {
	ID              string                 `json:"id"`
	Number          string                 `json:"number"`
	PONumber        string                 `json:"poNumber,omitempty"`
	CustomerName    string                 `json:"customerName"`
	DeliveryAddress string                 `json:"deliveryAddress,omitempty"`
	OrderDate       time.Time              `json:"orderDate"`
	Status          string                 `json:"status"`
	Total           string                 `json:"total"`
	Lines           []OrderLineResponse    `json:"lines"`
	History         []StatusChangeResponse `json:"statusHistory"`
}

// OrderToResponse maps a domain order.
func OrderToResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID.String(),
		Number:          o.Number,
		PONumber:        o.PONumber,
		CustomerName:    o.CustomerName,
		DeliveryAddress: o.DeliveryAddress,
		OrderDate:       o.OrderDate,
		Status:          string(o.Status),
		Total:           o.Total.StringFixed(2),
		Lines:           make([]OrderLineResponse, 0, len(o.Lines)),
		History:         HistoryToResponse(o.History),
	}
	for _, line := range o.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			LineID:      line.LineID.String(),
			LineNo:      line.LineNo,
			Description: line.Description,
			Quantity:    line.Quantity.Float64(),
			UnitPrice:   line.UnitPrice.StringFixed(2),
			LineTotal:   line.LineTotal.StringFixed(2),
		})
	}
	return resp
}
