// Package order provides the sales order document and its fulfilment
// status tracking. Unlike transfers, order statuses form a loose
// tracking label rather than a strict machine: any known status may
// follow any other, so upstream systems can report stages out of order.
package order

import (
	"context"
	"strings"
	"time"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
)

// Status is the fulfilment stage of an order.
type Status string

const (
	StatusPendingDelivery Status = "pending-delivery"
	StatusPendingInvoice  Status = "pending-invoice"
	StatusPendingItem     Status = "pending-item"
	StatusDelivery        Status = "delivery"
	StatusDone            Status = "done"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPendingDelivery, StatusPendingInvoice, StatusPendingItem,
		StatusDelivery, StatusDone:
		return Status(s), nil
	}
	return "", apperror.NewUnknownStatus("order", s)
}

// Line is one priced position on an order.
type Line struct {
	LineID      id.ID  `db:"line_id" json:"lineId"`
	LineNo      int    `db:"line_no" json:"lineNo"`
	Description string `db:"description" json:"description"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	// LineTotal is Quantity * UnitPrice, computed at write time.
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Order is a customer sales order.
type Order struct {
	entity.BaseRecord

	// Number is the auto-generated order number (SO-...).
	Number string `db:"number" json:"number"`

	// PONumber is the customer's purchase order reference.
	PONumber string `db:"po_number" json:"poNumber"`

	CustomerName    string `db:"customer_name" json:"customerName"`
	DeliveryAddress string `db:"delivery_address" json:"deliveryAddress,omitempty"`

	OrderDate time.Time `db:"order_date" json:"orderDate"`

	Status Status `db:"status" json:"status"`

	// Total is the sum of line totals.
	Total types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines"`

	History []entity.StatusChange `db:"-" json:"statusHistory"`
}

// New creates an order in pending-delivery with the creation history
// record.
func New(poNumber, customerName string) *Order {
	o := &Order{
		BaseRecord:   entity.NewBaseRecord(),
		PONumber:     strings.TrimSpace(poNumber),
		CustomerName: strings.TrimSpace(customerName),
		OrderDate:    time.Now().UTC(),
		Status:       StatusPendingDelivery,
		Total:        types.ZeroMoney(),
		Lines:        make([]Line, 0),
	}
	o.History = []entity.StatusChange{entity.NewStatusChange(string(StatusPendingDelivery), "created")}
	return o
}

// AddLine appends a priced position and recomputes the total.
func (o *Order) AddLine(description string, quantity types.Quantity, unitPrice types.Money) {
	line := Line{
		LineID:      id.New(),
		LineNo:      len(o.Lines) + 1,
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(types.NewMoney(quantity.Float64())),
	}
	o.Lines = append(o.Lines, line)
	o.recalcTotal()
}

func (o *Order) recalcTotal() {
	total := types.ZeroMoney()
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal)
	}
	o.Total = total
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if strings.TrimSpace(o.CustomerName) == "" {
		return apperror.NewValidation("customer name is required")
	}
	if len(o.Lines) == 0 {
		return apperror.NewValidation("order must have at least one line")
	}
	for i, line := range o.Lines {
		if strings.TrimSpace(line.Description) == "" {
			return apperror.NewValidation("line description is required").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
