package order

import (
	"context"
	"time"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
)

// Filter narrows List results.
type Filter struct {
	Status   *Status
	Search   string // matches number, PO number or customer name
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository is the persistence port for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, orderID id.ID) error
	AppendHistory(ctx context.Context, orderID id.ID, change entity.StatusChange) error
	List(ctx context.Context, filter Filter) ([]*Order, error)
}
