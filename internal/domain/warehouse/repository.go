package warehouse

import (
	"context"

	"stockpilot/internal/core/id"
)

// Filter narrows List results.
type Filter struct {
	Type       *Type
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository is the persistence port for the location catalog.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
	GetByCode(ctx context.Context, code string) (*Warehouse, error)
	Update(ctx context.Context, w *Warehouse) error
	List(ctx context.Context, filter Filter) ([]*Warehouse, error)
}
