package receiving

import (
	"context"
	"time"

	"stockpilot/internal/core/id"
)

// Filter narrows List results.
type Filter struct {
	ItemID   *id.ID
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository is the persistence port for receipts.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error)
	List(ctx context.Context, filter Filter) ([]*Receipt, error)
}
