package transfer

import (
	"context"
	"time"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
)

// Filter narrows List results.
type Filter struct {
	Status      *Status
	WarehouseID *id.ID
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// Repository is the persistence port for transfers. Implementations
// store lines and history alongside the header and return them fully
// loaded from the Get methods.
type Repository interface {
	Create(ctx context.Context, t *Transfer) error

	GetByID(ctx context.Context, transferID id.ID) (*Transfer, error)

	// GetForUpdate loads the transfer with a write lock when the backing
	// store supports one. Must run inside a transaction.
	GetForUpdate(ctx context.Context, transferID id.ID) (*Transfer, error)

	// Update persists header fields (status, completion date, notes,
	// version). Lines are immutable after creation.
	Update(ctx context.Context, t *Transfer) error

	Delete(ctx context.Context, transferID id.ID) error

	// AppendHistory adds one status change record. History rows are
	// never updated or deleted.
	AppendHistory(ctx context.Context, transferID id.ID, change entity.StatusChange) error

	List(ctx context.Context, filter Filter) ([]*Transfer, error)
}
