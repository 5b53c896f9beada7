// Package ledger provides the stock ledger: per-item quantity state,
// the append-only movement log, and the stock status read model.
package ledger

import (
	"context"
	"time"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
)

// Repository defines storage operations for the ledger.
type Repository interface {
	// Item operations

	// CreateItem inserts a new inventory item.
	CreateItem(ctx context.Context, item *entity.InventoryItem) error

	// GetItem retrieves an item by ID.
	GetItem(ctx context.Context, itemID id.ID) (*entity.InventoryItem, error)

	// GetItemByKey retrieves an item by its (plant, storage location,
	// material code) business key.
	GetItemByKey(ctx context.Context, key entity.ItemKey) (*entity.InventoryItem, error)

	// GetItemForUpdate retrieves an item with a row lock for stock control.
	GetItemForUpdate(ctx context.Context, itemID id.ID) (*entity.InventoryItem, error)

	// UpdateItem persists item fields (with optimistic locking).
	UpdateItem(ctx context.Context, item *entity.InventoryItem) error

	// UpdateItemStock sets the cached running total after a movement.
	UpdateItemStock(ctx context.Context, itemID id.ID, stock types.Quantity) error

	// ListItems retrieves items with filtering.
	ListItems(ctx context.Context, filter ItemFilter) ([]entity.InventoryItem, error)

	// Movement operations

	// AppendMovements batch inserts ledger entries. Movements are
	// immutable once written.
	AppendMovements(ctx context.Context, movements []entity.StockMovement) error

	// MovementsByItem returns the movement history for an item,
	// newest first.
	MovementsByItem(ctx context.Context, itemID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// MovementsByRecorder returns all movements correlated with a
	// transfer/order/receipt.
	MovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)

	// OutflowSince sums the absolute value of negative deltas recorded
	// for the item at or after since. Feeds the usage-rate estimate.
	OutflowSince(ctx context.Context, itemID id.ID, since time.Time) (types.Quantity, error)

	// Turnover sums inflow and outflow for the item over [from, to).
	Turnover(ctx context.Context, itemID id.ID, from, to time.Time) (Turnover, error)
}

// ItemFilter for filtering item lists.
type ItemFilter struct {
	// Search matches against material code and descriptions.
	Search string

	// Plant restricts to one plant code.
	Plant string

	// Status restricts to one stock status badge.
	Status *entity.StockStatus

	Limit  int
	Offset int
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Kind     *entity.MovementKind
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Turnover represents inflow/outflow totals for an item over a period.
type Turnover struct {
	ItemID  id.ID          `json:"itemId"`
	Inflow  types.Quantity `json:"inflow"`
	Outflow types.Quantity `json:"outflow"`
	Net     types.Quantity `json:"net"`
}
