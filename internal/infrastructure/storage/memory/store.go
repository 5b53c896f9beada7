// Package memory is an in-process storage backend. It implements every
// repository port over plain maps guarded by one RWMutex, which makes it
// the backend for tests and for running the server without Postgres.
package memory

import (
	"context"
	"sync"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/order"
	"stockpilot/internal/domain/receiving"
	"stockpilot/internal/domain/transfer"
	"stockpilot/internal/domain/warehouse"
)

// Store holds all collections. One store instance backs every
// repository, so cross-entity reads inside a transaction callback see a
// consistent view.
type Store struct {
	mu sync.RWMutex

	items      map[id.ID]*entity.InventoryItem
	itemsByKey map[string]id.ID
	movements  []entity.StockMovement
	transfers  map[id.ID]*transfer.Transfer
	orders     map[id.ID]*order.Order
	receipts   map[id.ID]*receiving.Receipt
	warehouses map[id.ID]*warehouse.Warehouse
	auditTrail []audit.Entry
}

func NewStore() *Store {
	return &Store{
		items:      make(map[id.ID]*entity.InventoryItem),
		itemsByKey: make(map[string]id.ID),
		movements:  make([]entity.StockMovement, 0),
		transfers:  make(map[id.ID]*transfer.Transfer),
		orders:     make(map[id.ID]*order.Order),
		receipts:   make(map[id.ID]*receiving.Receipt),
		warehouses: make(map[id.ID]*warehouse.Warehouse),
		auditTrail: make([]audit.Entry, 0),
	}
}

// TxManager satisfies tx.Manager. The store has no real transactions;
// callbacks run directly and rely on the service-level keyed locks for
// isolation.
type TxManager struct{}

func NewTxManager() *TxManager { return &TxManager{} }

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
