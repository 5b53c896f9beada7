package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/ledger"
)

// LedgerRepository implements ledger.Repository over the store.
type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

var _ ledger.Repository = (*LedgerRepository)(nil)

func (r *LedgerRepository) CreateItem(ctx context.Context, item *entity.InventoryItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := item.ItemKey.String()
	if _, exists := r.store.itemsByKey[key]; exists {
		return apperror.NewDuplicate("item", "key", key)
	}

	clone := *item
	r.store.items[item.ID] = &clone
	r.store.itemsByKey[key] = item.ID
	return nil
}

func (r *LedgerRepository) GetItem(ctx context.Context, itemID id.ID) (*entity.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.getItemLocked(itemID)
}

func (r *LedgerRepository) getItemLocked(itemID id.ID) (*entity.InventoryItem, error) {
	item, ok := r.store.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	clone := *item
	return &clone, nil
}

func (r *LedgerRepository) GetItemByKey(ctx context.Context, key entity.ItemKey) (*entity.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	itemID, ok := r.store.itemsByKey[key.String()]
	if !ok {
		return nil, apperror.NewNotFound("item", key.String())
	}
	return r.getItemLocked(itemID)
}

// GetItemForUpdate has no row locks in memory; the service-level keyed
// locks provide the serialization.
func (r *LedgerRepository) GetItemForUpdate(ctx context.Context, itemID id.ID) (*entity.InventoryItem, error) {
	return r.GetItem(ctx, itemID)
}

func (r *LedgerRepository) UpdateItem(ctx context.Context, item *entity.InventoryItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.items[item.ID]
	if !ok {
		return apperror.NewNotFound("item", item.ID)
	}
	if current.Version != item.Version-1 {
		return apperror.NewConcurrentModification("item", item.ID)
	}

	clone := *item
	r.store.items[item.ID] = &clone
	return nil
}

func (r *LedgerRepository) UpdateItemStock(ctx context.Context, itemID id.ID, stock types.Quantity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.items[itemID]
	if !ok {
		return apperror.NewNotFound("item", itemID)
	}
	item.CurrentStock = stock
	item.TotalStock = stock
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *LedgerRepository) ListItems(ctx context.Context, filter ledger.ItemFilter) ([]entity.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items := make([]entity.InventoryItem, 0, len(r.store.items))
	for _, item := range r.store.items {
		if filter.Plant != "" && item.Plant != filter.Plant {
			continue
		}
		if filter.Status != nil && item.StockStatus() != *filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(item, filter.Search) {
			continue
		}
		items = append(items, *item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ItemKey.String() < items[j].ItemKey.String()
	})

	return paginate(items, filter.Limit, filter.Offset), nil
}

func matchesSearch(item *entity.InventoryItem, search string) bool {
	needle := strings.ToLower(search)
	for _, hay := range []string{item.MaterialCode, item.MaterialDescription, item.Description, item.PlantName} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func (r *LedgerRepository) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.movements = append(r.store.movements, movements...)
	return nil
}

func (r *LedgerRepository) MovementsByItem(ctx context.Context, itemID id.ID, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]entity.StockMovement, 0)
	for _, m := range r.store.movements {
		if m.ItemID != itemID {
			continue
		}
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		if filter.FromDate != nil && m.CreatedAt.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && !m.CreatedAt.Before(*filter.ToDate) {
			continue
		}
		result = append(result, m)
	}

	// newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *LedgerRepository) MovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]entity.StockMovement, 0)
	for _, m := range r.store.movements {
		if m.RecorderID == recorderID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *LedgerRepository) OutflowSince(ctx context.Context, itemID id.ID, since time.Time) (types.Quantity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var outflow types.Quantity
	for _, m := range r.store.movements {
		if m.ItemID != itemID || m.CreatedAt.Before(since) {
			continue
		}
		if m.Quantity.IsNegative() {
			outflow += m.Quantity.Abs()
		}
	}
	return outflow, nil
}

func (r *LedgerRepository) Turnover(ctx context.Context, itemID id.ID, from, to time.Time) (ledger.Turnover, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t := ledger.Turnover{ItemID: itemID}
	for _, m := range r.store.movements {
		if m.ItemID != itemID || m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			continue
		}
		if m.Quantity.IsNegative() {
			t.Outflow += m.Quantity.Abs()
		} else {
			t.Inflow += m.Quantity
		}
	}
	t.Net = t.Inflow - t.Outflow
	return t, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
