package memory

import (
	"context"
	"sort"
	"strings"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/warehouse"
)

// WarehouseRepository implements warehouse.Repository over the store.
type WarehouseRepository struct {
	store *Store
}

func NewWarehouseRepository(store *Store) *WarehouseRepository {
	return &WarehouseRepository{store: store}
}

var _ warehouse.Repository = (*WarehouseRepository)(nil)

func (r *WarehouseRepository) Create(ctx context.Context, w *warehouse.Warehouse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.warehouses {
		if strings.EqualFold(existing.Code, w.Code) {
			return apperror.NewDuplicate("warehouse", "code", w.Code)
		}
	}
	clone := *w
	r.store.warehouses[w.ID] = &clone
	return nil
}

func (r *WarehouseRepository) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	w, ok := r.store.warehouses[warehouseID]
	if !ok {
		return nil, apperror.NewNotFound("warehouse", warehouseID)
	}
	clone := *w
	return &clone, nil
}

func (r *WarehouseRepository) GetByCode(ctx context.Context, code string) (*warehouse.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, w := range r.store.warehouses {
		if strings.EqualFold(w.Code, code) {
			clone := *w
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("warehouse", code)
}

func (r *WarehouseRepository) Update(ctx context.Context, w *warehouse.Warehouse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.warehouses[w.ID]
	if !ok {
		return apperror.NewNotFound("warehouse", w.ID)
	}
	if current.Version != w.Version-1 {
		return apperror.NewConcurrentModification("warehouse", w.ID)
	}
	clone := *w
	r.store.warehouses[w.ID] = &clone
	return nil
}

func (r *WarehouseRepository) List(ctx context.Context, filter warehouse.Filter) ([]*warehouse.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*warehouse.Warehouse, 0)
	for _, w := range r.store.warehouses {
		if filter.Type != nil && w.Type != *filter.Type {
			continue
		}
		if filter.ActiveOnly && !w.IsActive {
			continue
		}
		clone := *w
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}
