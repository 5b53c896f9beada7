package memory

import (
	"context"
	"sort"
	"strings"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/order"
)

// OrderRepository implements order.Repository over the store.
type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

var _ order.Repository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.orders[o.ID]; exists {
		return apperror.NewDuplicate("order", "id", o.ID.String())
	}
	r.store.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.orders[o.ID]
	if !ok {
		return apperror.NewNotFound("order", o.ID)
	}
	if current.Version != o.Version-1 {
		return apperror.NewConcurrentModification("order", o.ID)
	}

	clone := cloneOrder(o)
	clone.History = current.History
	r.store.orders[o.ID] = clone
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, orderID id.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[orderID]; !ok {
		return apperror.NewNotFound("order", orderID)
	}
	delete(r.store.orders, orderID)
	return nil
}

func (r *OrderRepository) AppendHistory(ctx context.Context, orderID id.ID, change entity.StatusChange) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID)
	}
	o.History = append(o.History, change)
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*order.Order, 0)
	for _, o := range r.store.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !orderMatches(o, filter.Search) {
			continue
		}
		if filter.FromDate != nil && o.OrderDate.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && !o.OrderDate.Before(*filter.ToDate) {
			continue
		}
		result = append(result, cloneOrder(o))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Number > result[j].Number
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}

func orderMatches(o *order.Order, search string) bool {
	needle := strings.ToLower(search)
	for _, hay := range []string{o.Number, o.PONumber, o.CustomerName} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func cloneOrder(o *order.Order) *order.Order {
	clone := *o
	clone.Lines = append([]order.Line(nil), o.Lines...)
	clone.History = append([]entity.StatusChange(nil), o.History...)
	return &clone
}
