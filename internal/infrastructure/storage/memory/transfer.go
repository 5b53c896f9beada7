package memory

import (
	"context"
	"sort"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/transfer"
)

// TransferRepository implements transfer.Repository over the store.
type TransferRepository struct {
	store *Store
}

func NewTransferRepository(store *Store) *TransferRepository {
	return &TransferRepository{store: store}
}

var _ transfer.Repository = (*TransferRepository)(nil)

func (r *TransferRepository) Create(ctx context.Context, t *transfer.Transfer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.transfers[t.ID]; exists {
		return apperror.NewDuplicate("transfer", "id", t.ID.String())
	}
	r.store.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.transfers[transferID]
	if !ok {
		return nil, apperror.NewNotFound("transfer", transferID)
	}
	return cloneTransfer(t), nil
}

func (r *TransferRepository) GetForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.GetByID(ctx, transferID)
}

func (r *TransferRepository) Update(ctx context.Context, t *transfer.Transfer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.transfers[t.ID]
	if !ok {
		return apperror.NewNotFound("transfer", t.ID)
	}
	if current.Version != t.Version-1 {
		return apperror.NewConcurrentModification("transfer", t.ID)
	}

	clone := cloneTransfer(t)
	// History is owned by AppendHistory.
	clone.History = current.History
	r.store.transfers[t.ID] = clone
	return nil
}

func (r *TransferRepository) Delete(ctx context.Context, transferID id.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.transfers[transferID]; !ok {
		return apperror.NewNotFound("transfer", transferID)
	}
	delete(r.store.transfers, transferID)
	return nil
}

func (r *TransferRepository) AppendHistory(ctx context.Context, transferID id.ID, change entity.StatusChange) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.transfers[transferID]
	if !ok {
		return apperror.NewNotFound("transfer", transferID)
	}
	t.History = append(t.History, change)
	return nil
}

func (r *TransferRepository) List(ctx context.Context, filter transfer.Filter) ([]*transfer.Transfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*transfer.Transfer, 0)
	for _, t := range r.store.transfers {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.WarehouseID != nil &&
			t.SourceWarehouseID != *filter.WarehouseID &&
			t.DestinationWarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.FromDate != nil && t.RequestDate.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && !t.RequestDate.Before(*filter.ToDate) {
			continue
		}
		result = append(result, cloneTransfer(t))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Number > result[j].Number
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}

func cloneTransfer(t *transfer.Transfer) *transfer.Transfer {
	clone := *t
	clone.Lines = append([]transfer.Line(nil), t.Lines...)
	clone.History = append([]entity.StatusChange(nil), t.History...)
	if t.CompletionDate != nil {
		completed := *t.CompletionDate
		clone.CompletionDate = &completed
	}
	return &clone
}
