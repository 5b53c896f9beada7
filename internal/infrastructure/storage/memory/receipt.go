package memory

import (
	"context"
	"sort"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/receiving"
)

// ReceiptRepository implements receiving.Repository over the store.
type ReceiptRepository struct {
	store *Store
}

func NewReceiptRepository(store *Store) *ReceiptRepository {
	return &ReceiptRepository{store: store}
}

var _ receiving.Repository = (*ReceiptRepository)(nil)

func (r *ReceiptRepository) Create(ctx context.Context, receipt *receiving.Receipt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.receipts[receipt.ID]; exists {
		return apperror.NewDuplicate("receipt", "id", receipt.ID.String())
	}
	clone := *receipt
	r.store.receipts[receipt.ID] = &clone
	return nil
}

func (r *ReceiptRepository) GetByID(ctx context.Context, receiptID id.ID) (*receiving.Receipt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	receipt, ok := r.store.receipts[receiptID]
	if !ok {
		return nil, apperror.NewNotFound("receipt", receiptID)
	}
	clone := *receipt
	return &clone, nil
}

func (r *ReceiptRepository) List(ctx context.Context, filter receiving.Filter) ([]*receiving.Receipt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*receiving.Receipt, 0)
	for _, receipt := range r.store.receipts {
		if filter.ItemID != nil && receipt.ItemID != *filter.ItemID {
			continue
		}
		if filter.FromDate != nil && receipt.ReceivedDate.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && !receipt.ReceivedDate.Before(*filter.ToDate) {
			continue
		}
		clone := *receipt
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Number > result[j].Number
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}
