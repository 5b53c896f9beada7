package ledger

import (
	"context"
	"fmt"
	"time"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/lock"
	"stockpilot/internal/core/tx"
	"stockpilot/internal/core/types"
	"stockpilot/pkg/logger"
)

// Delta is one signed quantity change requested against an item.
type Delta struct {
	ItemID      id.ID
	Quantity    types.Quantity
	Kind        entity.MovementKind
	Correlation entity.Correlation
}

// Service provides business operations for the stock ledger.
//
// Mutations serialize per item through the keyed lock registry; multi-item
// batches take all locks in sorted order before touching any quantity, so
// either the whole batch applies or nothing does.
type Service struct {
	repo      Repository
	txManager tx.Manager
	locks     *lock.Keyed
}

// NewService creates a new ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		locks:     lock.NewKeyed(),
	}
}

// ApplyDelta records a single signed movement against an item and updates
// the cached total atomically. Rejects with InsufficientStock if the
// resulting stock would go negative.
func (s *Service) ApplyDelta(ctx context.Context, itemID id.ID, delta types.Quantity, kind entity.MovementKind, corr entity.Correlation) (entity.StockMovement, error) {
	movements, err := s.ApplyDeltas(ctx, []Delta{{
		ItemID:      itemID,
		Quantity:    delta,
		Kind:        kind,
		Correlation: corr,
	}})
	if err != nil {
		return entity.StockMovement{}, err
	}
	return movements[0], nil
}

// ApplyDeltas applies a batch of deltas as one all-or-nothing operation.
// Every delta is validated against the item's current stock before any
// movement is written; if any line would drive an item negative the whole
// batch fails and no quantities change.
func (s *Service) ApplyDeltas(ctx context.Context, deltas []Delta) ([]entity.StockMovement, error) {
	if len(deltas) == 0 {
		return nil, apperror.NewValidation("at least one delta is required")
	}

	keys := make([]string, 0, len(deltas))
	for i, d := range deltas {
		if !entity.KnownMovementKind(d.Kind) {
			return nil, apperror.NewValidation(fmt.Sprintf("delta %d: unknown movement kind %q", i, d.Kind))
		}
		if d.Quantity.IsZero() {
			return nil, apperror.NewValidation(fmt.Sprintf("delta %d: quantity must not be zero", i))
		}
		if id.IsNil(d.ItemID) {
			return nil, apperror.NewValidation(fmt.Sprintf("delta %d: item is required", i))
		}
		keys = append(keys, d.ItemID.String())
	}

	release, ok := s.locks.AcquireAll(ctx, keys)
	if !ok {
		return nil, apperror.NewBusy("item", keys)
	}
	defer release()

	var movements []entity.StockMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Net effect per item: a batch may touch the same item twice.
		totals := make(map[id.ID]types.Quantity, len(deltas))
		stocks := make(map[id.ID]types.Quantity, len(deltas))

		for _, d := range deltas {
			if _, seen := stocks[d.ItemID]; !seen {
				item, err := s.repo.GetItemForUpdate(ctx, d.ItemID)
				if err != nil {
					return err
				}
				stocks[d.ItemID] = item.CurrentStock
			}
			totals[d.ItemID] += d.Quantity
		}

		for itemID, net := range totals {
			if stocks[itemID]+net < 0 {
				return apperror.NewInsufficientStock(
					itemID.String(),
					net.Neg().Float64(),
					stocks[itemID].Float64(),
				)
			}
		}

		movements = make([]entity.StockMovement, 0, len(deltas))
		for _, d := range deltas {
			movements = append(movements, entity.NewStockMovement(d.ItemID, d.Quantity, d.Kind, d.Correlation))
		}
		if err := s.repo.AppendMovements(ctx, movements); err != nil {
			return fmt.Errorf("append movements: %w", err)
		}

		for itemID, net := range totals {
			if err := s.repo.UpdateItemStock(ctx, itemID, stocks[itemID]+net); err != nil {
				return fmt.Errorf("update stock: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "applied stock deltas",
		"count", len(movements),
		"recorder_id", deltas[0].Correlation.RecorderID,
	)

	return movements, nil
}

// CurrentStock returns the point-in-time on-hand quantity for an item.
func (s *Service) CurrentStock(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.CurrentStock, nil
}

// StatusOf returns the stock health badge for an item.
func (s *Service) StatusOf(ctx context.Context, itemID id.ID) (entity.StockStatus, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return "", err
	}
	return item.StockStatus(), nil
}

// GetItem retrieves an item by ID.
func (s *Service) GetItem(ctx context.Context, itemID id.ID) (*entity.InventoryItem, error) {
	return s.repo.GetItem(ctx, itemID)
}

// GetItemByKey retrieves an item by business key.
func (s *Service) GetItemByKey(ctx context.Context, key entity.ItemKey) (*entity.InventoryItem, error) {
	return s.repo.GetItemByKey(ctx, key)
}

// ListItems retrieves items with filtering.
func (s *Service) ListItems(ctx context.Context, filter ItemFilter) ([]entity.InventoryItem, error) {
	return s.repo.ListItems(ctx, filter)
}

// UpdateItemDetails applies a mutation to an item's descriptive fields
// under the item lock. Stock quantities cannot be changed this way; the
// mutation sees the current row but any stock edit is discarded.
func (s *Service) UpdateItemDetails(ctx context.Context, itemID id.ID, mutate func(item *entity.InventoryItem)) (*entity.InventoryItem, error) {
	release, ok := s.locks.AcquireAll(ctx, []string{itemID.String()})
	if !ok {
		return nil, apperror.NewBusy("item", itemID)
	}
	defer release()

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	stock := item.CurrentStock
	total := item.TotalStock
	mutate(item)
	item.CurrentStock = stock
	item.TotalStock = total

	if err := item.Validate(ctx); err != nil {
		return nil, err
	}
	item.Touch()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateItem registers a new inventory item. Opening stock, when present,
// is recorded through the ledger as an adjustment movement rather than
// assigned directly.
func (s *Service) CreateItem(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error) {
	opening := item.CurrentStock
	item.CurrentStock = 0

	if err := item.Validate(ctx); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetItemByKey(ctx, item.ItemKey); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("item", "key", item.ItemKey.String())
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	if opening.IsPositive() {
		if _, err := s.ApplyDelta(ctx, item.ID, opening, entity.MovementAdjustment, entity.Correlation{
			RecorderID:   item.ID,
			RecorderType: "OpeningStock",
		}); err != nil {
			return nil, err
		}
		item.CurrentStock = opening
	}

	logger.Info(ctx, "inventory item created",
		"id", item.ID,
		"key", item.ItemKey.String(),
	)

	return item, nil
}

// EnsureItem resolves an item by key, creating a zero-stock row from the
// template when none exists. Used when a transfer first lands a material
// at a destination location.
func (s *Service) EnsureItem(ctx context.Context, key entity.ItemKey, template *entity.InventoryItem) (*entity.InventoryItem, error) {
	item, err := s.repo.GetItemByKey(ctx, key)
	if err == nil {
		return item, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	created := entity.NewInventoryItem(key, template.MaterialDescription)
	created.Description = template.Description
	created.TotalStock = template.TotalStock
	created.MinimumStock = template.MinimumStock

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateItem(ctx, created)
	})
	if err != nil {
		// Lost a race with a concurrent EnsureItem; re-read.
		if apperror.IsCode(err, apperror.CodeDuplicate) {
			return s.repo.GetItemByKey(ctx, key)
		}
		return nil, err
	}

	return created, nil
}

// Movements returns the movement history for an item.
func (s *Service) Movements(ctx context.Context, itemID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.MovementsByItem(ctx, itemID, filter)
}

// DailyUsage estimates consumption per day from outflow movements over
// the trailing window. Returns zero when the item has no outflow.
func (s *Service) DailyUsage(ctx context.Context, itemID id.ID, window time.Duration) (float64, error) {
	if window <= 0 {
		return 0, apperror.NewValidation("usage window must be positive")
	}
	outflow, err := s.repo.OutflowSince(ctx, itemID, time.Now().UTC().Add(-window))
	if err != nil {
		return 0, err
	}
	days := window.Hours() / 24
	return outflow.Float64() / days, nil
}

// TurnoverFor sums inflow and outflow for an item over [from, to).
func (s *Service) TurnoverFor(ctx context.Context, itemID id.ID, from, to time.Time) (Turnover, error) {
	if !to.After(from) {
		return Turnover{}, apperror.NewValidation("turnover period is empty")
	}
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return Turnover{}, err
	}
	return s.repo.Turnover(ctx, itemID, from, to)
}
