package transfer

import (
	"context"
	"fmt"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/lock"
	"stockpilot/internal/core/tx"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/domain/warehouse"
	"stockpilot/pkg/logger"
	"stockpilot/pkg/numerator"
)

// recorderType tags stock movements produced by transfers.
const recorderType = "Transfer"

// Service implements the transfer workflow over the ledger.
type Service struct {
	repo       Repository
	warehouses warehouse.Repository
	stock      *ledger.Service
	numerator  numerator.Generator
	txManager  tx.Manager
	locks      *lock.Keyed
	audit      audit.Recorder
}

func NewService(
	repo Repository,
	warehouses warehouse.Repository,
	stock *ledger.Service,
	gen numerator.Generator,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:       repo,
		warehouses: warehouses,
		stock:      stock,
		numerator:  gen,
		txManager:  txManager,
		locks:      lock.NewKeyed(),
		audit:      recorder,
	}
}

// Create validates and persists a new transfer in draft. The route must
// connect two distinct active warehouses, every line needs a positive
// quantity, and each line's item must currently hold at least the
// requested quantity at the source. No stock moves at creation.
func (s *Service) Create(ctx context.Context, t *Transfer) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}

	source, err := s.warehouses.GetByID(ctx, t.SourceWarehouseID)
	if err != nil {
		return err
	}
	destination, err := s.warehouses.GetByID(ctx, t.DestinationWarehouseID)
	if err != nil {
		return err
	}
	if !source.IsActive || !destination.IsActive {
		return apperror.NewValidation("transfer endpoints must be active warehouses")
	}

	for i := range t.Lines {
		line := &t.Lines[i]

		item, err := s.stock.GetItem(ctx, line.ItemID)
		if err != nil {
			return err
		}
		if item.Plant != source.Plant || item.StorageLocation != source.StorageLocation {
			return apperror.NewValidation("item is not stocked at the source warehouse").
				WithDetail("lineNo", line.LineNo).
				WithDetail("itemKey", item.ItemKey.String())
		}
		if item.CurrentStock < line.Quantity {
			return apperror.NewInsufficientStock(item.ID.String(), line.Quantity.Float64(), item.CurrentStock.Float64())
		}

		line.MaterialCode = item.MaterialCode
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("TRF"),
		&numerator.Options{Strategy: numerator.StrategyCached}, t.RequestDate)
	if err != nil {
		return fmt.Errorf("generate transfer number: %w", err)
	}
	t.Number = number

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, t)
	}); err != nil {
		return err
	}

	s.record(ctx, audit.NewEntry("transfer", t.ID, audit.ActionCreate, t))
	logger.Info(ctx, "transfer created",
		"transfer_id", t.ID, "number", t.Number,
		"source", source.Code, "destination", destination.Code,
		"lines", len(t.Lines))
	return nil
}

// Transition moves a transfer to a new status. Every call appends a
// history record: accepted transitions append an applied record after
// the change commits, rejected ones append a rejection record and
// return the error with the transfer state untouched.
//
// Entering completed posts the stock movements for all lines as one
// atomic batch. If any line lacks stock nothing moves, the status stays
// in-transit, and the rejection is recorded.
func (s *Service) Transition(ctx context.Context, transferID id.ID, to Status, note string) (*Transfer, error) {
	if _, err := ParseStatus(string(to)); err != nil {
		return nil, err
	}

	if !s.locks.Acquire(ctx, transferID.String()) {
		return nil, apperror.NewBusy("transfer", transferID)
	}
	defer s.locks.Release(transferID.String())

	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(t.Status, to) {
		rejection := entity.NewRejectedStatusChange(string(to),
			fmt.Sprintf("rejected: no transition from %s to %s", t.Status, to))
		s.appendHistory(ctx, t, rejection)
		return nil, apperror.NewIllegalTransition("transfer", string(t.Status), string(to))
	}

	change := entity.NewStatusChange(string(to), note)
	t.Status = to
	if to == StatusCompleted && t.CompletionDate == nil {
		completed := change.Timestamp
		t.CompletionDate = &completed
	}
	t.Touch()

	// The completion deltas and the status persistence share one
	// transaction: either the stock moves and the transfer reads
	// completed, or neither happens.
	var completionErr error
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var posted []ledger.Delta
		if to == StatusCompleted {
			deltas, err := s.completionDeltas(ctx, t)
			if err != nil {
				completionErr = err
				return err
			}
			if _, err := s.stock.ApplyDeltas(ctx, deltas); err != nil {
				completionErr = err
				return err
			}
			posted = deltas
		}

		if err := s.repo.Update(ctx, t); err != nil {
			s.reverseDeltas(ctx, posted)
			return err
		}
		if err := s.repo.AppendHistory(ctx, t.ID, change); err != nil {
			s.reverseDeltas(ctx, posted)
			return err
		}
		return nil
	})
	if err != nil {
		if completionErr != nil {
			rejection := entity.NewRejectedStatusChange(string(to), "rejected: "+completionErr.Error())
			s.appendHistory(ctx, t, rejection)
		}
		return nil, err
	}
	t.History = append(t.History, change)

	s.record(ctx, audit.NewEntry("transfer", t.ID, audit.ActionTransition, map[string]any{
		"status": to,
		"note":   note,
	}))
	logger.Info(ctx, "transfer status changed",
		"transfer_id", t.ID, "number", t.Number, "status", to)
	return t, nil
}

// completionDeltas builds the paired stock movements for every line:
// a negative delta at the source item and a positive delta at the
// destination item, resolved (or created empty) under the destination
// warehouse's plant and storage location.
func (s *Service) completionDeltas(ctx context.Context, t *Transfer) ([]ledger.Delta, error) {
	destination, err := s.warehouses.GetByID(ctx, t.DestinationWarehouseID)
	if err != nil {
		return nil, err
	}

	corr := entity.Correlation{RecorderID: t.ID, RecorderType: recorderType}
	deltas := make([]ledger.Delta, 0, len(t.Lines)*2)

	for _, line := range t.Lines {
		sourceItem, err := s.stock.GetItem(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}

		destKey := entity.ItemKey{
			Plant:           destination.Plant,
			StorageLocation: destination.StorageLocation,
			MaterialCode:    line.MaterialCode,
		}
		destItem, err := s.stock.EnsureItem(ctx, destKey, sourceItem)
		if err != nil {
			return nil, err
		}

		deltas = append(deltas,
			ledger.Delta{
				ItemID:      line.ItemID,
				Quantity:    line.Quantity.Neg(),
				Kind:        entity.MovementTransferOut,
				Correlation: corr,
			},
			ledger.Delta{
				ItemID:      destItem.ID,
				Quantity:    line.Quantity,
				Kind:        entity.MovementTransferIn,
				Correlation: corr,
			},
		)
	}

	return deltas, nil
}

// reverseDeltas posts the inverse of an applied batch. Called when the
// status persistence fails after the stock already moved; a database
// transaction discards both sides on rollback, a plain store needs the
// quantities put back explicitly.
func (s *Service) reverseDeltas(ctx context.Context, posted []ledger.Delta) {
	if len(posted) == 0 {
		return
	}

	reversed := make([]ledger.Delta, 0, len(posted))
	for _, d := range posted {
		kind := d.Kind
		switch kind {
		case entity.MovementTransferOut:
			kind = entity.MovementTransferIn
		case entity.MovementTransferIn:
			kind = entity.MovementTransferOut
		}
		reversed = append(reversed, ledger.Delta{
			ItemID:      d.ItemID,
			Quantity:    d.Quantity.Neg(),
			Kind:        kind,
			Correlation: d.Correlation,
		})
	}

	if _, err := s.stock.ApplyDeltas(ctx, reversed); err != nil {
		logger.Error(ctx, "reverse transfer deltas",
			"recorder_id", posted[0].Correlation.RecorderID, "error", err)
	}
}

// appendHistory persists a history record outside the main state
// change. Used for rejected attempts, which must survive even though
// the transition itself failed.
func (s *Service) appendHistory(ctx context.Context, t *Transfer, change entity.StatusChange) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.AppendHistory(ctx, t.ID, change)
	})
	if err != nil {
		logger.Error(ctx, "append transfer history", "transfer_id", t.ID, "error", err)
		return
	}
	t.History = append(t.History, change)
}

// Delete removes a transfer. Only drafts can be deleted; anything past
// draft has an auditable trail that must survive.
func (s *Service) Delete(ctx context.Context, transferID id.ID) error {
	if !s.locks.Acquire(ctx, transferID.String()) {
		return apperror.NewBusy("transfer", transferID)
	}
	defer s.locks.Release(transferID.String())

	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return err
	}

	if t.Status != StatusDraft {
		return apperror.NewIllegalOperation(
			fmt.Sprintf("transfer %s cannot be deleted in status %s", t.Number, t.Status))
	}

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, transferID)
	}); err != nil {
		return err
	}

	s.record(ctx, audit.NewEntry("transfer", transferID, audit.ActionDelete, nil))
	logger.Info(ctx, "transfer deleted", "transfer_id", transferID, "number", t.Number)
	return nil
}

// Get returns a transfer with lines and full history.
func (s *Service) Get(ctx context.Context, transferID id.ID) (*Transfer, error) {
	return s.repo.GetByID(ctx, transferID)
}

// List returns transfers matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Transfer, error) {
	return s.repo.List(ctx, filter)
}

// History returns the status trail ordered oldest first.
func (s *Service) History(ctx context.Context, transferID id.ID) ([]entity.StatusChange, error) {
	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	return t.History, nil
}

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record failed",
			"entity_type", entry.EntityType, "entity_id", entry.EntityID, "error", err)
	}
}
