package receiving

import (
	"context"
	"fmt"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/tx"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/ledger"
	"stockpilot/pkg/logger"
	"stockpilot/pkg/numerator"
)

const recorderType = "GoodsReceipt"

// Service posts goods receipts against the stock ledger.
type Service struct {
	repo      Repository
	stock     *ledger.Service
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
}

func NewService(repo Repository, stock *ledger.Service, gen numerator.Generator, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		stock:     stock,
		numerator: gen,
		txManager: txManager,
		audit:     recorder,
	}
}

// Create validates, numbers and persists the receipt, then posts the
// positive stock movement. Receipts use the strict numbering strategy
// because they are accounting documents.
func (s *Service) Create(ctx context.Context, r *Receipt) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}

	if _, err := s.stock.GetItem(ctx, r.ItemID); err != nil {
		return err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("GR"),
		&numerator.Options{Strategy: numerator.StrategyStrict}, r.ReceivedDate)
	if err != nil {
		return fmt.Errorf("generate receipt number: %w", err)
	}
	r.Number = number

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, r)
	}); err != nil {
		return err
	}

	corr := entity.Correlation{RecorderID: r.ID, RecorderType: recorderType}
	if _, err := s.stock.ApplyDelta(ctx, r.ItemID, r.Quantity, entity.MovementReceipt, corr); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.NewEntry("receipt", r.ID, audit.ActionReceive, r)); err != nil {
		logger.Warn(ctx, "audit record failed", "entity_id", r.ID, "error", err)
	}
	logger.Info(ctx, "goods receipt posted",
		"receipt_id", r.ID, "number", r.Number,
		"item_id", r.ItemID, "quantity", r.Quantity.Float64())
	return nil
}

// Get returns a receipt by id.
func (s *Service) Get(ctx context.Context, receiptID id.ID) (*Receipt, error) {
	return s.repo.GetByID(ctx, receiptID)
}

// List returns receipts matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Receipt, error) {
	return s.repo.List(ctx, filter)
}
