package order

import (
	"context"
	"fmt"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/lock"
	"stockpilot/internal/core/tx"
	"stockpilot/internal/domain/audit"
	"stockpilot/pkg/logger"
	"stockpilot/pkg/numerator"
)

// Service implements order document operations.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	locks     *lock.Keyed
	audit     audit.Recorder
}

func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		locks:     lock.NewKeyed(),
		audit:     recorder,
	}
}

// Create validates and persists a new order in pending-delivery.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SO"),
		&numerator.Options{Strategy: numerator.StrategyCached}, o.OrderDate)
	if err != nil {
		return fmt.Errorf("generate order number: %w", err)
	}
	o.Number = number

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, o)
	}); err != nil {
		return err
	}

	s.record(ctx, audit.NewEntry("order", o.ID, audit.ActionCreate, o))
	logger.Info(ctx, "order created",
		"order_id", o.ID, "number", o.Number,
		"customer", o.CustomerName, "total", o.Total.String())
	return nil
}

// UpdateStatus sets the fulfilment stage. Any known status may follow
// any other; only unknown status strings are rejected. Every accepted
// change appends to history.
func (s *Service) UpdateStatus(ctx context.Context, orderID id.ID, status Status, note string) (*Order, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	if !s.locks.Acquire(ctx, orderID.String()) {
		return nil, apperror.NewBusy("order", orderID)
	}
	defer s.locks.Release(orderID.String())

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	change := entity.NewStatusChange(string(status), note)
	o.Status = status
	o.Touch()

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		return s.repo.AppendHistory(ctx, o.ID, change)
	}); err != nil {
		return nil, err
	}
	o.History = append(o.History, change)

	s.record(ctx, audit.NewEntry("order", o.ID, audit.ActionTransition, map[string]any{
		"status": status,
		"note":   note,
	}))
	logger.Info(ctx, "order status changed",
		"order_id", o.ID, "number", o.Number, "status", status)
	return o, nil
}

// Update replaces mutable header fields and lines, recomputing totals.
// Completed orders are frozen.
func (s *Service) Update(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	if !s.locks.Acquire(ctx, o.ID.String()) {
		return apperror.NewBusy("order", o.ID)
	}
	defer s.locks.Release(o.ID.String())

	current, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	if current.Status == StatusDone {
		return apperror.NewIllegalOperation(
			fmt.Sprintf("order %s is done and cannot be modified", current.Number))
	}

	o.recalcTotal()
	o.Touch()

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, o)
	}); err != nil {
		return err
	}

	s.record(ctx, audit.NewEntry("order", o.ID, audit.ActionUpdate, o))
	return nil
}

// Delete removes an order that has not reached done.
func (s *Service) Delete(ctx context.Context, orderID id.ID) error {
	if !s.locks.Acquire(ctx, orderID.String()) {
		return apperror.NewBusy("order", orderID)
	}
	defer s.locks.Release(orderID.String())

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == StatusDone {
		return apperror.NewIllegalOperation(
			fmt.Sprintf("order %s is done and cannot be deleted", o.Number))
	}

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, orderID)
	}); err != nil {
		return err
	}

	s.record(ctx, audit.NewEntry("order", orderID, audit.ActionDelete, nil))
	logger.Info(ctx, "order deleted", "order_id", orderID, "number", o.Number)
	return nil
}

// Get returns an order with lines and history.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Order, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record failed",
			"entity_type", entry.EntityType, "entity_id", entry.EntityID, "error", err)
	}
}
