package warehouse

import (
	"context"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/id"
	"stockpilot/pkg/logger"
)

// Service provides catalog operations over warehouses.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new location. Codes are unique.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, w.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("warehouse", "code", w.Code)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return err
	}

	logger.Info(ctx, "warehouse created", "warehouse_id", w.ID, "code", w.Code)
	return nil
}

// Get returns a warehouse by id.
func (s *Service) Get(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// GetByCode returns a warehouse by its short code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Warehouse, error) {
	return s.repo.GetByCode(ctx, code)
}

// Update persists catalog changes.
func (s *Service) Update(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	w.Touch()
	return s.repo.Update(ctx, w)
}

// Deactivate marks a location inactive. Inactive locations cannot be
// used as transfer endpoints.
func (s *Service) Deactivate(ctx context.Context, warehouseID id.ID) error {
	w, err := s.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	w.IsActive = false
	w.Touch()
	return s.repo.Update(ctx, w)
}

// List returns warehouses matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Warehouse, error) {
	return s.repo.List(ctx, filter)
}
