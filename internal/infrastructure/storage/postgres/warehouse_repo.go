package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/warehouse"
)

const warehousesTable = "cat_warehouses"

var warehouseColumns = []string{
	"id", "version", "created_at", "updated_at", "created_by",
	"code", "name", "plant", "storage_location", "type", "address", "is_active",
}

// WarehouseRepo implements warehouse.Repository over Postgres.
type WarehouseRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

func NewWarehouseRepo(txManager *TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder.Insert(warehousesTable).
		Columns(warehouseColumns...).
		Values(
			w.ID, w.Version, w.CreatedAt, w.UpdatedAt, w.CreatedBy,
			w.Code, w.Name, w.Plant, w.StorageLocation, w.Type, w.Address, w.IsActive,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("warehouse", "code", w.Code)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).
		From(warehousesTable).
		Where(squirrel.Eq{"id": warehouseID})

	return r.get(ctx, q, warehouseID.String())
}

func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).
		From(warehousesTable).
		Where("UPPER(code) = UPPER(?)", code)

	return r.get(ctx, q, code)
}

func (r *WarehouseRepo) get(ctx context.Context, q squirrel.SelectBuilder, ref string) (*warehouse.Warehouse, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w warehouse.Warehouse
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", ref)
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

func (r *WarehouseRepo) Update(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder.Update(warehousesTable).
		Set("version", w.Version).
		Set("updated_at", w.UpdatedAt).
		Set("name", w.Name).
		Set("plant", w.Plant).
		Set("storage_location", w.StorageLocation).
		Set("type", w.Type).
		Set("address", w.Address).
		Set("is_active", w.IsActive).
		Where(squirrel.Eq{"id": w.ID}).
		Where(squirrel.Eq{"version": w.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("warehouse", w.ID)
	}
	return nil
}

func (r *WarehouseRepo) List(ctx context.Context, filter warehouse.Filter) ([]*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).From(warehousesTable)

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	q = q.OrderBy("code")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var warehouses []*warehouse.Warehouse
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &warehouses, sql, args...); err != nil {
		return nil, fmt.Errorf("select warehouses: %w", err)
	}
	return warehouses, nil
}
