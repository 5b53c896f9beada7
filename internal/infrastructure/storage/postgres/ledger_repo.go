package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/ledger"
)

const (
	itemsTable     = "inv_items"
	movementsTable = "inv_movements"
)

var itemColumns = []string{
	"id", "version", "created_at", "updated_at", "created_by",
	"plant", "storage_location", "material_code",
	"plant_name", "material_description", "description",
	"total_stock", "current_stock", "minimum_stock",
}

var movementColumns = []string{
	"line_id", "item_id", "quantity", "kind",
	"recorder_id", "recorder_type", "created_at",
}

// LedgerRepo implements ledger.Repository over Postgres.
type LedgerRepo struct {
	txManager *TxManager
	inserter  *BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ ledger.Repository = (*LedgerRepo)(nil)

func NewLedgerRepo(txManager *TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		inserter:  NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *LedgerRepo) CreateItem(ctx context.Context, item *entity.InventoryItem) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			item.ID, item.Version, item.CreatedAt, item.UpdatedAt, item.CreatedBy,
			item.Plant, item.StorageLocation, item.MaterialCode,
			item.PlantName, item.MaterialDescription, item.Description,
			item.TotalStock, item.CurrentStock, item.MinimumStock,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("item", "key", item.ItemKey.String())
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *LedgerRepo) GetItem(ctx context.Context, itemID id.ID) (*entity.InventoryItem, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID})

	return r.getItem(ctx, q, itemID.String())
}

func (r *LedgerRepo) GetItemByKey(ctx context.Context, key entity.ItemKey) (*entity.InventoryItem, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{
			"plant":            key.Plant,
			"storage_location": key.StorageLocation,
			"material_code":    key.MaterialCode,
		})

	return r.getItem(ctx, q, key.String())
}

func (r *LedgerRepo) getItem(ctx context.Context, q squirrel.SelectBuilder, ref string) (*entity.InventoryItem, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item entity.InventoryItem
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", ref)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// GetItemForUpdate takes a row lock; the caller must hold a transaction.
func (r *LedgerRepo) GetItemForUpdate(ctx context.Context, itemID id.ID) (*entity.InventoryItem, error) {
	sql := `
		SELECT id, version, created_at, updated_at, created_by,
		       plant, storage_location, material_code,
		       plant_name, material_description, description,
		       total_stock, current_stock, minimum_stock
		FROM inv_items
		WHERE id = $1
		FOR UPDATE
	`

	var item entity.InventoryItem
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &item, sql, itemID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", itemID)
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return &item, nil
}

func (r *LedgerRepo) UpdateItem(ctx context.Context, item *entity.InventoryItem) error {
	q := r.builder.Update(itemsTable).
		Set("version", item.Version).
		Set("updated_at", item.UpdatedAt).
		Set("plant_name", item.PlantName).
		Set("material_description", item.MaterialDescription).
		Set("description", item.Description).
		Set("total_stock", item.TotalStock).
		Set("current_stock", item.CurrentStock).
		Set("minimum_stock", item.MinimumStock).
		Where(squirrel.Eq{"id": item.ID}).
		Where(squirrel.Eq{"version": item.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("item", item.ID)
	}
	return nil
}

func (r *LedgerRepo) UpdateItemStock(ctx context.Context, itemID id.ID, stock types.Quantity) error {
	q := r.builder.Update(itemsTable).
		Set("current_stock", stock).
		Set("total_stock", stock).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID)
	}
	return nil
}

func (r *LedgerRepo) ListItems(ctx context.Context, filter ledger.ItemFilter) ([]entity.InventoryItem, error) {
	q := r.builder.Select(itemColumns...).From(itemsTable)

	if filter.Plant != "" {
		q = q.Where(squirrel.Eq{"plant": filter.Plant})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"material_code": pattern},
			squirrel.ILike{"material_description": pattern},
			squirrel.ILike{"description": pattern},
			squirrel.ILike{"plant_name": pattern},
		})
	}
	if filter.Status != nil {
		// The status badge is derived from current vs minimum stock.
		switch *filter.Status {
		case entity.StockStatusCritical:
			q = q.Where("current_stock <= minimum_stock")
		case entity.StockStatusLow:
			q = q.Where("current_stock > minimum_stock").
				Where("current_stock <= minimum_stock * 2")
		case entity.StockStatusGood:
			q = q.Where("current_stock > minimum_stock * 2")
		}
	}

	q = q.OrderBy("plant", "storage_location", "material_code")
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

	var items []entity.InventoryItem
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

func (r *LedgerRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// COPY when inside a transaction (the normal path for deltas).
	if r.txManager.GetTx(ctx) != nil {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.ItemID, m.Quantity, m.Kind,
				m.RecorderID, m.RecorderType, m.CreatedAt,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, movementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(movementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.ItemID, m.Quantity, m.Kind,
			m.RecorderID, m.RecorderType, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func (r *LedgerRepo) MovementsByItem(ctx context.Context, itemID id.ID, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"item_id": itemID})

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")
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

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

func (r *LedgerRepo) MovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

func (r *LedgerRepo) OutflowSince(ctx context.Context, itemID id.ID, since time.Time) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(-quantity), 0)
		FROM inv_movements
		WHERE item_id = $1 AND created_at >= $2 AND quantity < 0
	`

	var outflow int64
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, itemID, since)
	if err := row.Scan(&outflow); err != nil {
		return 0, fmt.Errorf("sum outflow: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(outflow), nil
}

func (r *LedgerRepo) Turnover(ctx context.Context, itemID id.ID, from, to time.Time) (ledger.Turnover, error) {
	sql := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE quantity > 0), 0) AS inflow,
			COALESCE(SUM(-quantity) FILTER (WHERE quantity < 0), 0) AS outflow
		FROM inv_movements
		WHERE item_id = $1 AND created_at >= $2 AND created_at < $3
	`

	var inflow, outflow int64
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, itemID, from, to)
	if err := row.Scan(&inflow, &outflow); err != nil {
		return ledger.Turnover{}, fmt.Errorf("sum turnover: %w", err)
	}

	t := ledger.Turnover{
		ItemID:  itemID,
		Inflow:  types.NewQuantityFromInt64Scaled(inflow),
		Outflow: types.NewQuantityFromInt64Scaled(outflow),
	}
	t.Net = t.Inflow - t.Outflow
	return t, nil
}

// isUniqueViolation reports a Postgres 23505 error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
