package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/transfer"
)

const (
	transfersTable       = "doc_transfers"
	transferLinesTable   = "doc_transfer_lines"
	transferHistoryTable = "doc_transfer_history"
)

var transferColumns = []string{
	"id", "version", "created_at", "updated_at", "created_by",
	"number", "source_warehouse_id", "destination_warehouse_id",
	"request_date", "scheduled_date", "completion_date",
	"status", "notes",
}

// TransferRepo implements transfer.Repository over Postgres.
type TransferRepo struct {
	txManager *TxManager
	inserter  *BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ transfer.Repository = (*TransferRepo)(nil)

func NewTransferRepo(txManager *TxManager) *TransferRepo {
	return &TransferRepo{
		txManager: txManager,
		inserter:  NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the header, lines and initial history in one batch
// round-trip. Must run inside a transaction.
func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	headerSQL, headerArgs, err := r.builder.Insert(transfersTable).
		Columns(transferColumns...).
		Values(
			t.ID, t.Version, t.CreatedAt, t.UpdatedAt, t.CreatedBy,
			t.Number, t.SourceWarehouseID, t.DestinationWarehouseID,
			t.RequestDate, t.ScheduledDate, t.CompletionDate,
			t.Status, t.Notes,
		).ToSql()
	if err != nil {
		return fmt.Errorf("build header insert: %w", err)
	}

	queries := []BatchQuery{{SQL: headerSQL, Args: headerArgs}}

	for _, line := range t.Lines {
		sql, args, err := r.builder.Insert(transferLinesTable).
			Columns("line_id", "transfer_id", "line_no", "item_id", "material_code", "quantity").
			Values(line.LineID, t.ID, line.LineNo, line.ItemID, line.MaterialCode, line.Quantity).
			ToSql()
		if err != nil {
			return fmt.Errorf("build line insert: %w", err)
		}
		queries = append(queries, BatchQuery{SQL: sql, Args: args})
	}

	for _, change := range t.History {
		queries = append(queries, r.historyInsert(t.ID, change))
	}

	if err := r.inserter.ExecuteBatch(ctx, queries); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("transfer", "number", t.Number)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) historyInsert(transferID id.ID, change entity.StatusChange) BatchQuery {
	sql, args, _ := r.builder.Insert(transferHistoryTable).
		Columns("entry_id", "transfer_id", "status", "timestamp", "note", "applied").
		Values(change.EntryID, transferID, change.Status, change.Timestamp, change.Note, change.Applied).
		ToSql()
	return BatchQuery{SQL: sql, Args: args}
}

func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.get(ctx, transferID, false)
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.get(ctx, transferID, true)
}

func (r *TransferRepo) get(ctx context.Context, transferID id.ID, forUpdate bool) (*transfer.Transfer, error) {
	q := r.builder.Select(transferColumns...).
		From(transfersTable).
		Where(squirrel.Eq{"id": transferID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t transfer.Transfer
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transfer", transferID)
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}

	if err := r.loadChildren(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepo) loadChildren(ctx context.Context, t *transfer.Transfer) error {
	querier := r.txManager.GetQuerier(ctx)

	linesSQL := `
		SELECT line_id, line_no, item_id, material_code, quantity
		FROM doc_transfer_lines
		WHERE transfer_id = $1
		ORDER BY line_no
	`
	if err := pgxscan.Select(ctx, querier, &t.Lines, linesSQL, t.ID); err != nil {
		return fmt.Errorf("select transfer lines: %w", err)
	}

	historySQL := `
		SELECT entry_id, status, timestamp, note, applied
		FROM doc_transfer_history
		WHERE transfer_id = $1
		ORDER BY timestamp, entry_id
	`
	if err := pgxscan.Select(ctx, querier, &t.History, historySQL, t.ID); err != nil {
		return fmt.Errorf("select transfer history: %w", err)
	}
	return nil
}

func (r *TransferRepo) Update(ctx context.Context, t *transfer.Transfer) error {
	q := r.builder.Update(transfersTable).
		Set("version", t.Version).
		Set("updated_at", t.UpdatedAt).
		Set("scheduled_date", t.ScheduledDate).
		Set("completion_date", t.CompletionDate).
		Set("status", t.Status).
		Set("notes", t.Notes).
		Where(squirrel.Eq{"id": t.ID}).
		Where(squirrel.Eq{"version": t.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("transfer", t.ID)
	}
	return nil
}

// Delete removes the header with lines and history via ON DELETE CASCADE.
func (r *TransferRepo) Delete(ctx context.Context, transferID id.ID) error {
	sql, args, err := r.builder.Delete(transfersTable).
		Where(squirrel.Eq{"id": transferID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("transfer", transferID)
	}
	return nil
}

func (r *TransferRepo) AppendHistory(ctx context.Context, transferID id.ID, change entity.StatusChange) error {
	q := r.historyInsert(transferID, change)
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, q.SQL, q.Args...); err != nil {
		return fmt.Errorf("insert transfer history: %w", err)
	}
	return nil
}

func (r *TransferRepo) List(ctx context.Context, filter transfer.Filter) ([]*transfer.Transfer, error) {
	q := r.builder.Select(transferColumns...).From(transfersTable)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"source_warehouse_id": *filter.WarehouseID},
			squirrel.Eq{"destination_warehouse_id": *filter.WarehouseID},
		})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"request_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"request_date": *filter.ToDate})
	}

	q = q.OrderBy("number DESC")
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

	var transfers []*transfer.Transfer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &transfers, sql, args...); err != nil {
		return nil, fmt.Errorf("select transfers: %w", err)
	}

	for _, t := range transfers {
		if err := r.loadChildren(ctx, t); err != nil {
			return nil, err
		}
	}
	return transfers, nil
}
