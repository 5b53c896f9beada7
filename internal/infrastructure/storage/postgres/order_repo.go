package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/order"
)

const (
	ordersTable       = "doc_orders"
	orderLinesTable   = "doc_order_lines"
	orderHistoryTable = "doc_order_history"
)

var orderColumns = []string{
	"id", "version", "created_at", "updated_at", "created_by",
	"number", "po_number", "customer_name", "delivery_address",
	"order_date", "status", "total",
}

// OrderRepo implements order.Repository over Postgres.
type OrderRepo struct {
	txManager *TxManager
	inserter  *BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ order.Repository = (*OrderRepo)(nil)

func NewOrderRepo(txManager *TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		inserter:  NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the header, lines and initial history in one batch
// round-trip. Must run inside a transaction.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	headerSQL, headerArgs, err := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(
			o.ID, o.Version, o.CreatedAt, o.UpdatedAt, o.CreatedBy,
			o.Number, o.PONumber, o.CustomerName, o.DeliveryAddress,
			o.OrderDate, o.Status, o.Total,
		).ToSql()
	if err != nil {
		return fmt.Errorf("build header insert: %w", err)
	}

	queries := []BatchQuery{{SQL: headerSQL, Args: headerArgs}}
	queries = append(queries, r.lineInserts(o)...)
	for _, change := range o.History {
		queries = append(queries, r.historyInsert(o.ID, change))
	}

	if err := r.inserter.ExecuteBatch(ctx, queries); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("order", "number", o.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) lineInserts(o *order.Order) []BatchQuery {
	queries := make([]BatchQuery, 0, len(o.Lines))
	for _, line := range o.Lines {
		sql, args, _ := r.builder.Insert(orderLinesTable).
			Columns("line_id", "order_id", "line_no", "description", "quantity", "unit_price", "line_total").
			Values(line.LineID, o.ID, line.LineNo, line.Description, line.Quantity, line.UnitPrice, line.LineTotal).
			ToSql()
		queries = append(queries, BatchQuery{SQL: sql, Args: args})
	}
	return queries
}

func (r *OrderRepo) historyInsert(orderID id.ID, change entity.StatusChange) BatchQuery {
	sql, args, _ := r.builder.Insert(orderHistoryTable).
		Columns("entry_id", "order_id", "status", "timestamp", "note", "applied").
		Values(change.EntryID, orderID, change.Status, change.Timestamp, change.Note, change.Applied).
		ToSql()
	return BatchQuery{SQL: sql, Args: args}
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o order.Order
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := r.loadChildren(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) loadChildren(ctx context.Context, o *order.Order) error {
	querier := r.txManager.GetQuerier(ctx)

	linesSQL := `
		SELECT line_id, line_no, description, quantity, unit_price, line_total
		FROM doc_order_lines
		WHERE order_id = $1
		ORDER BY line_no
	`
	if err := pgxscan.Select(ctx, querier, &o.Lines, linesSQL, o.ID); err != nil {
		return fmt.Errorf("select order lines: %w", err)
	}

	historySQL := `
		SELECT entry_id, status, timestamp, note, applied
		FROM doc_order_history
		WHERE order_id = $1
		ORDER BY timestamp, entry_id
	`
	if err := pgxscan.Select(ctx, querier, &o.History, historySQL, o.ID); err != nil {
		return fmt.Errorf("select order history: %w", err)
	}
	return nil
}

// Update rewrites the header and replaces lines. Must run inside a
// transaction.
func (r *OrderRepo) Update(ctx context.Context, o *order.Order) error {
	headerSQL, headerArgs, err := r.builder.Update(ordersTable).
		Set("version", o.Version).
		Set("updated_at", o.UpdatedAt).
		Set("po_number", o.PONumber).
		Set("customer_name", o.CustomerName).
		Set("delivery_address", o.DeliveryAddress).
		Set("status", o.Status).
		Set("total", o.Total).
		Where(squirrel.Eq{"id": o.ID}).
		Where(squirrel.Eq{"version": o.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, headerSQL, headerArgs...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("order", o.ID)
	}

	deleteSQL, deleteArgs, err := r.builder.Delete(orderLinesTable).
		Where(squirrel.Eq{"order_id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build line delete: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}

	if len(o.Lines) > 0 {
		if err := r.inserter.ExecuteBatch(ctx, r.lineInserts(o)); err != nil {
			return fmt.Errorf("insert order lines: %w", err)
		}
	}
	return nil
}

// Delete removes the header with lines and history via ON DELETE CASCADE.
func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	sql, args, err := r.builder.Delete(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID)
	}
	return nil
}

func (r *OrderRepo) AppendHistory(ctx context.Context, orderID id.ID, change entity.StatusChange) error {
	q := r.historyInsert(orderID, change)
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, q.SQL, q.Args...); err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	q := r.builder.Select(orderColumns...).From(ordersTable)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"po_number": pattern},
			squirrel.ILike{"customer_name": pattern},
		})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"order_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"order_date": *filter.ToDate})
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

	var orders []*order.Order
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	for _, o := range orders {
		if err := r.loadChildren(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}
