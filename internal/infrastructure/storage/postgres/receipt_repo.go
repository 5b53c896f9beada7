package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/receiving"
)

const receiptsTable = "doc_receipts"

var receiptColumns = []string{
	"id", "version", "created_at", "updated_at", "created_by",
	"number", "item_id", "vendor_name", "quantity", "received_date", "notes",
}

// ReceiptRepo implements receiving.Repository over Postgres.
type ReceiptRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

var _ receiving.Repository = (*ReceiptRepo)(nil)

func NewReceiptRepo(txManager *TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReceiptRepo) Create(ctx context.Context, receipt *receiving.Receipt) error {
	q := r.builder.Insert(receiptsTable).
		Columns(receiptColumns...).
		Values(
			receipt.ID, receipt.Version, receipt.CreatedAt, receipt.UpdatedAt, receipt.CreatedBy,
			receipt.Number, receipt.ItemID, receipt.VendorName,
			receipt.Quantity, receipt.ReceivedDate, receipt.Notes,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("receipt", "number", receipt.Number)
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (*receiving.Receipt, error) {
	q := r.builder.Select(receiptColumns...).
		From(receiptsTable).
		Where(squirrel.Eq{"id": receiptID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var receipt receiving.Receipt
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &receipt, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("receipt", receiptID)
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return &receipt, nil
}

func (r *ReceiptRepo) List(ctx context.Context, filter receiving.Filter) ([]*receiving.Receipt, error) {
	q := r.builder.Select(receiptColumns...).From(receiptsTable)

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"received_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"received_date": *filter.ToDate})
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

	var receipts []*receiving.Receipt
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &receipts, sql, args...); err != nil {
		return nil, fmt.Errorf("select receipts: %w", err)
	}
	return receipts, nil
}
