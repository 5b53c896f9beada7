package entity

import (
	"time"

	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
)

// MovementKind classifies a stock movement.
type MovementKind string

const (
	MovementReceipt     MovementKind = "receipt"
	MovementReservation MovementKind = "reservation"
	MovementTransferOut MovementKind = "transfer-out"
	MovementTransferIn  MovementKind = "transfer-in"
	MovementAdjustment  MovementKind = "adjustment"
)

// KnownMovementKind reports whether k is one of the defined kinds.
func KnownMovementKind(k MovementKind) bool {
	switch k {
	case MovementReceipt, MovementReservation, MovementTransferOut,
		MovementTransferIn, MovementAdjustment:
		return true
	}
	return false
}

// Correlation links a movement to the record that caused it.
type Correlation struct {
	// RecorderID is the transfer/order/receipt that created this movement.
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the record type (e.g. "Transfer", "GoodsReceipt").
	RecorderType string `db:"recorder_type" json:"recorderType"`
}

// StockMovement is one ledger entry: a signed quantity delta against an
// item. Movements are immutable - they are never updated or deleted.
// The item's cached current stock is the fold of all its movements.
type StockMovement struct {
	// LineID is the unique identifier for this movement line (UUIDv7).
	LineID id.ID `db:"line_id" json:"lineId"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity is the signed delta. Positive for receipt/transfer-in,
	// negative for reservation/transfer-out; adjustment may be either.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	Kind MovementKind `db:"kind" json:"kind"`

	Correlation

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a movement with generated LineID.
func NewStockMovement(itemID id.ID, delta types.Quantity, kind MovementKind, corr Correlation) StockMovement {
	return StockMovement{
		LineID:      id.New(),
		ItemID:      itemID,
		Quantity:    delta,
		Kind:        kind,
		Correlation: corr,
		CreatedAt:   time.Now().UTC(),
	}
}
