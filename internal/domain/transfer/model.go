// Package transfer provides the stock transfer workflow: a finite state
// machine over cross-location transfer records with an append-only
// status history.
package transfer

import (
	"context"
	"time"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
)

// Status is the lifecycle state of a transfer.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusInTransit Status = "in-transit"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPending, StatusInTransit, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", apperror.NewUnknownStatus("transfer", s)
}

// allowedNext is the legal transition table. completed and cancelled are
// terminal.
var allowedNext = map[Status][]Status{
	StatusDraft:     {StatusPending, StatusCancelled},
	StatusPending:   {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// AllowedNext returns the statuses reachable from s.
func AllowedNext(s Status) []Status {
	return allowedNext[s]
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, next := range allowedNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(s Status) bool {
	return len(allowedNext[s]) == 0
}

// Line is one item/quantity pair on a transfer. Lines are owned by the
// transfer and cannot outlive it.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// ItemID references the inventory item at the source location.
	ItemID id.ID `db:"item_id" json:"itemId"`

	// MaterialCode is denormalized from the item for destination
	// resolution and display.
	MaterialCode string `db:"material_code" json:"materialCode"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// Transfer is a cross-location stock movement order.
type Transfer struct {
	entity.BaseRecord

	// Number is the auto-generated transfer number (TRF-...).
	Number string `db:"number" json:"number"`

	SourceWarehouseID      id.ID `db:"source_warehouse_id" json:"sourceWarehouseId"`
	DestinationWarehouseID id.ID `db:"destination_warehouse_id" json:"destinationWarehouseId"`

	RequestDate   time.Time `db:"request_date" json:"requestDate"`
	ScheduledDate time.Time `db:"scheduled_date" json:"scheduledDate"`

	// CompletionDate is set on first entry to completed only.
	CompletionDate *time.Time `db:"completion_date" json:"completionDate,omitempty"`

	Status Status `db:"status" json:"status"`

	Notes string `db:"notes" json:"notes,omitempty"`

	Lines []Line `db:"-" json:"lines"`

	// History is the append-only status audit trail including the initial
	// draft record and rejected transition attempts.
	History []entity.StatusChange `db:"-" json:"statusHistory"`
}

// New creates a transfer in draft with the creation history record.
func New(source, destination id.ID, scheduledDate time.Time) *Transfer {
	t := &Transfer{
		BaseRecord:             entity.NewBaseRecord(),
		SourceWarehouseID:      source,
		DestinationWarehouseID: destination,
		RequestDate:            time.Now().UTC(),
		ScheduledDate:          scheduledDate,
		Status:                 StatusDraft,
		Lines:                  make([]Line, 0),
	}
	t.History = []entity.StatusChange{entity.NewStatusChange(string(StatusDraft), "created")}
	return t
}

// AddLine appends an item/quantity pair.
func (t *Transfer) AddLine(itemID id.ID, materialCode string, quantity types.Quantity) {
	t.Lines = append(t.Lines, Line{
		LineID:       id.New(),
		LineNo:       len(t.Lines) + 1,
		ItemID:       itemID,
		MaterialCode: materialCode,
		Quantity:     quantity,
	})
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(ctx context.Context) error {
	if id.IsNil(t.SourceWarehouseID) || id.IsNil(t.DestinationWarehouseID) {
		return apperror.NewValidation("source and destination warehouses are required")
	}

	if t.SourceWarehouseID == t.DestinationWarehouseID {
		return apperror.NewInvalidRoute(t.SourceWarehouseID.String(), t.DestinationWarehouseID.String())
	}

	if len(t.Lines) == 0 {
		return apperror.NewEmptyTransfer()
	}

	for i, line := range t.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
