// Package receiving records inbound goods receipts. A posted receipt is
// the only way stock enters the system besides opening balances and
// manual adjustments.
package receiving

import (
	"context"
	"strings"
	"time"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
)

// Receipt is one inbound delivery against a single item.
type Receipt struct {
	entity.BaseRecord

	// Number is the auto-generated receipt number (GR-...). Receipts are
	// accounting documents, so numbers are gapless.
	Number string `db:"number" json:"number"`

	ItemID     id.ID  `db:"item_id" json:"itemId"`
	VendorName string `db:"vendor_name" json:"vendorName"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	ReceivedDate time.Time `db:"received_date" json:"receivedDate"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// New creates a receipt dated now.
func New(itemID id.ID, vendorName string, quantity types.Quantity) *Receipt {
	return &Receipt{
		BaseRecord:   entity.NewBaseRecord(),
		ItemID:       itemID,
		VendorName:   strings.TrimSpace(vendorName),
		Quantity:     quantity,
		ReceivedDate: time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (r *Receipt) Validate(ctx context.Context) error {
	if id.IsNil(r.ItemID) {
		return apperror.NewValidation("item is required")
	}
	if strings.TrimSpace(r.VendorName) == "" {
		return apperror.NewValidation("vendor name is required")
	}
	if !r.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive")
	}
	return nil
}
