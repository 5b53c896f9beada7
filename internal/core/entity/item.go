package entity

import (
	"context"
	"fmt"
	"strings"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/types"
)

// ItemKey identifies an inventory item by plant, storage location and
// material code. The three parts together form the unique business key.
type ItemKey struct {
	Plant           string `db:"plant" json:"plant"`
	StorageLocation string `db:"storage_location" json:"storageLocation"`
	MaterialCode    string `db:"material_code" json:"materialCode"`
}

// String renders the key as "plant/sloc/material". Used for lock ordering
// and log output.
func (k ItemKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Plant, k.StorageLocation, k.MaterialCode)
}

// IsZero reports whether any key part is missing.
func (k ItemKey) IsZero() bool {
	return k.Plant == "" || k.StorageLocation == "" || k.MaterialCode == ""
}

// Validate checks key parts are present and free of the separator.
func (k ItemKey) Validate() error {
	if k.IsZero() {
		return apperror.NewValidation("plant, storage location and material code are required").
			WithDetail("key", k.String())
	}
	for _, part := range []string{k.Plant, k.StorageLocation, k.MaterialCode} {
		if strings.Contains(part, "/") {
			return apperror.NewValidation("item key parts must not contain '/'").
				WithDetail("key", k.String())
		}
	}
	return nil
}

// StockStatus is the two-tier stock health badge derived from current vs
// minimum stock.
type StockStatus string

const (
	StockStatusGood     StockStatus = "good"
	StockStatusLow      StockStatus = "low"
	StockStatusCritical StockStatus = "critical"
)

// InventoryItem is a stocked material at one plant/storage location.
// CurrentStock is mutated exclusively through ledger delta operations;
// it is the cached fold of all movements for the item.
type InventoryItem struct {
	BaseRecord

	ItemKey

	PlantName           string `db:"plant_name" json:"plantName,omitempty"`
	MaterialDescription string `db:"material_description" json:"materialDescription"`
	Description         string `db:"description" json:"description,omitempty"`

	// TotalStock is the advisory capacity. Not enforced: current stock may
	// transiently exceed it.
	TotalStock types.Quantity `db:"total_stock" json:"totalStock"`

	// CurrentStock is the on-hand quantity. Never negative.
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`

	// MinimumStock is the reorder threshold.
	MinimumStock types.Quantity `db:"minimum_stock" json:"minimumStock"`
}

// NewInventoryItem creates an item with zero stock.
func NewInventoryItem(key ItemKey, materialDescription string) *InventoryItem {
	return &InventoryItem{
		BaseRecord:          NewBaseRecord(),
		ItemKey:             key,
		MaterialDescription: materialDescription,
	}
}

// Validate implements Validatable.
func (i *InventoryItem) Validate(ctx context.Context) error {
	if err := i.ItemKey.Validate(); err != nil {
		return err
	}
	if i.CurrentStock.IsNegative() {
		return apperror.NewValidation("current stock must not be negative").
			WithDetail("currentStock", i.CurrentStock)
	}
	if i.MinimumStock.IsNegative() {
		return apperror.NewValidation("minimum stock must not be negative").
			WithDetail("minimumStock", i.MinimumStock)
	}
	return nil
}

// StockStatus classifies on-hand stock against the minimum threshold:
// critical when current <= minimum, low when current <= 2x minimum,
// good otherwise.
func (i *InventoryItem) StockStatus() StockStatus {
	switch {
	case i.CurrentStock <= i.MinimumStock:
		return StockStatusCritical
	case i.CurrentStock <= 2*i.MinimumStock:
		return StockStatusLow
	default:
		return StockStatusGood
	}
}
