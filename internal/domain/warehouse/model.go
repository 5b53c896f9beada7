// Package warehouse is the catalog of physical stock locations. Every
// location carries the plant and storage location codes used to address
// inventory items held there.
package warehouse

import (
	"context"
	"strings"

	"stockpilot/internal/core/apperror"
	"stockpilot/internal/core/entity"
)

// Type classifies a location.
type Type string

const (
	TypeCentral      Type = "central"
	TypeRegional     Type = "regional"
	TypeDistribution Type = "distribution"
)

// Warehouse is a stock location catalog record.
type Warehouse struct {
	entity.BaseRecord

	// Code is the short unique human-readable identifier.
	Code string `db:"code" json:"code"`

	Name string `db:"name" json:"name"`

	// Plant and StorageLocation address the inventory items stored here.
	Plant           string `db:"plant" json:"plant"`
	StorageLocation string `db:"storage_location" json:"storageLocation"`

	Type     Type   `db:"type" json:"type"`
	Address  string `db:"address" json:"address,omitempty"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

// New creates an active warehouse record.
func New(code, name, plant, storageLocation string, wType Type) *Warehouse {
	return &Warehouse{
		BaseRecord:      entity.NewBaseRecord(),
		Code:            strings.ToUpper(strings.TrimSpace(code)),
		Name:            name,
		Plant:           plant,
		StorageLocation: storageLocation,
		Type:            wType,
		IsActive:        true,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	if strings.TrimSpace(w.Code) == "" {
		return apperror.NewValidation("warehouse code is required")
	}
	if strings.TrimSpace(w.Name) == "" {
		return apperror.NewValidation("warehouse name is required")
	}
	if strings.TrimSpace(w.Plant) == "" || strings.TrimSpace(w.StorageLocation) == "" {
		return apperror.NewValidation("plant and storage location are required")
	}
	switch w.Type {
	case TypeCentral, TypeRegional, TypeDistribution:
	default:
		return apperror.NewValidation("unknown warehouse type: " + string(w.Type))
	}
	return nil
}
