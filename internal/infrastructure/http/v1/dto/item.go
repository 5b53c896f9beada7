package dto

import (
	"time"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/types"
)

// CreateItemRequest registers a new inventory item.
type CreateItemRequest struct {
	Plant               string  `json:"plant" binding:"required"`
	StorageLocation     string  `json:"storageLocation" binding:"required"`
	MaterialCode        string  `json:"materialCode" binding:"required"`
	PlantName           string  `json:"plantName,omitempty"`
	MaterialDescription string  `json:"materialDescription" binding:"required"`
	Description         string  `json:"description,omitempty"`
	CurrentStock        float64 `json:"currentStock" binding:"omitempty,gte=0"`
	MinimumStock        float64 `json:"minimumStock" binding:"omitempty,gte=0"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateItemRequest) ToEntity() *entity.InventoryItem {
	item := entity.NewInventoryItem(entity.ItemKey{
		Plant:           r.Plant,
		StorageLocation: r.StorageLocation,
		MaterialCode:    r.MaterialCode,
	}, r.MaterialDescription)
	item.PlantName = r.PlantName
	item.Description = r.Description
	item.CurrentStock = types.NewQuantityFromFloat64(r.CurrentStock)
	item.TotalStock = item.CurrentStock
	item.MinimumStock = types.NewQuantityFromFloat64(r.MinimumStock)
	return item
}

// UpdateItemRequest patches mutable item fields.
type UpdateItemRequest struct {
	PlantName           *string  `json:"plantName,omitempty"`
	MaterialDescription *string  `json:"materialDescription,omitempty"`
	Description         *string  `json:"description,omitempty"`
	MinimumStock        *float64 `json:"minimumStock,omitempty" binding:"omitempty,gte=0"`
}

// ApplyTo applies the patch to the entity.
func (r *UpdateItemRequest) ApplyTo(item *entity.InventoryItem) {
	if r.PlantName != nil {
		item.PlantName = *r.PlantName
	}
	if r.MaterialDescription != nil {
		item.MaterialDescription = *r.MaterialDescription
	}
	if r.Description != nil {
		item.Description = *r.Description
	}
	if r.MinimumStock != nil {
		item.MinimumStock = types.NewQuantityFromFloat64(*r.MinimumStock)
	}
}

// AdjustStockRequest applies a manual adjustment movement.
type AdjustStockRequest struct {
	Quantity float64 `json:"quantity" binding:"required"`
	Reason   string  `json:"reason,omitempty"`
}

// ItemResponse is the API shape of an inventory item.
type ItemResponse struct {
	ID                  string    `json:"id"`
	Plant               string    `json:"plant"`
	StorageLocation     string    `json:"storageLocation"`
	MaterialCode        string    `json:"materialCode"`
	PlantName           string    `json:"plantName,omitempty"`
	MaterialDescription string    `json:"materialDescription"`
	Description         string    `json:"description,omitempty"`
	CurrentStock        float64   `json:"currentStock"`
	TotalStock          float64   `json:"totalStock"`
	MinimumStock        float64   `json:"minimumStock"`
	Status              string    `json:"status"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ItemToResponse maps a domain item.
func ItemToResponse(item *entity.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:                  item.ID.String(),
		Plant:               item.Plant,
		StorageLocation:     item.StorageLocation,
		MaterialCode:        item.MaterialCode,
		PlantName:           item.PlantName,
		MaterialDescription: item.MaterialDescription,
		Description:         item.Description,
		CurrentStock:        item.CurrentStock.Float64(),
		TotalStock:          item.TotalStock.Float64(),
		MinimumStock:        item.MinimumStock.Float64(),
		Status:              string(item.StockStatus()),
		UpdatedAt:           item.UpdatedAt,
	}
}

// MovementResponse is one ledger entry.
type MovementResponse struct {
	LineID       string    `json:"lineId"`
	ItemID       string    `json:"itemId"`
	Quantity     float64   `json:"quantity"`
	Kind         string    `json:"kind"`
	RecorderID   string    `json:"recorderId"`
	RecorderType string    `json:"recorderType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MovementToResponse maps a domain movement.
func MovementToResponse(m entity.StockMovement) MovementResponse {
	return MovementResponse{
		LineID:       m.LineID.String(),
		ItemID:       m.ItemID.String(),
		Quantity:     m.Quantity.Float64(),
		Kind:         string(m.Kind),
		RecorderID:   m.RecorderID.String(),
		RecorderType: m.RecorderType,
		CreatedAt:    m.CreatedAt,
	}
}
