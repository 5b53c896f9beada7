package dto

import (
	"stockpilot/internal/domain/warehouse"
)

// CreateWarehouseRequest registers a new location.
type CreateWarehouseRequest struct {
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Plant           string `json:"plant" binding:"required"`
	StorageLocation string `json:"storageLocation" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=central regional distribution"`
	Address         string `json:"address,omitempty"`
}

// ToEntity converts the request to a domain warehouse.
func (r *CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	w := warehouse.New(r.Code, r.Name, r.Plant, r.StorageLocation, warehouse.Type(r.Type))
	w.Address = r.Address
	return w
}

// UpdateWarehouseRequest changes catalog fields. The code and the
// plant/storage-location pair are immutable once items reference them.
type UpdateWarehouseRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=central regional distribution"`
	Address string `json:"address,omitempty"`
}

// WarehouseResponse is the API shape of a warehouse.
type WarehouseResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Plant           string `json:"plant"`
	StorageLocation string `json:"storageLocation"`
	Type            string `json:"type"`
	Address         string `json:"address,omitempty"`
	IsActive        bool   `json:"isActive"`
}

// WarehouseToResponse maps a domain warehouse.
func WarehouseToResponse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:              w.ID.String(),
		Code:            w.Code,
		Name:            w.Name,
		Plant:           w.Plant,
		StorageLocation: w.StorageLocation,
		Type:            string(w.Type),
		Address:         w.Address,
		IsActive:        w.IsActive,
	}
}
