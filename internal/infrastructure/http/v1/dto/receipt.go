package dto

import (
	"time"

	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/receiving"
)

// CreateReceiptRequest posts a goods receipt.
type CreateReceiptRequest struct {
	ItemID     string  `json:"itemId" binding:"required"`
	VendorName string  `json:"vendorName" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Notes      string  `json:"notes,omitempty"`
}

// ToEntity converts the request to a domain receipt.
func (r *CreateReceiptRequest) ToEntity() *receiving.Receipt {
	itemID, _ := id.Parse(r.ItemID)
	receipt := receiving.New(itemID, r.VendorName, types.NewQuantityFromFloat64(r.Quantity))
	receipt.Notes = r.Notes
	return receipt
}

// ReceiptResponse is the API shape of a receipt.
type ReceiptResponse struct {
	ID           string    `json:"id"`
	Number       string    `json:"number"`
	ItemID       string    `json:"itemId"`
	VendorName   string    `json:"vendorName"`
	Quantity     float64   `json:"quantity"`
	ReceivedDate time.Time `json:"receivedDate"`
	Notes        string    `json:"notes,omitempty"`
}

// ReceiptToResponse maps a domain receipt.
func ReceiptToResponse(r *receiving.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:           r.ID.String(),
		Number:       r.Number,
		ItemID:       r.ItemID.String(),
		VendorName:   r.VendorName,
		Quantity:     r.Quantity.Float64(),
		ReceivedDate: r.ReceivedDate,
		Notes:        r.Notes,
	}
}
