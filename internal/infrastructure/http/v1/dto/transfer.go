package dto

import (
	"time"

	"stockpilot/internal/core/entity"
	"stockpilot/internal/core/id"
	"stockpilot/internal/core/types"
	"stockpilot/internal/domain/transfer"
)

// CreateTransferRequest creates a draft transfer.
type CreateTransferRequest struct {
	SourceWarehouseID      string                `json:"sourceWarehouseId" binding:"required"`
	DestinationWarehouseID string                `json:"destinationWarehouseId" binding:"required"`
	ScheduledDate          time.Time             `json:"scheduledDate" binding:"required"`
	Notes                  string                `json:"notes,omitempty"`
	Lines                  []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// TransferLineRequest is one item/quantity pair in a create request.
type TransferLineRequest struct {
	ItemID   string  `json:"itemId" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// ToEntity converts the request to a domain transfer.
func (r *CreateTransferRequest) ToEntity() *transfer.Transfer {
	source, _ := id.Parse(r.SourceWarehouseID)
	destination, _ := id.Parse(r.DestinationWarehouseID)

	t := transfer.New(source, destination, r.ScheduledDate)
	t.Notes = r.Notes
	for _, line := range r.Lines {
		itemID, _ := id.Parse(line.ItemID)
		t.AddLine(itemID, "", types.NewQuantityFromFloat64(line.Quantity))
	}
	return t
}

// TransferLineResponse is one line of a transfer.
type TransferLineResponse struct {
	LineID       string  `json:"lineId"`
	LineNo       int     `json:"lineNo"`
	ItemID       string  `json:"itemId"`
	MaterialCode string  `json:"materialCode"`
	Quantity     float64 `json:"quantity"`
}

// TransferResponse is the API shape of a transfer.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	Number                 string                 `json:"number"`
	SourceWarehouseID      string                 `json:"sourceWarehouseId"`
	DestinationWarehouseID string                 `json:"destinationWarehouseId"`
	RequestDate            time.Time              `json:"requestDate"`
	ScheduledDate          time.Time              `json:"scheduledDate"`
	CompletionDate         *time.Time             `json:"completionDate,omitempty"`
	Status                 string                 `json:"status"`
	AllowedNext            []string               `json:"allowedNext"`
	Notes                  string                 `json:"notes,omitempty"`
	Lines                  []TransferLineResponse `json:"lines"`
	History                []StatusChangeResponse `json:"statusHistory"`
}

// TransferToResponse maps a domain transfer.
func TransferToResponse(t *transfer.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:                     t.ID.String(),
		Number:                 t.Number,
		SourceWarehouseID:      t.SourceWarehouseID.String(),
		DestinationWarehouseID: t.DestinationWarehouseID.String(),
		RequestDate:            t.RequestDate,
		ScheduledDate:          t.ScheduledDate,
		CompletionDate:         t.CompletionDate,
		Status:                 string(t.Status),
		Notes:                  t.Notes,
		Lines:                  make([]TransferLineResponse, 0, len(t.Lines)),
		History:                HistoryToResponse(t.History),
	}
	for _, next := range transfer.AllowedNext(t.Status) {
		resp.AllowedNext = append(resp.AllowedNext, string(next))
	}
	for _, line := range t.Lines {
		resp.Lines = append(resp.Lines, TransferLineResponse{
			LineID:       line.LineID.String(),
			LineNo:       line.LineNo,
			ItemID:       line.ItemID.String(),
			MaterialCode: line.MaterialCode,
			Quantity:     line.Quantity.Float64(),
		})
	}
	return resp
}

// HistoryToResponse maps a status history trail.
func HistoryToResponse(history []entity.StatusChange) []StatusChangeResponse {
	result := make([]StatusChangeResponse, 0, len(history))
	for _, change := range history {
		result = append(result, StatusChangeResponse{
			EntryID:   change.EntryID.String(),
			Status:    change.Status,
			Timestamp: change.Timestamp.Format(time.RFC3339Nano),
			Note:      change.Note,
			Applied:   change.Applied,
		})
	}
	return result
}
