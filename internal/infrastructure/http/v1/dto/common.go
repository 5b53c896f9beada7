// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// PaginationRequest contains pagination parameters.
type PaginationRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

// Defaults fills in missing pagination values.
func (p *PaginationRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 50
	}
}

// Offset calculates the list offset.
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// StatusChangeResponse is one history record on a workflow document.
type StatusChangeResponse struct {
	EntryID   string `json:"entryId"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note,omitempty"`
	Applied   bool   `json:"applied"`
}

// TransitionRequest moves a workflow document to a new status.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note,omitempty"`
}
