package entity

import (
	"time"

	"stockpilot/internal/core/id"
)

// StatusChange is one append-only history record on a workflow record.
// A record is appended for every transition call, including rejected ones;
// Applied distinguishes the two so the audit trail stays complete while
// the record's stored status only ever advances on success.
type StatusChange struct {
	// EntryID is the unique identifier for this history entry (UUIDv7).
	EntryID id.ID `db:"entry_id" json:"entryId"`

	// Status is the status the caller moved (or attempted to move) to.
	Status string `db:"status" json:"status"`

	Timestamp time.Time `db:"timestamp" json:"timestamp"`

	Note string `db:"note" json:"note,omitempty"`

	// Applied is false for transition calls that were rejected
	// (illegal transition, insufficient stock).
	Applied bool `db:"applied" json:"applied"`
}

// NewStatusChange creates an applied history record.
func NewStatusChange(status, note string) StatusChange {
	return StatusChange{
		EntryID:   id.New(),
		Status:    status,
		Timestamp: time.Now().UTC(),
		Note:      note,
		Applied:   true,
	}
}

// NewRejectedStatusChange records a transition attempt that was refused.
func NewRejectedStatusChange(status, note string) StatusChange {
	c := NewStatusChange(status, note)
	c.Applied = false
	return c
}
