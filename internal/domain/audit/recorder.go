// Package audit defines the append-only change trail recorded for
// workflow documents. Recording is best-effort: a failed audit write is
// logged and never fails the business operation.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"stockpilot/internal/core/id"
)

// Action describes what happened to the entity.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionTransition Action = "transition"
	ActionDelete     Action = "delete"
	ActionReceive    Action = "receive"
	ActionAdjust     Action = "adjust"
)

// Entry is one recorded change.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	Actor      string          `db:"actor" json:"actor,omitempty"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// NewEntry builds an entry with the payload marshalled to JSON. A nil
// payload yields a nil Changes field.
func NewEntry(entityType string, entityID id.ID, action Action, payload any) Entry {
	e := Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		CreatedAt:  time.Now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			e.Changes = raw
		}
	}
	return e
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	ListByEntity(ctx context.Context, entityType string, entityID id.ID) ([]Entry, error)
}

// Nop discards all entries.
type Nop struct{}

func (Nop) Record(ctx context.Context, entry Entry) error { return nil }

func (Nop) ListByEntity(ctx context.Context, entityType string, entityID id.ID) ([]Entry, error) {
	return nil, nil
}
