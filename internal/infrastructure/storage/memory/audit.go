package memory

import (
	"context"

	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/audit"
)

// AuditRecorder implements audit.Recorder over the store.
type AuditRecorder struct {
	store *Store
}

func NewAuditRecorder(store *Store) *AuditRecorder {
	return &AuditRecorder{store: store}
}

var _ audit.Recorder = (*AuditRecorder)(nil)

func (r *AuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.auditTrail = append(r.store.auditTrail, entry)
	return nil
}

func (r *AuditRecorder) ListByEntity(ctx context.Context, entityType string, entityID id.ID) ([]audit.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]audit.Entry, 0)
	for _, entry := range r.store.auditTrail {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			result = append(result, entry)
		}
	}
	return result, nil
}
