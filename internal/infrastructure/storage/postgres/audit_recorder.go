package postgres

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"stockpilot/internal/core/id"
	"stockpilot/internal/domain/audit"
)

// compressThreshold is the payload size above which the changes column
// is stored zstd-compressed instead of as plain JSONB text.
const compressThreshold = 10 * 1024

const compressionZstd = "zstd"
const compressionNone = "none"

// AuditRecorder implements audit.Recorder on the sys_audit table.
// Large payloads are compressed with zstd before storage.
type AuditRecorder struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

var _ audit.Recorder = (*AuditRecorder)(nil)

func NewAuditRecorder(txManager *TxManager) (*AuditRecorder, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditRecorder{
		txManager: txManager,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

// Record inserts one audit entry.
func (r *AuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	changes := []byte(entry.Changes)
	var compressed []byte
	algo := compressionNone
	if len(changes) > compressThreshold {
		compressed = r.encoder.EncodeAll(changes, nil)
		changes = nil
		algo = compressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, actor,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action, entry.Actor,
		changes, compressed, algo, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByEntity returns the recorded trail for one entity, newest first.
func (r *AuditRecorder) ListByEntity(ctx context.Context, entityType string, entityID id.ID) ([]audit.Entry, error) {
	sql := `
		SELECT id, entity_type, entity_id, action, actor,
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var compressed []byte
		var algo string
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Actor,
			&e.Changes, &compressed, &algo, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		if algo == compressionZstd && len(compressed) > 0 {
			decompressed, err := r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit changes: %w", err)
			}
			e.Changes = decompressed
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
