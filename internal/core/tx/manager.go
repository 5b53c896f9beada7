// Package tx defines the transaction boundary the domain services run
// their writes behind. The ledger and the workflow documents need
// all-or-nothing semantics; the concrete managers (pgx transactions,
// the in-memory pass-through) live in infrastructure/storage.
package tx

import (
	"context"
)

// Manager runs a callback inside a transaction. An error from fn rolls
// everything back, success commits. Nested calls join the transaction
// already carried by the context, so a transfer completion can wrap the
// ledger's own transactional delta batch.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager for report queries that never write.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
