// Package id generates identifiers for items, warehouses, workflow
// documents and their line records.
package id

import (
	"github.com/google/uuid"
)

// ID aliases uuid.UUID so entities and repositories share one type.
type ID = uuid.UUID

// New generates a UUIDv7. The embedded timestamp keeps movement and
// history rows roughly insertion-ordered, which sorts naturally and
// clusters well in Postgres B-trees.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// Nil returns the zero-value ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
