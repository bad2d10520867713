package dao

import (
	"context"
)

// Service is a generic keyed record store. The relay addresses every record
// independently by its key, so implementations only need last-writer-wins
// semantics; callers must not assume read-modify-write atomicity across
// processes.
type Service[K comparable, T any] interface {
	// Save stores or overwrites a record.
	Save(ctx context.Context, t *T) error

	// Load returns a record by key, or an error wrapping ErrNotFound.
	Load(ctx context.Context, id K) (*T, error)

	// Delete removes a record.
	Delete(ctx context.Context, id K) error

	// List returns all stored records.
	List(ctx context.Context) ([]*T, error)
}
