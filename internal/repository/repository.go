// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"
	"errors"
	"fmt"

	"userapi/internal/database"
)

// CRUD is the uniform set of persistence operations for one entity kind.
// E is the stored entity, C the validated creation payload and U the partial update payload.
// Every operation runs against the caller's scoped session.
type CRUD[E, C, U any] interface {
	// ReadByID returns the entity with the given id. found is false when no row exists;
	// absence is not an error.
	ReadByID(ctx context.Context, s database.Session, id int64) (e E, found bool, err error)

	// ReadMany returns up to limit entities starting at offset in storage order.
	// An empty table yields an empty, non-nil slice. limit and offset are passed through unchecked.
	ReadMany(ctx context.Context, s database.Session, limit, offset int) ([]E, error)

	// Create inserts a new row and returns it with the storage-issued id.
	Create(ctx context.Context, s database.Session, data C) (E, error)

	// Update changes only the fields present in data. found is false when no row has the id.
	Update(ctx context.Context, s database.Session, data U, id int64) (e E, found bool, err error)

	// Remove deletes the row with the given id, or returns an *ObjectNotFoundError
	// without issuing a delete when it does not exist.
	Remove(ctx context.Context, s database.Session, id int64) error
}

// ErrNotFound is matched by every *ObjectNotFoundError via errors.Is.
var ErrNotFound = errors.New("object not found")

// ObjectNotFoundError reports that no row of Entity exists with ID.
type ObjectNotFoundError struct {
	Entity string
	ID     int64
}

func (e *ObjectNotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

func (e *ObjectNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps a storage failure. The active transaction has already
// been rolled back when it is returned.
type PersistenceError struct {
	Op     string
	Entity string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s in the database", e.Op, e.Entity)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
