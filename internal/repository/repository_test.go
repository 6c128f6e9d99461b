package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectNotFoundError(t *testing.T) {
	err := error(&ObjectNotFoundError{Entity: "User", ID: 42})

	assert.Equal(t, "User with ID 42 not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("remove: %w", err), ErrNotFound)

	var nf *ObjectNotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, int64(42), nf.ID)

	assert.Equal(t, "User not found", (&ObjectNotFoundError{Entity: "User"}).Error())
}

func TestPersistenceError(t *testing.T) {
	err := error(&PersistenceError{Op: "create", Entity: "User", Err: sql.ErrConnDone})

	assert.Equal(t, "failed to create User in the database", err.Error())
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotContains(t, err.Error(), sql.ErrConnDone.Error())
}
