// internal/database/errors_test.go
package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateKeyErrorWrapping(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: users.email")
	err := NewDuplicateKeyError(BackendSQLite, "email", cause)

	assert.True(t, IsDuplicateKey(err))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), BackendSQLite)

	// Survives further wrapping.
	wrapped := fmt.Errorf("create user: %w", err)
	assert.True(t, IsDuplicateKey(wrapped))

	var dup *DuplicateKeyError
	require.ErrorAs(t, wrapped, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestConnectionErrorWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewConnectionError(BackendPostgres, cause)

	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), BackendPostgres)
	assert.False(t, IsDuplicateKey(err))
}

func TestStorageErrorCarriesOperation(t *testing.T) {
	cause := errors.New("syntax error")
	err := NewStorageError(BackendMySQL, "insert products", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert products")
	assert.False(t, IsDuplicateKey(err))
}
