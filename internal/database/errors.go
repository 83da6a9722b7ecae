// internal/database/errors.go
package database

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrDuplicateKey is the base of every uniqueness violation.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConnectionFailed is the base of every connection failure.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnknownBackend is returned by the factory for an unrecognized
	// DATABASE_TYPE.
	ErrUnknownBackend = errors.New("unknown database backend")
)

// ConnectionError reports that an engine was unreachable or misconfigured.
type ConnectionError struct {
	Backend string
	Cause   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection failed: %v", e.Backend, e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed || errors.Is(e.Cause, target)
}

// NewConnectionError wraps a driver connection failure.
func NewConnectionError(backend string, cause error) *ConnectionError {
	return &ConnectionError{Backend: backend, Cause: cause}
}

// DuplicateKeyError reports a uniqueness violation on create. Field names
// the violated constraint when the engine exposes it (email, username, sku,
// customerId), otherwise it is empty.
type DuplicateKeyError struct {
	Backend string
	Field   string
	Cause   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: duplicate key on %s: %v", e.Backend, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s: duplicate key: %v", e.Backend, e.Cause)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Cause }

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey || errors.Is(e.Cause, target)
}

// NewDuplicateKeyError wraps an engine uniqueness violation.
func NewDuplicateKeyError(backend, field string, cause error) *DuplicateKeyError {
	return &DuplicateKeyError{Backend: backend, Field: field, Cause: cause}
}

// StorageError is any other engine-level failure, including malformed JSON
// found in a stored row.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError wraps an engine failure with the failing operation.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// IsDuplicateKey reports whether err is a uniqueness violation from any
// backend.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}
