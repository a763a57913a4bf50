package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrConflict is returned when a conditional update finds the entity
	// outside the required prior state: completing an already-finished
	// task, deciding an already-decided postponement, or losing a race
	// against a concurrent decision.
	ErrConflict = errors.New("entity not in required state")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrSiteNotFound indicates that the requested site does not exist.
	ErrSiteNotFound = fmt.Errorf("%w: site", ErrNotFound)

	// ErrEquipmentNotFound indicates that the requested equipment does not exist.
	ErrEquipmentNotFound = fmt.Errorf("%w: equipment", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrExecutionNotFound indicates that the requested execution does not exist.
	ErrExecutionNotFound = fmt.Errorf("%w: execution", ErrNotFound)

	// ErrPostponementNotFound indicates that the requested postponement does not exist.
	ErrPostponementNotFound = fmt.Errorf("%w: postponement", ErrNotFound)

	// ErrAlertNotFound indicates that the requested alert does not exist.
	ErrAlertNotFound = fmt.Errorf("%w: alert", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// Entity-specific "conflict" errors

	// ErrTaskFinished indicates that a task is already completed or
	// cancelled and can no longer accept executions.
	ErrTaskFinished = fmt.Errorf("%w: task already finished", ErrConflict)

	// ErrPostponementDecided indicates that a postponement has already
	// been approved or rejected.
	ErrPostponementDecided = fmt.Errorf("%w: postponement already decided", ErrConflict)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error is any kind of state-conflict error.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "task")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
