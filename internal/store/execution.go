package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
)

// ExecutionFilter narrows execution listings. Zero values mean "no filter".
type ExecutionFilter struct {
	TaskID     uuid.UUID
	ExecutedBy uuid.UUID
}

// ExecutionStore defines the interface for execution record persistence.
// Executions are append-only: there is no update or delete.
type ExecutionStore interface {
	// Create saves a new execution record to the store.
	Create(ctx context.Context, execution *domain.Execution) error

	// GetByID retrieves an execution by its unique ID.
	// Returns ErrExecutionNotFound if the execution does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error)

	// List retrieves executions matching the filter, ordered by execution
	// time, newest first.
	List(ctx context.Context, filter ExecutionFilter, limit, offset int) ([]*domain.Execution, error)

	// ListByTask retrieves the full execution history of one task,
	// newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Execution, error)

	// WithTx returns an ExecutionStore bound to the given transaction.
	WithTx(tx *sql.Tx) ExecutionStore
}
