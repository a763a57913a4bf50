package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
)

// TaskFilter narrows task listings. Zero values mean "no filter".
type TaskFilter struct {
	Status     domain.TaskStatus
	SiteID     uuid.UUID
	AssigneeID uuid.UUID
}

// TaskStore defines the interface for maintenance task persistence.
//
// Complete and UpdatePlannedDate are conditional primitives: they apply
// only when the task is in the required prior state and report a
// conflict otherwise, so racing writers resolve deterministically to one
// winner.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves tasks matching the filter, ordered by planned date,
	// newest first.
	List(ctx context.Context, filter TaskFilter, limit, offset int) ([]*domain.Task, error)

	// ListOverdue retrieves tasks whose planned date is before the given
	// time and whose status is still pending or in_progress.
	ListOverdue(ctx context.Context, before time.Time) ([]*domain.Task, error)

	// Update modifies an existing task's editable fields (the direct-edit
	// path for status and planned date).
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Complete sets the task's status to completed only if it is currently
	// pending or in_progress, as a single atomic update.
	// Returns ErrTaskNotFound if the task does not exist and
	// ErrTaskFinished if it is already completed or cancelled.
	Complete(ctx context.Context, id uuid.UUID) error

	// Stats aggregates task counts per status plus overdue and due-today
	// totals for the dashboard.
	Stats(ctx context.Context) (*domain.TaskStats, error)

	// UpdatePlannedDate moves the task's planned date. Used by the
	// postponement workflow when a request is approved; must be called
	// inside the same transaction as the approval write.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdatePlannedDate(ctx context.Context, id uuid.UUID, plannedDate time.Time) error

	// WithTx returns a TaskStore bound to the given transaction so
	// conditional updates can compose with other writes atomically.
	WithTx(tx *sql.Tx) TaskStore
}
