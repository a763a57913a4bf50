package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
)

// PostponementFilter narrows postponement listings. Zero values mean
// "no filter".
type PostponementFilter struct {
	TaskID         uuid.UUID
	ApprovalStatus domain.ApprovalStatus
	RequestedBy    uuid.UUID
}

// PostponementStore defines the interface for postponement request
// persistence.
//
// Decide is a conditional primitive: the approval status moves off
// pending at most once, so two racing decisions resolve to exactly one
// winner and the loser observes a conflict.
type PostponementStore interface {
	// Create saves a new postponement request to the store.
	Create(ctx context.Context, p *domain.Postponement) error

	// GetByID retrieves a postponement by its unique ID.
	// Returns ErrPostponementNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Postponement, error)

	// List retrieves postponements matching the filter, ordered by request
	// time, newest first.
	List(ctx context.Context, filter PostponementFilter, limit, offset int) ([]*domain.Postponement, error)

	// Decide sets the approval status to the given outcome only if it is
	// currently pending, recording the decider and decision time in the
	// same atomic update.
	// Returns ErrPostponementNotFound if the request does not exist and
	// ErrPostponementDecided if it has already been decided.
	Decide(
		ctx context.Context,
		id uuid.UUID,
		outcome domain.ApprovalStatus,
		decidedBy uuid.UUID,
		decidedAt time.Time,
	) error

	// WithTx returns a PostponementStore bound to the given transaction so
	// Decide can compose with the task's planned-date write atomically.
	WithTx(tx *sql.Tx) PostponementStore
}
