package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
)

// AlertStore defines the interface for alert persistence.
type AlertStore interface {
	// Create saves a new alert to the store.
	Create(ctx context.Context, alert *domain.Alert) error

	// ListByUser retrieves a user's alerts, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Alert, error)

	// MarkRead flags an alert as read.
	// Returns ErrAlertNotFound if the alert does not exist.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flags all of a user's unread alerts as read and returns
	// how many were updated.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// ExistsForTask reports whether an alert of the given type already
	// exists for the task, so sweeps do not pile up duplicates.
	ExistsForTask(ctx context.Context, taskID uuid.UUID, alertType domain.AlertType) (bool, error)
}

// AuditStore defines the interface for audit log persistence. Entries are
// append-only.
type AuditStore interface {
	// Create saves a new audit entry to the store.
	Create(ctx context.Context, entry *domain.AuditEntry) error

	// List retrieves audit entries, newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error)
}
