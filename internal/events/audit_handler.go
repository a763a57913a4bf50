package events

import (
	"context"
	"log/slog"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/store"
)

// AuditLogHandler persists audit events to the audit log store.
type AuditLogHandler struct {
	auditStore store.AuditStore
	logger     *slog.Logger
}

// NewAuditLogHandler creates a handler that writes each event to the
// given store.
func NewAuditLogHandler(auditStore store.AuditStore, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditStore: auditStore,
		logger:     logger.With("component", "audit_log_handler"),
	}
}

// Ensure AuditLogHandler implements EventHandler interface
var _ EventHandler = (*AuditLogHandler)(nil)

// HandleEvent implements EventHandler by appending an audit log entry.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *AuditEvent) error {
	entry, err := domain.NewAuditEntry(event.ActorID, event.Action, event.Entity, event.EntityID)
	if err != nil {
		h.logger.Error("failed to build audit entry",
			"error", err,
			"event_id", event.ID,
			"action", event.Action)
		return err
	}
	entry.CreatedAt = event.OccurredAt

	return h.auditStore.Create(ctx, entry)
}
