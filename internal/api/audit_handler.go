package api

import (
	"log/slog"
	"net/http"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/store"
)

// AuditHandler exposes the audit trail. Entries are written by the
// event emitter on mutations; this handler is read-only.
type AuditHandler struct {
	auditStore store.AuditStore
	logger     *slog.Logger
}

// NewAuditHandler creates a new AuditHandler.
// If log is nil, a default logger will be used.
func NewAuditHandler(auditStore store.AuditStore, log *slog.Logger) *AuditHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuditHandler{
		auditStore: auditStore,
		logger:     log.With(slog.String("component", "audit_handler")),
	}
}

// List handles GET /api/audit-logs, newest entries first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	entries, err := h.auditStore.List(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list audit entries")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}
