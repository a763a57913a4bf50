package api

import (
	"log/slog"
	"net/http"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/store"
)

// AlertHandler handles alert HTTP requests. Alerts are scoped to the
// authenticated user; there is no cross-user listing.
type AlertHandler struct {
	alertStore store.AlertStore
	logger     *slog.Logger
}

// NewAlertHandler creates a new AlertHandler.
// If log is nil, a default logger will be used.
func NewAlertHandler(alertStore store.AlertStore, log *slog.Logger) *AlertHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AlertHandler{
		alertStore: alertStore,
		logger:     log.With(slog.String("component", "alert_handler")),
	}
}

// List handles GET /api/alerts, returning the caller's alerts.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	alerts, err := h.alertStore.ListByUser(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list alerts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, alerts)
}

// MarkRead handles PUT /api/alerts/{id}/read.
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.alertStore.MarkRead(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles PUT /api/alerts/mark-all-read, flagging every unread
// alert belonging to the caller.
func (h *AlertHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	marked, err := h.alertStore.MarkAllRead(r.Context(), identity.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark alerts read")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]int64{"marked_count": marked})
}
