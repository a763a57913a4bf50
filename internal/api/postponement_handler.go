package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/service/postponement"
	"github.com/efme/efme-api/internal/store"
)

// PostponementHandler handles postponement request HTTP endpoints.
// Creation lives on the task resource; this handler covers listing and
// the approve/reject decisions.
type PostponementHandler struct {
	postponementService *postponement.Service
	postponementStore   store.PostponementStore
	logger              *slog.Logger
}

// NewPostponementHandler creates a new PostponementHandler.
// If log is nil, a default logger will be used.
func NewPostponementHandler(
	postponementService *postponement.Service,
	postponementStore store.PostponementStore,
	log *slog.Logger,
) *PostponementHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PostponementHandler{
		postponementService: postponementService,
		postponementStore:   postponementStore,
		logger:              log.With(slog.String("component", "postponement_handler")),
	}
}

// List handles GET /api/postponements. Task, status and requester
// filters come from query parameters.
func (h *PostponementHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.PostponementFilter{
		ApprovalStatus: domain.ApprovalStatus(r.URL.Query().Get("approval_status")),
	}
	if taskID, err := uuid.Parse(r.URL.Query().Get("task_id")); err == nil {
		filter.TaskID = taskID
	}
	if requesterID, err := uuid.Parse(r.URL.Query().Get("requested_by")); err == nil {
		filter.RequestedBy = requesterID
	}

	limit, offset := parsePagination(r)
	postponements, err := h.postponementStore.List(r.Context(), filter, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list postponements")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, postponements)
}

// Get handles GET /api/postponements/{id}.
func (h *PostponementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.postponementStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, p)
}

// Approve handles PUT /api/postponements/{id}/approve.
func (h *PostponementHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, domain.ApprovalStatusApproved)
}

// Reject handles PUT /api/postponements/{id}/reject.
func (h *PostponementHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, domain.ApprovalStatusRejected)
}

func (h *PostponementHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	outcome domain.ApprovalStatus,
) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.postponementService.Decide(r.Context(), id, identity.UserID, outcome)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, p)
}
