package api

import (
	"log/slog"
	"net/http"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/redact"
	"github.com/efme/efme-api/internal/store"
)

// EquipmentHandler handles equipment HTTP requests.
type EquipmentHandler struct {
	equipmentStore store.EquipmentStore
	emitter        events.EventEmitter
	logger         *slog.Logger
}

// NewEquipmentHandler creates a new EquipmentHandler.
// If log is nil, a default logger will be used.
func NewEquipmentHandler(
	equipmentStore store.EquipmentStore,
	emitter events.EventEmitter,
	log *slog.Logger,
) *EquipmentHandler {
	if log == nil {
		log = slog.Default()
	}
	return &EquipmentHandler{
		equipmentStore: equipmentStore,
		emitter:        emitter,
		logger:         log.With(slog.String("component", "equipment_handler")),
	}
}

// List handles GET /api/equipment.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	equipment, err := h.equipmentStore.List(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list equipment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, equipment)
}

// Get handles GET /api/equipment/{id}.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	equipment, err := h.equipmentStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, equipment)
}

// Create handles POST /api/equipment. A reference to a missing site
// surfaces as a validation error from the foreign key.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateEquipmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	equipment, err := domain.NewEquipment(req.SiteID, req.Name, req.Reference)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.equipmentStore.Create(r.Context(), equipment); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionCreate, "equipment", equipment.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, equipment)
}

// Update handles PUT /api/equipment/{id}.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateEquipmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	equipment, err := h.equipmentStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Name != nil {
		equipment.Name = *req.Name
	}
	if req.Reference != nil {
		equipment.Reference = *req.Reference
	}

	if err := h.equipmentStore.Update(r.Context(), equipment); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionUpdate, "equipment", equipment.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, equipment)
}

// Delete handles DELETE /api/equipment/{id}.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.equipmentStore.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionDelete, "equipment", id.String()))

	w.WriteHeader(http.StatusNoContent)
}

// emitAudit publishes an audit event. Failures are logged, never surfaced
// to the client.
func (h *EquipmentHandler) emitAudit(r *http.Request, event *events.AuditEvent) {
	if h.emitter == nil {
		return
	}
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		h.logger.Warn("failed to emit audit event",
			slog.String("action", event.Action),
			slog.String("error", redact.Error(err)))
	}
}
