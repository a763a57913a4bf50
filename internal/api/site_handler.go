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

// SiteHandler handles site HTTP requests, including the nested
// equipment listing.
type SiteHandler struct {
	siteStore      store.SiteStore
	equipmentStore store.EquipmentStore
	emitter        events.EventEmitter
	logger         *slog.Logger
}

// NewSiteHandler creates a new SiteHandler with the given dependencies.
// If log is nil, a default logger will be used.
func NewSiteHandler(
	siteStore store.SiteStore,
	equipmentStore store.EquipmentStore,
	emitter events.EventEmitter,
	log *slog.Logger,
) *SiteHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SiteHandler{
		siteStore:      siteStore,
		equipmentStore: equipmentStore,
		emitter:        emitter,
		logger:         log.With(slog.String("component", "site_handler")),
	}
}

// List handles GET /api/sites.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	sites, err := h.siteStore.List(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sites")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sites)
}

// Get handles GET /api/sites/{id}.
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	site, err := h.siteStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, site)
}

// Create handles POST /api/sites.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateSiteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	site, err := domain.NewSite(req.Name, req.Code)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	site.Latitude = req.Latitude
	site.Longitude = req.Longitude
	site.RadiusMeters = req.RadiusMeters

	if err := h.siteStore.Create(r.Context(), site); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionCreate, "site", site.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, site)
}

// Update handles PUT /api/sites/{id}.
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateSiteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	site, err := h.siteStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Code != nil {
		site.Code = *req.Code
	}
	if req.Latitude != nil {
		site.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		site.Longitude = req.Longitude
	}
	if req.RadiusMeters != nil {
		site.RadiusMeters = *req.RadiusMeters
	}

	if err := h.siteStore.Update(r.Context(), site); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionUpdate, "site", site.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, site)
}

// Delete handles DELETE /api/sites/{id}.
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.siteStore.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionDelete, "site", id.String()))

	w.WriteHeader(http.StatusNoContent)
}

// ListEquipment handles GET /api/sites/{id}/equipment.
func (h *SiteHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	// Surface a 404 for an unknown site rather than an empty list.
	if _, err := h.siteStore.GetByID(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	equipment, err := h.equipmentStore.ListBySite(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list equipment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, equipment)
}

// emitAudit publishes an audit event. Failures are logged, never surfaced
// to the client.
func (h *SiteHandler) emitAudit(r *http.Request, event *events.AuditEvent) {
	if h.emitter == nil {
		return
	}
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		h.logger.Warn("failed to emit audit event",
			slog.String("action", event.Action),
			slog.String("error", redact.Error(err)))
	}
}
