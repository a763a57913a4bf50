package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/redact"
	"github.com/efme/efme-api/internal/service/execution"
	"github.com/efme/efme-api/internal/service/postponement"
	"github.com/efme/efme-api/internal/store"
)

// TaskHandler handles maintenance task HTTP requests, including the
// execute and postpone sub-resources.
type TaskHandler struct {
	taskStore           store.TaskStore
	executionService    *execution.Service
	postponementService *postponement.Service
	emitter             events.EventEmitter
	logger              *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
// If log is nil, a default logger will be used.
func NewTaskHandler(
	taskStore store.TaskStore,
	executionService *execution.Service,
	postponementService *postponement.Service,
	emitter events.EventEmitter,
	log *slog.Logger,
) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		taskStore:           taskStore,
		executionService:    executionService,
		postponementService: postponementService,
		emitter:             emitter,
		logger:              log.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := domain.NewTask(req.Title, req.SiteID, req.PlannedDate.Time,
		domain.Priority(req.Priority), identity.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	task.Description = req.Description
	task.EquipmentID = req.EquipmentID
	task.AssigneeID = req.AssigneeID

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionCreate, "pm_task", task.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// List handles GET /api/tasks. Status, site and assignee filters come
// from query parameters; zero values mean no filter.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.TaskFilter{
		Status: domain.TaskStatus(r.URL.Query().Get("status")),
	}
	if siteID, err := uuid.Parse(r.URL.Query().Get("site_id")); err == nil {
		filter.SiteID = siteID
	}
	if assigneeID, err := uuid.Parse(r.URL.Query().Get("assigned_to")); err == nil {
		filter.AssigneeID = assigneeID
	}

	limit, offset := parsePagination(r)
	tasks, err := h.taskStore.List(r.Context(), filter, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Update handles PUT /api/tasks/{id}, the direct edit path. Fields absent
// from the payload keep their stored values.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.EquipmentID != nil {
		task.EquipmentID = req.EquipmentID
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.PlannedDate != nil {
		task.PlannedDate = req.PlannedDate.Time
	}
	if req.Status != nil {
		task.Status = domain.TaskStatus(*req.Status)
	}
	if req.Priority != nil {
		task.Priority = domain.Priority(*req.Priority)
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionUpdate, "pm_task", task.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(
		identity.UserID, events.ActionDelete, "pm_task", id.String()))

	w.WriteHeader(http.StatusNoContent)
}

// Execute handles POST /api/tasks/{id}/execute. The authenticated caller
// is recorded as the executor.
func (h *TaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ExecuteTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	exec, err := h.executionService.RecordExecution(r.Context(), id, identity.UserID,
		execution.RecordInput{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Comment:   req.Comment,
			Synced:    req.Synced,
		})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task executed",
		slog.String("task_id", id.String()),
		slog.String("execution_id", exec.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, exec)
}

// Postpone handles POST /api/tasks/{id}/postpone.
func (h *TaskHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req PostponeTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	p, err := h.postponementService.Request(r.Context(), id, identity.UserID,
		req.NewPlannedDate.Time, req.Justification)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, p)
}

// Dashboard handles GET /api/dashboard, returning aggregate task counts.
func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.taskStore.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute dashboard statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// ListExecutions handles GET /api/tasks/{id}/executions.
func (h *TaskHandler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	executions, err := h.executionService.History(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, executions)
}

// emitAudit publishes an audit event. Failures are logged, never surfaced
// to the client.
func (h *TaskHandler) emitAudit(r *http.Request, event *events.AuditEvent) {
	if h.emitter == nil {
		return
	}
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		h.logger.Warn("failed to emit audit event",
			slog.String("action", event.Action),
			slog.String("error", redact.Error(err)))
	}
}
