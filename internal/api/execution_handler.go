package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/store"
)

// ExecutionHandler handles execution record HTTP requests. Executions
// are created through the task execute endpoint; this handler is
// read-only.
type ExecutionHandler struct {
	executionStore store.ExecutionStore
	logger         *slog.Logger
}

// NewExecutionHandler creates a new ExecutionHandler.
// If log is nil, a default logger will be used.
func NewExecutionHandler(executionStore store.ExecutionStore, log *slog.Logger) *ExecutionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ExecutionHandler{
		executionStore: executionStore,
		logger:         log.With(slog.String("component", "execution_handler")),
	}
}

// List handles GET /api/executions. Task and executor filters come from
// query parameters.
func (h *ExecutionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ExecutionFilter{}
	if taskID, err := uuid.Parse(r.URL.Query().Get("task_id")); err == nil {
		filter.TaskID = taskID
	}
	if executedBy, err := uuid.Parse(r.URL.Query().Get("executed_by")); err == nil {
		filter.ExecutedBy = executedBy
	}

	limit, offset := parsePagination(r)
	executions, err := h.executionStore.List(r.Context(), filter, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list executions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, executions)
}

// Get handles GET /api/executions/{id}.
func (h *ExecutionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	exec, err := h.executionStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, exec)
}
