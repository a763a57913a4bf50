package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/mocks"
	"github.com/efme/efme-api/internal/service/execution"
	"github.com/efme/efme-api/internal/service/postponement"
)

// apiTestEnv wires handlers, mock stores and a router the way the
// application does, with a fixed authenticated identity.
type apiTestEnv struct {
	router            *chi.Mux
	identity          shared.Identity
	taskStore         *mocks.MockTaskStore
	executionStore    *mocks.MockExecutionStore
	postponementStore *mocks.MockPostponementStore
	emitter           *capturingEmitter
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	env := &apiTestEnv{
		identity:          shared.Identity{UserID: uuid.New(), Role: domain.RoleTechnician},
		taskStore:         mocks.NewMockTaskStore(),
		executionStore:    mocks.NewMockExecutionStore(),
		postponementStore: mocks.NewMockPostponementStore(),
		emitter:           &capturingEmitter{},
	}

	executionService := execution.NewService(
		mocks.NewMockTxRunner(), env.taskStore, env.executionStore, env.emitter, nil)
	postponementService := postponement.NewService(
		mocks.NewMockTxRunner(), env.taskStore, env.postponementStore, env.emitter, nil)

	taskHandler := NewTaskHandler(
		env.taskStore, executionService, postponementService, env.emitter, nil)
	postponementHandler := NewPostponementHandler(
		postponementService, env.postponementStore, nil)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithIdentity(r.Context(), env.identity)))
		})
	})
	router.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Get("/{id}", taskHandler.Get)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
			r.Post("/{id}/execute", taskHandler.Execute)
			r.Post("/{id}/postpone", taskHandler.Postpone)
			r.Get("/{id}/executions", taskHandler.ListExecutions)
		})
		r.Get("/dashboard", taskHandler.Dashboard)
		r.Route("/postponements", func(r chi.Router) {
			r.Get("/", postponementHandler.List)
			r.Get("/{id}", postponementHandler.Get)
			r.Put("/{id}/approve", postponementHandler.Approve)
			r.Put("/{id}/reject", postponementHandler.Reject)
		})
	})
	env.router = router
	return env
}

func (env *apiTestEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *apiTestEnv) seedTask(t *testing.T) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(
		"Inspect pump P-101",
		uuid.New(),
		time.Now().Add(24*time.Hour),
		domain.PriorityHigh,
		env.identity.UserID,
	)
	require.NoError(t, err)
	require.NoError(t, env.taskStore.Create(context.Background(), task))
	return task
}

func TestTaskCreate(t *testing.T) {
	env := newAPITestEnv(t)

	body := fmt.Sprintf(
		`{"title":"Replace filter","site_id":%q,"planned_date":"2026-09-15T08:00:00Z","priority":"high"}`,
		uuid.New())
	rec := env.do(t, http.MethodPost, "/api/tasks", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "Replace filter", task.Title)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, env.identity.UserID, task.CreatedBy, "creator comes from the token, not the payload")
}

func TestTaskCreateValidation(t *testing.T) {
	env := newAPITestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", fmt.Sprintf(`{"site_id":%q,"planned_date":"2026-09-15T08:00:00Z"}`, uuid.New())},
		{"missing planned date", fmt.Sprintf(`{"title":"x","site_id":%q}`, uuid.New())},
		{"malformed JSON", `{"title":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/tasks", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTaskCreateAcceptsDateOnlyPlannedDate(t *testing.T) {
	env := newAPITestEnv(t)

	body := fmt.Sprintf(`{"title":"Grease bearings","site_id":%q,"planned_date":"2026-09-15"}`,
		uuid.New())
	rec := env.do(t, http.MethodPost, "/api/tasks", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.True(t, task.PlannedDate.Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
}

func TestTaskGet(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodGet, "/api/tasks/"+task.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, task.ID, got.ID)
}

func TestTaskGetNotFound(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/tasks/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskGetMalformedID(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/tasks/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskUpdatePartial(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodPut, "/api/tasks/"+task.ID.String(), `{"priority":"critical"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.PriorityCritical, got.Priority)
	assert.Equal(t, task.Title, got.Title, "unset fields keep their values")
}

func TestTaskUpdateStatus(t *testing.T) {
	for _, status := range []domain.TaskStatus{domain.TaskStatusInProgress, domain.TaskStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			env := newAPITestEnv(t)
			task := env.seedTask(t)

			rec := env.do(t, http.MethodPut, "/api/tasks/"+task.ID.String(),
				fmt.Sprintf(`{"status":%q}`, status))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			got, err := env.taskStore.GetByID(context.Background(), task.ID)
			require.NoError(t, err)
			assert.Equal(t, status, got.Status)
		})
	}
}

func TestTaskUpdateRejectsUnknownStatus(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodPut, "/api/tasks/"+task.ID.String(), `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskDelete(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodDelete, "/api/tasks/"+task.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tasks/"+task.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskExecute(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/execute",
		`{"latitude":48.8566,"longitude":2.3522,"comment":"filters replaced"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var exec domain.Execution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exec))
	assert.Equal(t, task.ID, exec.TaskID)
	assert.Equal(t, env.identity.UserID, exec.ExecutedBy)
	assert.True(t, exec.Synced, "synced defaults to true")

	got, err := env.taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
}

func TestTaskExecuteConflictOnFinishedTask(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	first := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/execute", `{}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/execute", `{}`)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestTaskExecuteNotFound(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/tasks/"+uuid.NewString()+"/execute", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskPostpone(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/postpone",
		`{"new_planned_date":"2026-10-01T08:00:00Z","justification":"parts on backorder"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p domain.Postponement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, task.ID, p.TaskID)
	assert.Equal(t, domain.ApprovalStatusPending, p.ApprovalStatus)
	assert.Equal(t, env.identity.UserID, p.RequestedBy)
}

func TestTaskPostponeAcceptsDateOnly(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/postpone",
		`{"new_planned_date": "2025-01-10", "justification": "parts delay"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p domain.Postponement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, domain.ApprovalStatusPending, p.ApprovalStatus)
	assert.True(t, p.NewPlannedDate.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
}

func TestTaskPostponeValidation(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/postpone",
		`{"new_planned_date":"2026-10-01T08:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing justification")
}

func TestTaskListExecutions(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)

	rec := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/execute", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tasks/"+task.ID.String()+"/executions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var executions []*domain.Execution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &executions))
	assert.Len(t, executions, 1)
}

func TestDashboardStats(t *testing.T) {
	env := newAPITestEnv(t)

	env.seedTask(t)
	completed := env.seedTask(t)
	cancelled := env.seedTask(t)

	rec := env.do(t, http.MethodPost, "/api/tasks/"+completed.ID.String()+"/execute", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPut, "/api/tasks/"+cancelled.ID.String(), `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	overdue, err := domain.NewTask("Overdue inspection", uuid.New(),
		time.Now().Add(-72*time.Hour), domain.PriorityLow, env.identity.UserID)
	require.NoError(t, err)
	require.NoError(t, env.taskStore.Create(context.Background(), overdue))

	rec = env.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats domain.TaskStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 2, stats.PendingTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.CancelledTasks)
	assert.Equal(t, 1, stats.OverdueTasks)
}
