package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/domain"
)

func (env *apiTestEnv) seedPostponement(t *testing.T, task *domain.Task) *domain.Postponement {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/postpone",
		`{"new_planned_date":"2026-10-01T08:00:00Z","justification":"parts on backorder"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p domain.Postponement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return &p
}

func TestPostponementApprove(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)
	p := env.seedPostponement(t, task)

	rec := env.do(t, http.MethodPut, "/api/postponements/"+p.ID.String()+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var decided domain.Postponement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decided))
	assert.Equal(t, domain.ApprovalStatusApproved, decided.ApprovalStatus)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, env.identity.UserID, *decided.DecidedBy)
	assert.NotNil(t, decided.DecidedAt)

	// Approval moves the task's planned date
	got, err := env.taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, got.PlannedDate.Equal(p.NewPlannedDate))
}

func TestPostponementReject(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)
	p := env.seedPostponement(t, task)

	rec := env.do(t, http.MethodPut, "/api/postponements/"+p.ID.String()+"/reject", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var decided domain.Postponement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decided))
	assert.Equal(t, domain.ApprovalStatusRejected, decided.ApprovalStatus)

	// Rejection leaves the task's planned date untouched
	got, err := env.taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, got.PlannedDate.Equal(task.PlannedDate))
}

func TestPostponementDecideTwiceConflicts(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)
	p := env.seedPostponement(t, task)

	first := env.do(t, http.MethodPut, "/api/postponements/"+p.ID.String()+"/approve", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := env.do(t, http.MethodPut, "/api/postponements/"+p.ID.String()+"/reject", "")
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestPostponementDecideNotFound(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/postponements/"+uuid.NewString()+"/approve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostponementGetAndList(t *testing.T) {
	env := newAPITestEnv(t)
	task := env.seedTask(t)
	p := env.seedPostponement(t, task)

	rec := env.do(t, http.MethodGet, "/api/postponements/"+p.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/postponements?task_id="+task.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*domain.Postponement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}
