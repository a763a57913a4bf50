package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func overdueTask(t *testing.T, taskStore *mocks.MockTaskStore, assignee *uuid.UUID) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(
		"Replace belt B-7",
		uuid.New(),
		time.Now().Add(-48*time.Hour),
		domain.PriorityCritical,
		uuid.New(),
	)
	require.NoError(t, err)
	task.AssigneeID = assignee
	require.NoError(t, taskStore.Create(context.Background(), task))
	return task
}

func TestRunOnceRaisesAlertForOverdueTask(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	alertStore := mocks.NewMockAlertStore()
	sweeper := NewOverdueSweeper(taskStore, alertStore, DefaultSweeperConfig(), discardLogger())

	assignee := uuid.New()
	task := overdueTask(t, taskStore, &assignee)

	require.NoError(t, sweeper.RunOnce(context.Background()))

	alerts, err := alertStore.ListByUser(context.Background(), assignee, 0, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertTypeTaskOverdue, alerts[0].Type)
	require.NotNil(t, alerts[0].TaskID)
	assert.Equal(t, task.ID, *alerts[0].TaskID)
	assert.False(t, alerts[0].IsRead)
}

func TestRunOnceDeduplicatesAcrossSweeps(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	alertStore := mocks.NewMockAlertStore()
	sweeper := NewOverdueSweeper(taskStore, alertStore, DefaultSweeperConfig(), discardLogger())

	assignee := uuid.New()
	overdueTask(t, taskStore, &assignee)

	require.NoError(t, sweeper.RunOnce(context.Background()))
	require.NoError(t, sweeper.RunOnce(context.Background()))

	assert.Equal(t, 1, alertStore.Count(), "one alert per overdue task across sweeps")
}

func TestRunOnceSkipsUnassignedAndFutureTasks(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	alertStore := mocks.NewMockAlertStore()
	sweeper := NewOverdueSweeper(taskStore, alertStore, DefaultSweeperConfig(), discardLogger())

	// Overdue but unassigned
	overdueTask(t, taskStore, nil)

	// Assigned but not overdue
	assignee := uuid.New()
	future, err := domain.NewTask(
		"Calibrate sensor S-2",
		uuid.New(),
		time.Now().Add(24*time.Hour),
		domain.PriorityLow,
		uuid.New(),
	)
	require.NoError(t, err)
	future.AssigneeID = &assignee
	require.NoError(t, taskStore.Create(context.Background(), future))

	require.NoError(t, sweeper.RunOnce(context.Background()))
	assert.Zero(t, alertStore.Count())
}

func TestRunOnceSkipsFinishedTasks(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	alertStore := mocks.NewMockAlertStore()
	sweeper := NewOverdueSweeper(taskStore, alertStore, DefaultSweeperConfig(), discardLogger())

	assignee := uuid.New()
	task := overdueTask(t, taskStore, &assignee)
	task.Status = domain.TaskStatusCompleted
	require.NoError(t, taskStore.Update(context.Background(), task))

	require.NoError(t, sweeper.RunOnce(context.Background()))
	assert.Zero(t, alertStore.Count())
}

func TestStartStopTerminatesCleanly(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	alertStore := mocks.NewMockAlertStore()
	sweeper := NewOverdueSweeper(taskStore, alertStore, SweeperConfig{Interval: time.Minute}, discardLogger())

	sweeper.Start()

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop in time")
	}
}
