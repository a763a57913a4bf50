package postponement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/mocks"
	"github.com/efme/efme-api/internal/store"
)

type capturingEmitter struct {
	mu     sync.Mutex
	events []*events.AuditEvent
}

func (e *capturingEmitter) EmitEvent(_ context.Context, event *events.AuditEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func newTestService(
	taskStore *mocks.MockTaskStore,
	postponementStore *mocks.MockPostponementStore,
	emitter events.EventEmitter,
) *Service {
	return NewService(mocks.NewMockTxRunner(), taskStore, postponementStore, emitter, nil)
}

func seedTask(t *testing.T, taskStore *mocks.MockTaskStore) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(
		"Grease conveyor C-3",
		uuid.New(),
		time.Now().Add(48*time.Hour),
		domain.PriorityMedium,
		uuid.New(),
	)
	require.NoError(t, err)
	require.NoError(t, taskStore.Create(context.Background(), task))
	return task
}

func TestRequestCreatesPendingPostponement(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	postponementStore := mocks.NewMockPostponementStore()
	emitter := &capturingEmitter{}
	svc := newTestService(taskStore, postponementStore, emitter)

	task := seedTask(t, taskStore)
	requester := uuid.New()
	newDate := time.Now().Add(7 * 24 * time.Hour)

	p, err := svc.Request(context.Background(), task.ID, requester, newDate, "parts on backorder")
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalStatusPending, p.ApprovalStatus)
	assert.Equal(t, task.ID, p.TaskID)
	assert.Equal(t, requester, p.RequestedBy)
	assert.Nil(t, p.DecidedBy)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.ActionRequestPostponement, emitter.events[0].Action)
}

func TestRequestMissingTask(t *testing.T) {
	t.Parallel()

	svc := newTestService(mocks.NewMockTaskStore(), mocks.NewMockPostponementStore(), nil)

	_, err := svc.Request(
		context.Background(),
		uuid.New(),
		uuid.New(),
		time.Now().Add(time.Hour),
		"why not",
	)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestRequestRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	svc := newTestService(taskStore, mocks.NewMockPostponementStore(), nil)
	task := seedTask(t, taskStore)

	_, err := svc.Request(context.Background(), task.ID, uuid.New(), time.Time{}, "reason")
	assert.ErrorIs(t, err, domain.ErrZeroNewPlannedDate)

	_, err = svc.Request(context.Background(), task.ID, uuid.New(), time.Now().Add(time.Hour), "")
	assert.ErrorIs(t, err, domain.ErrEmptyJustification)
}

func TestRequestAllowsDuplicatePending(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	postponementStore := mocks.NewMockPostponementStore()
	svc := newTestService(taskStore, postponementStore, nil)
	task := seedTask(t, taskStore)

	newDate := time.Now().Add(72 * time.Hour)
	_, err := svc.Request(context.Background(), task.ID, uuid.New(), newDate, "first request")
	require.NoError(t, err)
	_, err = svc.Request(context.Background(), task.ID, uuid.New(), newDate, "second request")
	require.NoError(t, err)

	pending, err := postponementStore.List(context.Background(), store.PostponementFilter{
		TaskID:         task.ID,
		ApprovalStatus: domain.ApprovalStatusPending,
	}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestDecideApproveMovesPlannedDate(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	postponementStore := mocks.NewMockPostponementStore()
	emitter := &capturingEmitter{}
	svc := newTestService(taskStore, postponementStore, emitter)

	task := seedTask(t, taskStore)
	newDate := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	p, err := svc.Request(context.Background(), task.ID, uuid.New(), newDate, "supplier delay")
	require.NoError(t, err)

	approver := uuid.New()
	decided, err := svc.Decide(context.Background(), p.ID, approver, domain.ApprovalStatusApproved)
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalStatusApproved, decided.ApprovalStatus)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, approver, *decided.DecidedBy)
	assert.NotNil(t, decided.DecidedAt)

	updated, err := taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, updated.PlannedDate.Equal(newDate), "planned date moved with the approval")

	require.Len(t, emitter.events, 2)
	assert.Equal(t, events.ActionDecidePostponement, emitter.events[1].Action)
}

func TestDecideRejectLeavesTaskUntouched(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	postponementStore := mocks.NewMockPostponementStore()
	svc := newTestService(taskStore, postponementStore, nil)

	task := seedTask(t, taskStore)
	originalDate := task.PlannedDate
	p, err := svc.Request(
		context.Background(),
		task.ID,
		uuid.New(),
		time.Now().Add(96*time.Hour),
		"weather",
	)
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), p.ID, uuid.New(), domain.ApprovalStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalStatusRejected, decided.ApprovalStatus)

	unchanged, err := taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.PlannedDate.Equal(originalDate))
}

func TestDecideRejectsNonTerminalOutcome(t *testing.T) {
	t.Parallel()

	svc := newTestService(mocks.NewMockTaskStore(), mocks.NewMockPostponementStore(), nil)

	_, err := svc.Decide(context.Background(), uuid.New(), uuid.New(), domain.ApprovalStatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidApprovalStatus)
}

func TestDecideMissingPostponement(t *testing.T) {
	t.Parallel()

	svc := newTestService(mocks.NewMockTaskStore(), mocks.NewMockPostponementStore(), nil)

	_, err := svc.Decide(context.Background(), uuid.New(), uuid.New(), domain.ApprovalStatusApproved)
	assert.ErrorIs(t, err, store.ErrPostponementNotFound)
}

func TestDecideAlreadyDecidedConflicts(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	postponementStore := mocks.NewMockPostponementStore()
	svc := newTestService(taskStore, postponementStore, nil)

	task := seedTask(t, taskStore)
	p, err := svc.Request(
		context.Background(),
		task.ID,
		uuid.New(),
		time.Now().Add(24*time.Hour),
		"inventory",
	)
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), p.ID, uuid.New(), domain.ApprovalStatusRejected)
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), p.ID, uuid.New(), domain.ApprovalStatusApproved)
	assert.ErrorIs(t, err, store.ErrPostponementDecided)
}

func TestDecideConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	postponementStore := mocks.NewMockPostponementStore()
	svc := newTestService(taskStore, postponementStore, nil)

	task := seedTask(t, taskStore)
	p, err := svc.Request(
		context.Background(),
		task.ID,
		uuid.New(),
		time.Now().Add(24*time.Hour),
		"split shift",
	)
	require.NoError(t, err)

	outcomes := []domain.ApprovalStatus{
		domain.ApprovalStatusApproved,
		domain.ApprovalStatusRejected,
	}
	errs := make([]error, len(outcomes))
	var wg sync.WaitGroup
	var start sync.WaitGroup
	start.Add(1)

	for i, outcome := range outcomes {
		wg.Add(1)
		go func(i int, outcome domain.ApprovalStatus) {
			defer wg.Done()
			start.Wait()
			_, errs[i] = svc.Decide(context.Background(), p.ID, uuid.New(), outcome)
		}(i, outcome)
	}
	start.Done()
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case store.IsConflictError(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one decision wins")
	assert.Equal(t, 1, conflicts, "the loser observes a conflict")

	final, err := postponementStore.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, final.ApprovalStatus.IsDecided())
}
