package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. Its default
// behavior keeps tasks in a map guarded by a mutex, and Complete honors
// the same conditional single-winner semantics as the real store, so
// concurrency tests behave like the database.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn            func(ctx context.Context, task *domain.Task) error
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn              func(ctx context.Context, filter store.TaskFilter, limit, offset int) ([]*domain.Task, error)
	ListOverdueFn       func(ctx context.Context, before time.Time) ([]*domain.Task, error)
	UpdateFn            func(ctx context.Context, task *domain.Task) error
	DeleteFn            func(ctx context.Context, id uuid.UUID) error
	CompleteFn          func(ctx context.Context, id uuid.UUID) error
	StatsFn             func(ctx context.Context) (*domain.TaskStats, error)
	UpdatePlannedDateFn func(ctx context.Context, id uuid.UUID, plannedDate time.Time) error

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
}

// Ensure MockTaskStore implements store.TaskStore
var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// WithTx implements the TaskStore interface. The mock has no real
// transactions, so it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, exists := m.Tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	limit, offset int,
) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []*domain.Task{}
	for _, task := range m.Tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.SiteID != uuid.Nil && task.SiteID != filter.SiteID {
			continue
		}
		if filter.AssigneeID != uuid.Nil &&
			(task.AssigneeID == nil || *task.AssigneeID != filter.AssigneeID) {
			continue
		}
		copied := *task
		tasks = append(tasks, &copied)
	}
	return tasks, nil
}

// ListOverdue implements the TaskStore interface
func (m *MockTaskStore) ListOverdue(ctx context.Context, before time.Time) ([]*domain.Task, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, before)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []*domain.Task{}
	for _, task := range m.Tasks {
		if task.PlannedDate.Before(before) && task.CanComplete() {
			copied := *task
			tasks = append(tasks, &copied)
		}
	}
	return tasks, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Tasks[task.ID]; !exists {
		return store.ErrTaskNotFound
	}
	m.Tasks[task.ID] = task
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Tasks[id]; !exists {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// Complete implements the TaskStore interface. The status check and the
// write happen under one lock acquisition: exactly one of two racing
// callers wins.
func (m *MockTaskStore) Complete(ctx context.Context, id uuid.UUID) error {
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, exists := m.Tasks[id]
	if !exists {
		return store.ErrTaskNotFound
	}
	if !task.CanComplete() {
		return store.ErrTaskFinished
	}
	task.Status = domain.TaskStatusCompleted
	task.UpdatedAt = time.Now().UTC()
	return nil
}

// Stats implements the TaskStore interface. Overdue and due-today counts
// compare calendar dates in UTC, mirroring the store's date cast.
func (m *MockTaskStore) Stats(ctx context.Context) (*domain.TaskStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	stats := &domain.TaskStats{}
	for _, task := range m.Tasks {
		stats.TotalTasks++
		switch task.Status {
		case domain.TaskStatusPending:
			stats.PendingTasks++
		case domain.TaskStatusInProgress:
			stats.InProgressTasks++
		case domain.TaskStatusCompleted:
			stats.CompletedTasks++
		case domain.TaskStatusCancelled:
			stats.CancelledTasks++
		}
		if task.Status == domain.TaskStatusCompleted {
			continue
		}
		planned := task.PlannedDate.UTC().Truncate(24 * time.Hour)
		if planned.Before(today) {
			stats.OverdueTasks++
		} else if planned.Equal(today) {
			stats.DueToday++
		}
	}
	return stats, nil
}

// UpdatePlannedDate implements the TaskStore interface
func (m *MockTaskStore) UpdatePlannedDate(
	ctx context.Context,
	id uuid.UUID,
	plannedDate time.Time,
) error {
	if m.UpdatePlannedDateFn != nil {
		return m.UpdatePlannedDateFn(ctx, id, plannedDate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, exists := m.Tasks[id]
	if !exists {
		return store.ErrTaskNotFound
	}
	task.PlannedDate = plannedDate
	task.UpdatedAt = time.Now().UTC()
	return nil
}
