package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/store"
)

// MockExecutionStore implements store.ExecutionStore for testing
type MockExecutionStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, execution *domain.Execution) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Execution, error)
	ListFn       func(ctx context.Context, filter store.ExecutionFilter, limit, offset int) ([]*domain.Execution, error)
	ListByTaskFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.Execution, error)

	mu         sync.Mutex
	Executions []*domain.Execution
}

// Ensure MockExecutionStore implements store.ExecutionStore
var _ store.ExecutionStore = (*MockExecutionStore)(nil)

// NewMockExecutionStore creates a new mock store with initialized defaults
func NewMockExecutionStore() *MockExecutionStore {
	return &MockExecutionStore{}
}

// WithTx implements the ExecutionStore interface. The mock has no real
// transactions, so it returns itself.
func (m *MockExecutionStore) WithTx(tx *sql.Tx) store.ExecutionStore {
	return m
}

// Create implements the ExecutionStore interface
func (m *MockExecutionStore) Create(ctx context.Context, execution *domain.Execution) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, execution)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Executions = append(m.Executions, execution)
	return nil
}

// GetByID implements the ExecutionStore interface
func (m *MockExecutionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, execution := range m.Executions {
		if execution.ID == id {
			return execution, nil
		}
	}
	return nil, store.ErrExecutionNotFound
}

// List implements the ExecutionStore interface
func (m *MockExecutionStore) List(
	ctx context.Context,
	filter store.ExecutionFilter,
	limit, offset int,
) ([]*domain.Execution, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	executions := []*domain.Execution{}
	for _, execution := range m.Executions {
		if filter.TaskID != uuid.Nil && execution.TaskID != filter.TaskID {
			continue
		}
		if filter.ExecutedBy != uuid.Nil && execution.ExecutedBy != filter.ExecutedBy {
			continue
		}
		executions = append(executions, execution)
	}
	return executions, nil
}

// ListByTask implements the ExecutionStore interface
func (m *MockExecutionStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Execution, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, taskID)
	}

	return m.List(ctx, store.ExecutionFilter{TaskID: taskID}, 0, 0)
}

// Count returns the number of stored executions.
func (m *MockExecutionStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Executions)
}
