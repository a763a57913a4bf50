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

// MockPostponementStore implements store.PostponementStore for testing.
// Its default Decide honors the same conditional single-winner semantics
// as the real store, so concurrency tests behave like the database.
type MockPostponementStore struct {
	// Function fields for customizable behavior
	CreateFn  func(ctx context.Context, p *domain.Postponement) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Postponement, error)
	ListFn    func(ctx context.Context, filter store.PostponementFilter, limit, offset int) ([]*domain.Postponement, error)
	DecideFn  func(ctx context.Context, id uuid.UUID, outcome domain.ApprovalStatus, decidedBy uuid.UUID, decidedAt time.Time) error

	mu            sync.Mutex
	Postponements map[uuid.UUID]*domain.Postponement
}

// Ensure MockPostponementStore implements store.PostponementStore
var _ store.PostponementStore = (*MockPostponementStore)(nil)

// NewMockPostponementStore creates a new mock store with initialized defaults
func NewMockPostponementStore() *MockPostponementStore {
	return &MockPostponementStore{
		Postponements: make(map[uuid.UUID]*domain.Postponement),
	}
}

// WithTx implements the PostponementStore interface. The mock has no
// real transactions, so it returns itself.
func (m *MockPostponementStore) WithTx(tx *sql.Tx) store.PostponementStore {
	return m
}

// Create implements the PostponementStore interface
func (m *MockPostponementStore) Create(ctx context.Context, p *domain.Postponement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Postponements[p.ID] = p
	return nil
}

// GetByID implements the PostponementStore interface
func (m *MockPostponementStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Postponement, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, exists := m.Postponements[id]
	if !exists {
		return nil, store.ErrPostponementNotFound
	}
	copied := *p
	return &copied, nil
}

// List implements the PostponementStore interface
func (m *MockPostponementStore) List(
	ctx context.Context,
	filter store.PostponementFilter,
	limit, offset int,
) ([]*domain.Postponement, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	postponements := []*domain.Postponement{}
	for _, p := range m.Postponements {
		if filter.TaskID != uuid.Nil && p.TaskID != filter.TaskID {
			continue
		}
		if filter.ApprovalStatus != "" && p.ApprovalStatus != filter.ApprovalStatus {
			continue
		}
		if filter.RequestedBy != uuid.Nil && p.RequestedBy != filter.RequestedBy {
			continue
		}
		copied := *p
		postponements = append(postponements, &copied)
	}
	return postponements, nil
}

// Decide implements the PostponementStore interface. The pending check
// and the write happen under one lock acquisition: exactly one of two
// racing callers wins.
func (m *MockPostponementStore) Decide(
	ctx context.Context,
	id uuid.UUID,
	outcome domain.ApprovalStatus,
	decidedBy uuid.UUID,
	decidedAt time.Time,
) error {
	if m.DecideFn != nil {
		return m.DecideFn(ctx, id, outcome, decidedBy, decidedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, exists := m.Postponements[id]
	if !exists {
		return store.ErrPostponementNotFound
	}
	if p.ApprovalStatus.IsDecided() {
		return store.ErrPostponementDecided
	}
	p.ApprovalStatus = outcome
	p.DecidedBy = &decidedBy
	p.DecidedAt = &decidedAt
	return nil
}
