package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/store"
)

// MockAlertStore implements store.AlertStore for testing
type MockAlertStore struct {
	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, alert *domain.Alert) error
	ListByUserFn    func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Alert, error)
	MarkReadFn      func(ctx context.Context, id uuid.UUID) error
	MarkAllReadFn   func(ctx context.Context, userID uuid.UUID) (int64, error)
	ExistsForTaskFn func(ctx context.Context, taskID uuid.UUID, alertType domain.AlertType) (bool, error)

	mu     sync.Mutex
	Alerts []*domain.Alert
}

// Ensure MockAlertStore implements store.AlertStore
var _ store.AlertStore = (*MockAlertStore)(nil)

// NewMockAlertStore creates a new mock store with initialized defaults
func NewMockAlertStore() *MockAlertStore {
	return &MockAlertStore{}
}

// Create implements the AlertStore interface
func (m *MockAlertStore) Create(ctx context.Context, alert *domain.Alert) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, alert)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, alert)
	return nil
}

// ListByUser implements the AlertStore interface
func (m *MockAlertStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Alert, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	alerts := []*domain.Alert{}
	for _, alert := range m.Alerts {
		if alert.UserID == userID {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

// MarkRead implements the AlertStore interface
func (m *MockAlertStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range m.Alerts {
		if alert.ID == id {
			alert.IsRead = true
			return nil
		}
	}
	return store.ErrAlertNotFound
}

// MarkAllRead implements the AlertStore interface
func (m *MockAlertStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.MarkAllReadFn != nil {
		return m.MarkAllReadFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var marked int64
	for _, alert := range m.Alerts {
		if alert.UserID == userID && !alert.IsRead {
			alert.IsRead = true
			marked++
		}
	}
	return marked, nil
}

// ExistsForTask implements the AlertStore interface
func (m *MockAlertStore) ExistsForTask(
	ctx context.Context,
	taskID uuid.UUID,
	alertType domain.AlertType,
) (bool, error) {
	if m.ExistsForTaskFn != nil {
		return m.ExistsForTaskFn(ctx, taskID, alertType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range m.Alerts {
		if alert.TaskID != nil && *alert.TaskID == taskID && alert.Type == alertType {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of stored alerts.
func (m *MockAlertStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Alerts)
}

// MockAuditStore implements store.AuditStore for testing
type MockAuditStore struct {
	// Function fields for customizable behavior
	CreateFn func(ctx context.Context, entry *domain.AuditEntry) error
	ListFn   func(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error)

	mu      sync.Mutex
	Entries []*domain.AuditEntry
}

// Ensure MockAuditStore implements store.AuditStore
var _ store.AuditStore = (*MockAuditStore)(nil)

// NewMockAuditStore creates a new mock store with initialized defaults
func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{}
}

// Create implements the AuditStore interface
func (m *MockAuditStore) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

// List implements the AuditStore interface
func (m *MockAuditStore) List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]*domain.AuditEntry, len(m.Entries))
	copy(entries, m.Entries)
	return entries, nil
}
