package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/store"
)

// MockSiteStore implements store.SiteStore for testing
type MockSiteStore struct {
	// Function fields for customizable behavior
	CreateFn  func(ctx context.Context, site *domain.Site) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Site, error)
	ListFn    func(ctx context.Context, limit, offset int) ([]*domain.Site, error)
	UpdateFn  func(ctx context.Context, site *domain.Site) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	Sites map[uuid.UUID]*domain.Site
}

// Ensure MockSiteStore implements store.SiteStore
var _ store.SiteStore = (*MockSiteStore)(nil)

// NewMockSiteStore creates a new mock store with initialized defaults
func NewMockSiteStore() *MockSiteStore {
	return &MockSiteStore{
		Sites: make(map[uuid.UUID]*domain.Site),
	}
}

// Create implements the SiteStore interface
func (m *MockSiteStore) Create(ctx context.Context, site *domain.Site) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, site)
	}
	m.Sites[site.ID] = site
	return nil
}

// GetByID implements the SiteStore interface
func (m *MockSiteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	site, exists := m.Sites[id]
	if !exists {
		return nil, store.ErrSiteNotFound
	}
	return site, nil
}

// List implements the SiteStore interface
func (m *MockSiteStore) List(ctx context.Context, limit, offset int) ([]*domain.Site, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}
	sites := []*domain.Site{}
	for _, site := range m.Sites {
		sites = append(sites, site)
	}
	return sites, nil
}

// Update implements the SiteStore interface
func (m *MockSiteStore) Update(ctx context.Context, site *domain.Site) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, site)
	}
	if _, exists := m.Sites[site.ID]; !exists {
		return store.ErrSiteNotFound
	}
	m.Sites[site.ID] = site
	return nil
}

// Delete implements the SiteStore interface
func (m *MockSiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if _, exists := m.Sites[id]; !exists {
		return store.ErrSiteNotFound
	}
	delete(m.Sites, id)
	return nil
}

// MockEquipmentStore implements store.EquipmentStore for testing
type MockEquipmentStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, equipment *domain.Equipment) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)
	ListFn       func(ctx context.Context, limit, offset int) ([]*domain.Equipment, error)
	ListBySiteFn func(ctx context.Context, siteID uuid.UUID) ([]*domain.Equipment, error)
	UpdateFn     func(ctx context.Context, equipment *domain.Equipment) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	Equipment map[uuid.UUID]*domain.Equipment
}

// Ensure MockEquipmentStore implements store.EquipmentStore
var _ store.EquipmentStore = (*MockEquipmentStore)(nil)

// NewMockEquipmentStore creates a new mock store with initialized defaults
func NewMockEquipmentStore() *MockEquipmentStore {
	return &MockEquipmentStore{
		Equipment: make(map[uuid.UUID]*domain.Equipment),
	}
}

// Create implements the EquipmentStore interface
func (m *MockEquipmentStore) Create(ctx context.Context, equipment *domain.Equipment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, equipment)
	}
	m.Equipment[equipment.ID] = equipment
	return nil
}

// GetByID implements the EquipmentStore interface
func (m *MockEquipmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	equipment, exists := m.Equipment[id]
	if !exists {
		return nil, store.ErrEquipmentNotFound
	}
	return equipment, nil
}

// List implements the EquipmentStore interface
func (m *MockEquipmentStore) List(ctx context.Context, limit, offset int) ([]*domain.Equipment, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}
	items := []*domain.Equipment{}
	for _, equipment := range m.Equipment {
		items = append(items, equipment)
	}
	return items, nil
}

// ListBySite implements the EquipmentStore interface
func (m *MockEquipmentStore) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*domain.Equipment, error) {
	if m.ListBySiteFn != nil {
		return m.ListBySiteFn(ctx, siteID)
	}
	items := []*domain.Equipment{}
	for _, equipment := range m.Equipment {
		if equipment.SiteID == siteID {
			items = append(items, equipment)
		}
	}
	return items, nil
}

// Update implements the EquipmentStore interface
func (m *MockEquipmentStore) Update(ctx context.Context, equipment *domain.Equipment) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, equipment)
	}
	if _, exists := m.Equipment[equipment.ID]; !exists {
		return store.ErrEquipmentNotFound
	}
	m.Equipment[equipment.ID] = equipment
	return nil
}

// Delete implements the EquipmentStore interface
func (m *MockEquipmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if _, exists := m.Equipment[id]; !exists {
		return store.ErrEquipmentNotFound
	}
	delete(m.Equipment, id)
	return nil
}
