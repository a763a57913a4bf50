package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
)

// SiteStore defines the interface for site persistence.
type SiteStore interface {
	// Create saves a new site to the store.
	Create(ctx context.Context, site *domain.Site) error

	// GetByID retrieves a site by its unique ID.
	// Returns ErrSiteNotFound if the site does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error)

	// List retrieves sites ordered by name.
	List(ctx context.Context, limit, offset int) ([]*domain.Site, error)

	// Update modifies an existing site.
	// Returns ErrSiteNotFound if the site does not exist.
	Update(ctx context.Context, site *domain.Site) error

	// Delete removes a site from the store by its ID.
	// Returns ErrSiteNotFound if the site does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// EquipmentStore defines the interface for equipment persistence.
type EquipmentStore interface {
	// Create saves a new piece of equipment to the store.
	Create(ctx context.Context, equipment *domain.Equipment) error

	// GetByID retrieves equipment by its unique ID.
	// Returns ErrEquipmentNotFound if the equipment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)

	// List retrieves equipment ordered by name.
	List(ctx context.Context, limit, offset int) ([]*domain.Equipment, error)

	// ListBySite retrieves all equipment installed at one site.
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]*domain.Equipment, error)

	// Update modifies existing equipment.
	// Returns ErrEquipmentNotFound if the equipment does not exist.
	Update(ctx context.Context, equipment *domain.Equipment) error

	// Delete removes equipment from the store by its ID.
	// Returns ErrEquipmentNotFound if the equipment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
