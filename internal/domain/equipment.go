package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common equipment validation errors.
var (
	ErrEmptyEquipmentID   = errors.New("equipment ID cannot be empty")
	ErrEmptyEquipmentSite = errors.New("equipment site cannot be empty")
	ErrEmptyEquipmentName = errors.New("equipment name cannot be empty")
)

// Equipment is a maintainable asset installed at a site.
type Equipment struct {
	ID        uuid.UUID `json:"id"`
	SiteID    uuid.UUID `json:"site_id"`
	Name      string    `json:"name"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEquipment creates an Equipment with a fresh ID.
func NewEquipment(siteID uuid.UUID, name, reference string) (*Equipment, error) {
	eq := &Equipment{
		ID:        uuid.New(),
		SiteID:    siteID,
		Name:      name,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}

	if err := eq.Validate(); err != nil {
		return nil, err
	}

	return eq, nil
}

// Validate checks that the equipment's fields are acceptable for storage.
func (e *Equipment) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEquipmentID
	}
	if e.SiteID == uuid.Nil {
		return ErrEmptyEquipmentSite
	}
	if e.Name == "" {
		return ErrEmptyEquipmentName
	}
	return nil
}
