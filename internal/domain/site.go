package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common site validation errors.
var (
	ErrEmptySiteID   = errors.New("site ID cannot be empty")
	ErrEmptySiteName = errors.New("site name cannot be empty")
	ErrEmptySiteCode = errors.New("site code cannot be empty")
)

// Site is an industrial location at which maintenance tasks run. The
// coordinates and radius describe the geofence mobile clients check
// execution geolocations against.
type Site struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code_site"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	RadiusMeters int       `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSite creates a Site with a fresh ID.
func NewSite(name, code string) (*Site, error) {
	site := &Site{
		ID:        uuid.New(),
		Name:      name,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}

	if err := site.Validate(); err != nil {
		return nil, err
	}

	return site, nil
}

// Validate checks that the site's fields are acceptable for storage.
func (s *Site) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySiteID
	}
	if s.Name == "" {
		return ErrEmptySiteName
	}
	if s.Code == "" {
		return ErrEmptySiteCode
	}
	return nil
}
