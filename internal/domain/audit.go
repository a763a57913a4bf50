package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common audit validation errors.
var (
	ErrEmptyAuditID     = errors.New("audit entry ID cannot be empty")
	ErrEmptyAuditAction = errors.New("audit action cannot be empty")
	ErrEmptyAuditEntity = errors.New("audit entity cannot be empty")
)

// AuditEntry is an append-only record of a mutation performed through the
// API: who did what to which entity.
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAuditEntry creates an AuditEntry with a fresh ID.
func NewAuditEntry(userID uuid.UUID, action, entity, entityID string) (*AuditEntry, error) {
	entry := &AuditEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		CreatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks that the audit entry's fields are acceptable for storage.
func (e *AuditEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyAuditID
	}
	if e.Action == "" {
		return ErrEmptyAuditAction
	}
	if e.Entity == "" {
		return ErrEmptyAuditEntity
	}
	return nil
}
