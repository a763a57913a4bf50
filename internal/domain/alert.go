package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AlertType identifies what an alert notifies the user about.
type AlertType string

// Known alert types.
const (
	AlertTypeTaskDue             AlertType = "task_due"
	AlertTypeTaskOverdue         AlertType = "task_overdue"
	AlertTypePostponementPending AlertType = "postponement_pending"
)

// IsValid reports whether the alert type is one of the known types.
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeTaskDue, AlertTypeTaskOverdue, AlertTypePostponementPending:
		return true
	default:
		return false
	}
}

// Common alert validation errors.
var (
	ErrEmptyAlertID     = errors.New("alert ID cannot be empty")
	ErrEmptyAlertUser   = errors.New("alert user cannot be empty")
	ErrInvalidAlertType = errors.New("invalid alert type")
)

// Alert is an in-app notification tied to a maintenance task.
type Alert struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TaskID    *uuid.UUID `json:"pm_task_id,omitempty"`
	Type      AlertType  `json:"type"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewAlert creates an unread Alert with a fresh ID.
func NewAlert(userID uuid.UUID, taskID *uuid.UUID, alertType AlertType) (*Alert, error) {
	alert := &Alert{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    taskID,
		Type:      alertType,
		CreatedAt: time.Now().UTC(),
	}

	if err := alert.Validate(); err != nil {
		return nil, err
	}

	return alert, nil
}

// Validate checks that the alert's fields are acceptable for storage.
func (a *Alert) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAlertID
	}
	if a.UserID == uuid.Nil {
		return ErrEmptyAlertUser
	}
	if !a.Type.IsValid() {
		return ErrInvalidAlertType
	}
	return nil
}
