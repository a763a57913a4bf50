package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus identifies where a postponement request sits in its
// approval workflow. A decision is terminal: once approved or rejected
// the status never changes again.
type ApprovalStatus string

// Known approval statuses.
const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// IsValid reports whether the status is one of the known statuses.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	default:
		return false
	}
}

// IsDecided reports whether the status is terminal.
func (s ApprovalStatus) IsDecided() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// Common postponement validation errors.
var (
	ErrEmptyPostponementID   = errors.New("postponement ID cannot be empty")
	ErrEmptyPostponementTask = errors.New("postponement task cannot be empty")
	ErrEmptyRequester        = errors.New("requester cannot be empty")
	ErrZeroNewPlannedDate    = errors.New("new planned date cannot be zero")
	ErrEmptyJustification    = errors.New("justification cannot be empty")
)

// Postponement is a request to move a task's planned date, subject to a
// supervisor's approval. An approved request is the only path, besides a
// direct task edit, that changes a task's planned date.
type Postponement struct {
	ID             uuid.UUID      `json:"id"`
	TaskID         uuid.UUID      `json:"task_id"`
	RequestedBy    uuid.UUID      `json:"requested_by"`
	RequestedAt    time.Time      `json:"requested_at"`
	NewPlannedDate time.Time      `json:"new_planned_date"`
	Justification  string         `json:"justification"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	DecidedBy      *uuid.UUID     `json:"approved_by,omitempty"`
	DecidedAt      *time.Time     `json:"approved_at,omitempty"`
}

// NewPostponement creates a pending Postponement with a fresh ID.
func NewPostponement(
	taskID, requestedBy uuid.UUID,
	newPlannedDate time.Time,
	justification string,
) (*Postponement, error) {
	p := &Postponement{
		ID:             uuid.New(),
		TaskID:         taskID,
		RequestedBy:    requestedBy,
		RequestedAt:    time.Now().UTC(),
		NewPlannedDate: newPlannedDate,
		Justification:  justification,
		ApprovalStatus: ApprovalStatusPending,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks that the postponement's fields are acceptable for storage.
func (p *Postponement) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPostponementID
	}
	if p.TaskID == uuid.Nil {
		return ErrEmptyPostponementTask
	}
	if p.RequestedBy == uuid.Nil {
		return ErrEmptyRequester
	}
	if p.NewPlannedDate.IsZero() {
		return ErrZeroNewPlannedDate
	}
	if p.Justification == "" {
		return ErrEmptyJustification
	}
	if !p.ApprovalStatus.IsValid() {
		return ErrInvalidApprovalStatus
	}
	return nil
}
