package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common execution validation errors.
var (
	ErrEmptyExecutionID   = errors.New("execution ID cannot be empty")
	ErrEmptyExecutionTask = errors.New("execution task cannot be empty")
	ErrEmptyExecutor      = errors.New("executor cannot be empty")
	ErrPartialGeolocation = errors.New("latitude and longitude must be set together")
)

// Execution is the append-only record of a technician carrying out a
// maintenance task. It is created exactly once per execute call and is
// immutable thereafter.
type Execution struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	ExecutedBy uuid.UUID `json:"executed_by"`
	ExecutedAt time.Time `json:"executed_at"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	Synced     bool      `json:"synced"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewExecution creates an Execution with a fresh ID and the current time
// as both execution and creation timestamp. Synced defaults to true when
// the caller does not say otherwise; offline mobile clients submit false
// and flip it on a later sync.
func NewExecution(taskID, executedBy uuid.UUID) (*Execution, error) {
	now := time.Now().UTC()
	exec := &Execution{
		ID:         uuid.New(),
		TaskID:     taskID,
		ExecutedBy: executedBy,
		ExecutedAt: now,
		Synced:     true,
		CreatedAt:  now,
	}

	if err := exec.Validate(); err != nil {
		return nil, err
	}

	return exec, nil
}

// Validate checks that the execution's fields are acceptable for storage.
func (e *Execution) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyExecutionID
	}
	if e.TaskID == uuid.Nil {
		return ErrEmptyExecutionTask
	}
	if e.ExecutedBy == uuid.Nil {
		return ErrEmptyExecutor
	}
	if (e.Latitude == nil) != (e.Longitude == nil) {
		return ErrPartialGeolocation
	}
	return nil
}
