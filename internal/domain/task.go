package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus identifies where a maintenance task sits in its lifecycle.
//
// The lifecycle only ever moves forward: pending or in_progress tasks may
// become completed (via a recorded execution) or cancelled (via a direct
// edit); completed and cancelled are terminal.
type TaskStatus string

// Known task statuses.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether the status is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is defined from the status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Priority ranks how urgent a maintenance task is.
type Priority string

// Known task priorities.
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid reports whether the priority is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Common task validation errors.
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrEmptyTaskSite    = errors.New("task site cannot be empty")
	ErrZeroPlannedDate  = errors.New("planned date cannot be zero")
	ErrEmptyTaskCreator = errors.New("task creator cannot be empty")
)

// Task is a scheduled preventive-maintenance task at a site, optionally
// against a specific piece of equipment and assigned to a technician.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	SiteID      uuid.UUID  `json:"site_id"`
	EquipmentID *uuid.UUID `json:"equipment_id,omitempty"`
	AssigneeID  *uuid.UUID `json:"assigned_to,omitempty"`
	PlannedDate time.Time  `json:"planned_date"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a pending Task with a fresh ID and timestamps.
func NewTask(
	title string,
	siteID uuid.UUID,
	plannedDate time.Time,
	priority Priority,
	createdBy uuid.UUID,
) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		SiteID:      siteID,
		PlannedDate: plannedDate,
		Status:      TaskStatusPending,
		Priority:    priority,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the task's fields are acceptable for storage.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if t.SiteID == uuid.Nil {
		return ErrEmptyTaskSite
	}
	if t.PlannedDate.IsZero() {
		return ErrZeroPlannedDate
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.CreatedBy == uuid.Nil {
		return ErrEmptyTaskCreator
	}
	return nil
}

// CanComplete reports whether recording an execution may move the task
// to completed. Only pending and in_progress tasks qualify.
func (t *Task) CanComplete() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}

// TaskStats is the dashboard aggregate over all maintenance tasks.
// Overdue and due-today counts exclude completed tasks.
type TaskStats struct {
	TotalTasks      int `json:"total_tasks"`
	PendingTasks    int `json:"pending_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	CancelledTasks  int `json:"cancelled_tasks"`
	OverdueTasks    int `json:"overdue_tasks"`
	DueToday        int `json:"due_today"`
}
