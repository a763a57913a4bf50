package api

import (
	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/domain"
)

// Common request/response structures

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	// Token is the bearer token used for API authorization
	Token string `json:"token"`

	// User is a summary of the authenticated account
	User UserSummary `json:"user"`
}

// UserSummary is the subset of a user account exposed in auth responses.
type UserSummary struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// CreateUserRequest defines the payload for creating a user account.
type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin manager technician user"`
}

// UpdateUserRequest defines the payload for updating a user account.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"      validate:"omitempty,min=3,max=100"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	Password *string `json:"password"  validate:"omitempty,min=8,max=72"`
	Role     *string `json:"role"      validate:"omitempty,oneof=admin manager technician user"`
	IsActive *bool   `json:"is_active"`
}

// CreateSiteRequest defines the payload for creating a site.
type CreateSiteRequest struct {
	Name         string   `json:"name"          validate:"required,min=1,max=200"`
	Code         string   `json:"code_site"     validate:"required,min=1,max=50"`
	Latitude     *float64 `json:"latitude"      validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude"     validate:"omitempty,longitude"`
	RadiusMeters int      `json:"radius_meters" validate:"omitempty,min=0"`
}

// UpdateSiteRequest defines the payload for updating a site.
type UpdateSiteRequest struct {
	Name         *string  `json:"name"          validate:"omitempty,min=1,max=200"`
	Code         *string  `json:"code_site"     validate:"omitempty,min=1,max=50"`
	Latitude     *float64 `json:"latitude"      validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude"     validate:"omitempty,longitude"`
	RadiusMeters *int     `json:"radius_meters" validate:"omitempty,min=0"`
}

// CreateEquipmentRequest defines the payload for registering equipment.
type CreateEquipmentRequest struct {
	SiteID    uuid.UUID `json:"site_id"   validate:"required"`
	Name      string    `json:"name"      validate:"required,min=1,max=200"`
	Reference string    `json:"reference" validate:"omitempty,max=100"`
}

// UpdateEquipmentRequest defines the payload for updating equipment.
type UpdateEquipmentRequest struct {
	Name      *string `json:"name"      validate:"omitempty,min=1,max=200"`
	Reference *string `json:"reference" validate:"omitempty,max=100"`
}

// CreateTaskRequest defines the payload for creating a maintenance task.
type CreateTaskRequest struct {
	Title       string      `json:"title"        validate:"required,min=1,max=200"`
	Description string      `json:"description"  validate:"omitempty,max=2000"`
	SiteID      uuid.UUID   `json:"site_id"      validate:"required"`
	EquipmentID *uuid.UUID  `json:"equipment_id"`
	AssigneeID  *uuid.UUID  `json:"assigned_to"`
	PlannedDate shared.Date `json:"planned_date" validate:"required"`
	Priority    string      `json:"priority"     validate:"omitempty,oneof=low medium high critical"`
}

// UpdateTaskRequest defines the payload for the direct task edit.
// Nil fields are left unchanged. Status is the manual transition path;
// execution is the only other way a task reaches completed.
type UpdateTaskRequest struct {
	Title       *string      `json:"title"        validate:"omitempty,min=1,max=200"`
	Description *string      `json:"description"  validate:"omitempty,max=2000"`
	EquipmentID *uuid.UUID   `json:"equipment_id"`
	AssigneeID  *uuid.UUID   `json:"assigned_to"`
	PlannedDate *shared.Date `json:"planned_date"`
	Status      *string      `json:"status"       validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *string      `json:"priority"     validate:"omitempty,oneof=low medium high critical"`
}

// ExecuteTaskRequest defines the payload for recording a task execution.
// Latitude and longitude must be provided together or not at all.
type ExecuteTaskRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Comment   string   `json:"comment"   validate:"omitempty,max=2000"`
	Synced    *bool    `json:"synced"`
}

// PostponeTaskRequest defines the payload for requesting a postponement.
type PostponeTaskRequest struct {
	NewPlannedDate shared.Date `json:"new_planned_date" validate:"required"`
	Justification  string      `json:"justification"    validate:"required,min=1,max=2000"`
}
