package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/service/auth"
	"github.com/efme/efme-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive account", auth.ErrAccountInactive, http.StatusForbidden},
		{"unauthorized operation", domain.ErrUnauthorized, http.StatusForbidden},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrPostponementNotFound), http.StatusNotFound},
		{"duplicate email", store.ErrEmailExists, http.StatusConflict},
		{"finished task", store.ErrTaskFinished, http.StatusConflict},
		{"decided postponement", store.ErrPostponementDecided, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"domain validation", domain.NewValidationError("title", "cannot be empty", domain.ErrValidation), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"postponement not found", store.ErrPostponementNotFound, "Postponement not found"},
		{"finished task", store.ErrTaskFinished, "Task is already completed or cancelled"},
		{"decided postponement", store.ErrPostponementDecided, "Postponement has already been decided"},
		{"duplicate email", store.ErrEmailExists, "Email already exists"},
		{"bad credentials", auth.ErrInvalidCredentials, "Invalid email or password"},
		{"inactive account", auth.ErrAccountInactive, "Account is inactive"},
		{"nil error", nil, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}

	t.Run("validation error includes field", func(t *testing.T) {
		err := domain.NewValidationError("justification", "cannot be empty", domain.ErrValidation)
		assert.Equal(t, "Invalid justification: cannot be empty", GetSafeErrorMessage(err))
	})

	t.Run("unknown error leaks nothing", func(t *testing.T) {
		msg := GetSafeErrorMessage(errors.New("pq: duplicate key on idx_users_email at 10.0.0.5"))
		assert.Equal(t, "An unexpected error occurred", msg)
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Run("extracts field and tag", func(t *testing.T) {
		err := errors.New(
			"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag")
		assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
	})
}
