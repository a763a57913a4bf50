package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/redact"
	"github.com/efme/efme-api/internal/service/auth"
	"github.com/efme/efme-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	emitter          events.EventEmitter
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// If log is nil, a default logger will be used.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	emitter events.EventEmitter,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		emitter:          emitter,
		logger:           log.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /api/login.
//
// A missing account and a wrong password produce the same 401 response
// so the endpoint cannot be used to probe which emails are registered.
// Deactivated accounts are rejected with 403 even on a correct password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Invalid email or password", auth.ErrInvalidCredentials,
				shared.WithElevatedLogLevel())
			return
		}
		log.Error("failed to get user by email", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Invalid email or password", auth.ErrInvalidCredentials,
			shared.WithElevatedLogLevel())
		return
	}

	if !user.IsActive {
		shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
			"Account is inactive", auth.ErrAccountInactive)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user)
	if err != nil {
		log.Error("failed to generate token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	h.emitAudit(r, events.NewAuditEvent(user.ID, events.ActionLogin, "user", user.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token: token,
		User: UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// emitAudit publishes an audit event. Failures are logged, never surfaced
// to the client.
func (h *AuthHandler) emitAudit(r *http.Request, event *events.AuditEvent) {
	if h.emitter == nil {
		return
	}
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		h.logger.Warn("failed to emit audit event",
			slog.String("action", event.Action),
			slog.String("error", redact.Error(err)))
	}
}
