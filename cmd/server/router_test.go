package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/config"
	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/mocks"
	"github.com/efme/efme-api/internal/service/auth"
	"github.com/efme/efme-api/internal/service/execution"
	"github.com/efme/efme-api/internal/service/postponement"
)

// newTestApplication wires the application over mock stores so router
// behavior can be exercised without a database.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	taskStore := mocks.NewMockTaskStore()
	executionStore := mocks.NewMockExecutionStore()
	postponementStore := mocks.NewMockPostponementStore()
	auditStore := mocks.NewMockAuditStore()
	txRunner := mocks.NewMockTxRunner()

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.NewAuditLogHandler(auditStore, log))

	jwtService := &mocks.MockJWTService{
		Claims: &auth.Claims{
			UserID: uuid.New(),
			Role:   domain.RoleAdmin,
		},
	}

	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 0, LogLevel: "error"},
		},
		logger:              log,
		userStore:           mocks.NewMockUserStore(),
		siteStore:           mocks.NewMockSiteStore(),
		equipmentStore:      mocks.NewMockEquipmentStore(),
		taskStore:           taskStore,
		executionStore:      executionStore,
		postponementStore:   postponementStore,
		alertStore:          mocks.NewMockAlertStore(),
		auditStore:          auditStore,
		jwtService:          jwtService,
		passwordVerifier:    &mocks.MockPasswordVerifier{},
		passwordHasher:      &mocks.MockPasswordHasher{},
		eventEmitter:        emitter,
		executionService:    execution.NewService(txRunner, taskStore, executionStore, emitter, log),
		postponementService: postponement.NewService(txRunner, taskStore, postponementStore, emitter, log),
	}
}

func TestRouterHealthEndpointIsPublic(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	paths := []string{
		"/api/tasks",
		"/api/users",
		"/api/sites",
		"/api/equipment",
		"/api/executions",
		"/api/postponements",
		"/api/alerts",
		"/api/audit-logs",
	}

	for _, path := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestRouterAcceptsBearerToken(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer some-token")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterLoginIsPublic(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	// No Authorization header; a 401 here would mean the route is
	// behind the auth middleware. Bad credentials still return 401
	// from the handler itself, so assert on the body message instead.
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "No token provided")
}
