package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/api/shared"
	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/mocks"
)

func newAlertTestRouter(alertStore *mocks.MockAlertStore, identity shared.Identity) *chi.Mux {
	handler := NewAlertHandler(alertStore, nil)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithIdentity(r.Context(), identity)))
		})
	})
	router.Route("/api/alerts", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Put("/{id}/read", handler.MarkRead)
		r.Put("/mark-all-read", handler.MarkAllRead)
	})
	return router
}

func seedAlert(t *testing.T, alertStore *mocks.MockAlertStore, userID uuid.UUID) *domain.Alert {
	t.Helper()

	taskID := uuid.New()
	alert, err := domain.NewAlert(userID, &taskID, domain.AlertTypeTaskOverdue)
	require.NoError(t, err)
	require.NoError(t, alertStore.Create(context.Background(), alert))
	return alert
}

func TestAlertListScopedToCaller(t *testing.T) {
	alertStore := mocks.NewMockAlertStore()
	identity := shared.Identity{UserID: uuid.New(), Role: domain.RoleTechnician}
	router := newAlertTestRouter(alertStore, identity)

	seedAlert(t, alertStore, identity.UserID)
	seedAlert(t, alertStore, uuid.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []*domain.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, identity.UserID, alerts[0].UserID)
}

func TestAlertMarkRead(t *testing.T) {
	alertStore := mocks.NewMockAlertStore()
	identity := shared.Identity{UserID: uuid.New(), Role: domain.RoleTechnician}
	router := newAlertTestRouter(alertStore, identity)

	alert := seedAlert(t, alertStore, identity.UserID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPut, "/api/alerts/"+alert.ID.String()+"/read", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, alert.IsRead)
}

func TestAlertMarkReadNotFound(t *testing.T) {
	alertStore := mocks.NewMockAlertStore()
	identity := shared.Identity{UserID: uuid.New(), Role: domain.RoleTechnician}
	router := newAlertTestRouter(alertStore, identity)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPut, "/api/alerts/"+uuid.NewString()+"/read", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertMarkAllRead(t *testing.T) {
	alertStore := mocks.NewMockAlertStore()
	identity := shared.Identity{UserID: uuid.New(), Role: domain.RoleTechnician}
	router := newAlertTestRouter(alertStore, identity)

	seedAlert(t, alertStore, identity.UserID)
	seedAlert(t, alertStore, identity.UserID)
	other := seedAlert(t, alertStore, uuid.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/alerts/mark-all-read", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body["marked_count"])
	assert.False(t, other.IsRead, "other users' alerts stay unread")

	// Everything already read, nothing left to mark.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/alerts/mark-all-read", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(0), body["marked_count"])
}
