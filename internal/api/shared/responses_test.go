package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         interface{}
		expectedBody string
	}{
		{
			name:         "successful response",
			status:       http.StatusOK,
			data:         map[string]interface{}{"message": "success"},
			expectedBody: `{"message":"success"}`,
		},
		{
			name:         "created response",
			status:       http.StatusCreated,
			data:         map[string]interface{}{"id": "abc"},
			expectedBody: `{"id":"abc"}`,
		},
		{
			name:         "nil response",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()

			RespondWithJSON(rec, req, tc.status, tc.data)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestRespondWithError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Task not found", resp.Error)
	assert.Equal(t, GetTraceID(req.Context()), resp.TraceID)
	// Code is log-only and must not appear in the serialized body
	assert.NotContains(t, rec.Body.String(), `"Code"`)
	assert.NotContains(t, rec.Body.String(), `"code"`)
}

func TestRespondWithErrorWithoutTraceID(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusBadRequest, "Invalid request")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.TraceID)
	assert.NotContains(t, rec.Body.String(), "trace_id", "Empty trace ID should be omitted")
}

func TestRespondWithErrorAndLogHidesInternalError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/test", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	rec := httptest.NewRecorder()

	internalErr := errors.New("pq: connection refused to db host 10.0.0.5")
	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Internal server error", internalErr)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Error)
	assert.NotContains(t, rec.Body.String(), "connection refused",
		"Raw error details must never reach the client")
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestRespondWithErrorAndLogOptions(t *testing.T) {
	// The option only changes log levels; the response must be identical.
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	RespondWithErrorAndLog(rec, req, http.StatusUnauthorized, "Invalid token", errors.New("signature mismatch"),
		WithElevatedLogLevel())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid token", resp.Error)
}
