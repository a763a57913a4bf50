package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/domain"
)

type recordingAuditStore struct {
	entries []*domain.AuditEntry
	err     error
}

func (s *recordingAuditStore) Create(_ context.Context, entry *domain.AuditEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingAuditStore) List(_ context.Context, _, _ int) ([]*domain.AuditEntry, error) {
	return s.entries, nil
}

func newTestAuditHandler(auditStore *recordingAuditStore) *AuditLogHandler {
	return NewAuditLogHandler(auditStore, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleEventPersistsEntry(t *testing.T) {
	t.Parallel()

	auditStore := &recordingAuditStore{}
	handler := newTestAuditHandler(auditStore)

	actorID := uuid.New()
	taskID := uuid.New().String()
	event := NewAuditEvent(actorID, ActionExecuteTask, "pm_task", taskID)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	require.Len(t, auditStore.entries, 1)

	entry := auditStore.entries[0]
	assert.Equal(t, actorID, entry.UserID)
	assert.Equal(t, ActionExecuteTask, entry.Action)
	assert.Equal(t, "pm_task", entry.Entity)
	assert.Equal(t, taskID, entry.EntityID)
	assert.True(t, entry.CreatedAt.Equal(event.OccurredAt))
}

func TestHandleEventRejectsUnbuildableEvent(t *testing.T) {
	t.Parallel()

	auditStore := &recordingAuditStore{}
	handler := newTestAuditHandler(auditStore)

	event := &AuditEvent{
		ID:         uuid.New(),
		ActorID:    uuid.New(),
		Action:     "",
		Entity:     "pm_task",
		OccurredAt: time.Now().UTC(),
	}

	err := handler.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrEmptyAuditAction)
	assert.Empty(t, auditStore.entries)
}

func TestHandleEventPropagatesStoreError(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("insert failed")
	auditStore := &recordingAuditStore{err: storeErr}
	handler := newTestAuditHandler(auditStore)

	event := NewAuditEvent(uuid.New(), ActionLogin, "user", uuid.New().String())

	err := handler.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, storeErr)
}
