// Package execution implements the task lifecycle: recording that a
// technician carried out a maintenance task and moving the task to
// completed in the same transaction.
package execution

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/store"
)

// RecordInput carries the optional fields of an execute call.
type RecordInput struct {
	Latitude  *float64
	Longitude *float64
	Comment   string
	Synced    *bool
}

// Service coordinates execution recording across the task and execution
// stores.
type Service struct {
	txRunner       store.TxRunner
	taskStore      store.TaskStore
	executionStore store.ExecutionStore
	emitter        events.EventEmitter
	logger         *slog.Logger
}

// NewService creates an execution service.
// If logger is nil, a default logger will be used.
func NewService(
	txRunner store.TxRunner,
	taskStore store.TaskStore,
	executionStore store.ExecutionStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		txRunner:       txRunner,
		taskStore:      taskStore,
		executionStore: executionStore,
		emitter:        emitter,
		logger:         logger.With(slog.String("component", "execution_service")),
	}
}

// RecordExecution records that executorID carried out the task and marks
// the task completed. The execution insert and the status update commit
// together or not at all.
//
// Returns store.ErrTaskNotFound if the task does not exist and
// store.ErrTaskFinished if it is already completed or cancelled,
// including when a concurrent execution finished it first.
func (s *Service) RecordExecution(
	ctx context.Context,
	taskID, executorID uuid.UUID,
	input RecordInput,
) (*domain.Execution, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	execution, err := domain.NewExecution(taskID, executorID)
	if err != nil {
		return nil, err
	}
	execution.Latitude = input.Latitude
	execution.Longitude = input.Longitude
	execution.Comment = input.Comment
	if input.Synced != nil {
		execution.Synced = *input.Synced
	}
	if err := execution.Validate(); err != nil {
		return nil, err
	}

	err = s.txRunner.RunTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// The conditional status update is the guard: it only succeeds
		// while the task is still open, so the race loser rolls back
		// without leaving an orphan execution row.
		if err := s.taskStore.WithTx(tx).Complete(ctx, taskID); err != nil {
			return err
		}
		return s.executionStore.WithTx(tx).Create(ctx, execution)
	})
	if err != nil {
		return nil, err
	}

	log.Info("execution recorded",
		slog.String("task_id", taskID.String()),
		slog.String("execution_id", execution.ID.String()),
		slog.String("executed_by", executorID.String()))

	s.emit(ctx, events.NewAuditEvent(
		executorID, events.ActionExecuteTask, "pm_task", taskID.String()))

	return execution, nil
}

// History returns the full execution history of a task, newest first.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *Service) History(ctx context.Context, taskID uuid.UUID) ([]*domain.Execution, error) {
	if _, err := s.taskStore.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.executionStore.ListByTask(ctx, taskID)
}

// emit publishes an audit event. Failures are logged, never returned;
// the mutation has already committed.
func (s *Service) emit(ctx context.Context, event *events.AuditEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit audit event",
			slog.String("error", err.Error()),
			slog.String("action", event.Action))
	}
}
