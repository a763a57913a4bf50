// Package postponement implements the approval workflow for moving a
// task's planned date: technicians request, supervisors decide, and an
// approval rewrites the task's schedule atomically with the decision.
package postponement

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/store"
)

// Service coordinates postponement requests and decisions across the
// postponement and task stores.
type Service struct {
	txRunner          store.TxRunner
	taskStore         store.TaskStore
	postponementStore store.PostponementStore
	emitter           events.EventEmitter
	logger            *slog.Logger

	// Injectable for testing
	timeFunc func() time.Time
}

// NewService creates a postponement service.
// If logger is nil, a default logger will be used.
func NewService(
	txRunner store.TxRunner,
	taskStore store.TaskStore,
	postponementStore store.PostponementStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		txRunner:          txRunner,
		taskStore:         taskStore,
		postponementStore: postponementStore,
		emitter:           emitter,
		logger:            logger.With(slog.String("component", "postponement_service")),
		timeFunc:          time.Now,
	}
}

// Request creates a pending postponement for the task. Multiple pending
// requests for the same task may coexist; each is decided independently.
//
// Returns store.ErrTaskNotFound if the task does not exist and a domain
// validation error if the new date or justification is missing.
func (s *Service) Request(
	ctx context.Context,
	taskID, requesterID uuid.UUID,
	newPlannedDate time.Time,
	justification string,
) (*domain.Postponement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.taskStore.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	p, err := domain.NewPostponement(taskID, requesterID, newPlannedDate, justification)
	if err != nil {
		return nil, err
	}

	if err := s.postponementStore.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info("postponement requested",
		slog.String("postponement_id", p.ID.String()),
		slog.String("task_id", taskID.String()),
		slog.String("requested_by", requesterID.String()))

	s.emit(ctx, events.NewAuditEvent(
		requesterID, events.ActionRequestPostponement, "task_postponement", p.ID.String()))

	return p, nil
}

// Decide approves or rejects a pending postponement. An approval also
// moves the task's planned date to the requested one; both writes commit
// in the same transaction. A rejection leaves the task untouched.
//
// Returns store.ErrPostponementNotFound if the request does not exist
// and store.ErrPostponementDecided if it was already decided, including
// when a concurrent decision won the race.
func (s *Service) Decide(
	ctx context.Context,
	id, deciderID uuid.UUID,
	outcome domain.ApprovalStatus,
) (*domain.Postponement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !outcome.IsDecided() {
		return nil, domain.ErrInvalidApprovalStatus
	}

	p, err := s.postponementStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	decidedAt := s.timeFunc().UTC()

	err = s.txRunner.RunTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// The conditional update is the guard: only the first decision
		// moves the status off pending, so a racing decision rolls back
		// before touching the task.
		if err := s.postponementStore.WithTx(tx).Decide(ctx, id, outcome, deciderID, decidedAt); err != nil {
			return err
		}
		if outcome == domain.ApprovalStatusApproved {
			return s.taskStore.WithTx(tx).UpdatePlannedDate(ctx, p.TaskID, p.NewPlannedDate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.ApprovalStatus = outcome
	p.DecidedBy = &deciderID
	p.DecidedAt = &decidedAt

	log.Info("postponement decided",
		slog.String("postponement_id", id.String()),
		slog.String("outcome", string(outcome)),
		slog.String("decided_by", deciderID.String()))

	s.emit(ctx, events.NewAuditEvent(
		deciderID, events.ActionDecidePostponement, "task_postponement", id.String()))

	return p, nil
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
