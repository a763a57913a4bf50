package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/store"
)

// postponementColumns is the canonical select list for task_postponements rows.
const postponementColumns = `id, pm_task_id, requested_by, requested_date, new_planned_date,
		justification, approval_status, approved_by, approved_at`

// PostgresPostponementStore implements the store.PostponementStore
// interface using a PostgreSQL database as the storage backend.
type PostgresPostponementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPostponementStore creates a new PostgreSQL implementation of
// the PostponementStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPostponementStore(db store.DBTX, logger *slog.Logger) *PostgresPostponementStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPostponementStore{
		db:     db,
		logger: logger.With(slog.String("component", "postponement_store")),
	}
}

// Ensure PostgresPostponementStore implements store.PostponementStore interface
var _ store.PostponementStore = (*PostgresPostponementStore)(nil)

// WithTx implements store.PostponementStore.WithTx
func (s *PostgresPostponementStore) WithTx(tx *sql.Tx) store.PostponementStore {
	return &PostgresPostponementStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.PostponementStore.Create
// Returns store.ErrInvalidEntity if the referenced task or requester does
// not exist.
func (s *PostgresPostponementStore) Create(ctx context.Context, p *domain.Postponement) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("postponement validation failed during create",
			slog.String("error", err.Error()),
			slog.String("postponement_id", p.ID.String()))
		return err
	}

	query := `
		INSERT INTO task_postponements (id, pm_task_id, requested_by, requested_date,
			new_planned_date, justification, approval_status, approved_by, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		p.ID,
		p.TaskID,
		p.RequestedBy,
		p.RequestedAt,
		p.NewPlannedDate,
		p.Justification,
		p.ApprovalStatus,
		p.DecidedBy,
		p.DecidedAt,
	)

	if err != nil {
		log.Error("failed to create postponement",
			slog.String("error", err.Error()),
			slog.String("postponement_id", p.ID.String()),
			slog.String("task_id", p.TaskID.String()))
		return MapError(err)
	}

	log.Info("postponement requested",
		slog.String("postponement_id", p.ID.String()),
		slog.String("task_id", p.TaskID.String()))
	return nil
}

// GetByID implements store.PostponementStore.GetByID
// Returns store.ErrPostponementNotFound if the request does not exist.
func (s *PostgresPostponementStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Postponement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + postponementColumns + ` FROM task_postponements WHERE id = $1`

	p, err := scanPostponement(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("postponement not found", slog.String("postponement_id", id.String()))
			return nil, store.ErrPostponementNotFound
		}
		log.Error("failed to get postponement by ID",
			slog.String("error", err.Error()),
			slog.String("postponement_id", id.String()))
		return nil, MapError(err)
	}

	return p, nil
}

// List implements store.PostponementStore.List
// Filter fields with zero values are skipped.
func (s *PostgresPostponementStore) List(
	ctx context.Context,
	filter store.PostponementFilter,
	limit, offset int,
) ([]*domain.Postponement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	query := `SELECT ` + postponementColumns + ` FROM task_postponements`
	args := []any{}

	if filter.TaskID != uuid.Nil {
		args = append(args, filter.TaskID)
		query += fmt.Sprintf(" WHERE pm_task_id = $%d", len(args))
	}
	if filter.ApprovalStatus != "" {
		args = append(args, filter.ApprovalStatus)
		query += clausePrefix(len(args)-1) + fmt.Sprintf("approval_status = $%d", len(args))
	}
	if filter.RequestedBy != uuid.Nil {
		args = append(args, filter.RequestedBy)
		query += clausePrefix(len(args)-1) + fmt.Sprintf("requested_by = $%d", len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY requested_date DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query postponements", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	postponements := []*domain.Postponement{}
	for rows.Next() {
		p, err := scanPostponement(rows)
		if err != nil {
			log.Error("failed to scan postponement row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		postponements = append(postponements, p)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning postponement rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return postponements, nil
}

// Decide implements store.PostponementStore.Decide
// The pending check and the write are a single UPDATE, so two concurrent
// decisions resolve to one winner; the loser sees ErrPostponementDecided.
func (s *PostgresPostponementStore) Decide(
	ctx context.Context,
	id uuid.UUID,
	outcome domain.ApprovalStatus,
	decidedBy uuid.UUID,
	decidedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !outcome.IsDecided() {
		return domain.ErrInvalidApprovalStatus
	}

	query := `
		UPDATE task_postponements
		SET approval_status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4 AND approval_status = 'pending'
	`

	result, err := s.db.ExecContext(ctx, query, outcome, decidedBy, decidedAt, id)
	if err != nil {
		log.Error("failed to decide postponement",
			slog.String("error", err.Error()),
			slog.String("postponement_id", id.String()),
			slog.String("outcome", string(outcome)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("postponement_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		// Either the request is missing or it has already been decided.
		// Look again to report the right error.
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		log.Debug("postponement already decided", slog.String("postponement_id", id.String()))
		return store.ErrPostponementDecided
	}

	log.Info("postponement decided",
		slog.String("postponement_id", id.String()),
		slog.String("outcome", string(outcome)),
		slog.String("decided_by", decidedBy.String()))
	return nil
}

// scanPostponement maps one task_postponements row onto a domain.Postponement.
func scanPostponement(row rowScanner) (*domain.Postponement, error) {
	var p domain.Postponement
	var status string
	var decidedBy uuid.NullUUID
	var decidedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.TaskID,
		&p.RequestedBy,
		&p.RequestedAt,
		&p.NewPlannedDate,
		&p.Justification,
		&status,
		&decidedBy,
		&decidedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ApprovalStatus = domain.ApprovalStatus(status)
	if decidedBy.Valid {
		p.DecidedBy = &decidedBy.UUID
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		p.DecidedAt = &t
	}

	return &p, nil
}
