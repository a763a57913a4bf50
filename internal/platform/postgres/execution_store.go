package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/store"
)

// executionColumns is the canonical select list for task_executions rows.
const executionColumns = `id, pm_task_id, executed_by, execution_date, latitude, longitude,
		comment, synced, created_at`

// PostgresExecutionStore implements the store.ExecutionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresExecutionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExecutionStore creates a new PostgreSQL implementation of the
// ExecutionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresExecutionStore(db store.DBTX, logger *slog.Logger) *PostgresExecutionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresExecutionStore{
		db:     db,
		logger: logger.With(slog.String("component", "execution_store")),
	}
}

// Ensure PostgresExecutionStore implements store.ExecutionStore interface
var _ store.ExecutionStore = (*PostgresExecutionStore)(nil)

// WithTx implements store.ExecutionStore.WithTx
func (s *PostgresExecutionStore) WithTx(tx *sql.Tx) store.ExecutionStore {
	return &PostgresExecutionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ExecutionStore.Create
// Returns store.ErrInvalidEntity if the referenced task or executor does
// not exist.
func (s *PostgresExecutionStore) Create(ctx context.Context, execution *domain.Execution) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := execution.Validate(); err != nil {
		log.Warn("execution validation failed during create",
			slog.String("error", err.Error()),
			slog.String("execution_id", execution.ID.String()))
		return err
	}

	query := `
		INSERT INTO task_executions (id, pm_task_id, executed_by, execution_date,
			latitude, longitude, comment, synced, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		execution.ID,
		execution.TaskID,
		execution.ExecutedBy,
		execution.ExecutedAt,
		execution.Latitude,
		execution.Longitude,
		execution.Comment,
		execution.Synced,
		execution.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create execution",
			slog.String("error", err.Error()),
			slog.String("execution_id", execution.ID.String()),
			slog.String("task_id", execution.TaskID.String()))
		return MapError(err)
	}

	log.Info("execution recorded",
		slog.String("execution_id", execution.ID.String()),
		slog.String("task_id", execution.TaskID.String()))
	return nil
}

// GetByID implements store.ExecutionStore.GetByID
// Returns store.ErrExecutionNotFound if the execution does not exist.
func (s *PostgresExecutionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + executionColumns + ` FROM task_executions WHERE id = $1`

	execution, err := scanExecution(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("execution not found", slog.String("execution_id", id.String()))
			return nil, store.ErrExecutionNotFound
		}
		log.Error("failed to get execution by ID",
			slog.String("error", err.Error()),
			slog.String("execution_id", id.String()))
		return nil, MapError(err)
	}

	return execution, nil
}

// List implements store.ExecutionStore.List
// Filter fields with zero values are skipped.
func (s *PostgresExecutionStore) List(
	ctx context.Context,
	filter store.ExecutionFilter,
	limit, offset int,
) ([]*domain.Execution, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	query := `SELECT ` + executionColumns + ` FROM task_executions`
	args := []any{}

	if filter.TaskID != uuid.Nil {
		args = append(args, filter.TaskID)
		query += fmt.Sprintf(" WHERE pm_task_id = $%d", len(args))
	}
	if filter.ExecutedBy != uuid.Nil {
		args = append(args, filter.ExecutedBy)
		query += clausePrefix(len(args)-1) + fmt.Sprintf("executed_by = $%d", len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY execution_date DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query executions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectExecutions(rows, log)
}

// ListByTask implements store.ExecutionStore.ListByTask
func (s *PostgresExecutionStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Execution, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + executionColumns + `
		FROM task_executions
		WHERE pm_task_id = $1
		ORDER BY execution_date DESC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query executions by task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectExecutions(rows, log)
}

// scanExecution maps one task_executions row onto a domain.Execution.
func scanExecution(row rowScanner) (*domain.Execution, error) {
	var execution domain.Execution
	var latitude, longitude sql.NullFloat64
	var comment sql.NullString

	err := row.Scan(
		&execution.ID,
		&execution.TaskID,
		&execution.ExecutedBy,
		&execution.ExecutedAt,
		&latitude,
		&longitude,
		&comment,
		&execution.Synced,
		&execution.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if latitude.Valid {
		execution.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		execution.Longitude = &longitude.Float64
	}
	execution.Comment = comment.String

	return &execution, nil
}

// collectExecutions drains rows into a slice, returning an empty slice
// rather than nil when nothing matched.
func collectExecutions(rows *sql.Rows, log *slog.Logger) ([]*domain.Execution, error) {
	executions := []*domain.Execution{}
	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			log.Error("failed to scan execution row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning execution rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return executions, nil
}
