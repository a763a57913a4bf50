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

// taskColumns is the canonical select list for pm_tasks rows.
const taskColumns = `id, title, description, site_id, equipment_id, assigned_to,
		planned_date, status, priority, created_by, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
// It returns a store bound to the given transaction; the caller owns
// commit and rollback.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the referenced site, equipment or
// users do not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO pm_tasks (id, title, description, site_id, equipment_id, assigned_to,
			planned_date, status, priority, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.SiteID,
		task.EquipmentID,
		task.AssigneeID,
		task.PlannedDate,
		task.Status,
		task.Priority,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("site_id", task.SiteID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("site_id", task.SiteID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM pm_tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
// Filter fields with zero values are skipped. Returns an empty slice
// when nothing matches.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	limit, offset int,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	query := `SELECT ` + taskColumns + ` FROM pm_tasks`
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	if filter.SiteID != uuid.Nil {
		args = append(args, filter.SiteID)
		query += clausePrefix(len(args)-1) + fmt.Sprintf("site_id = $%d", len(args))
	}
	if filter.AssigneeID != uuid.Nil {
		args = append(args, filter.AssigneeID)
		query += clausePrefix(len(args)-1) + fmt.Sprintf("assigned_to = $%d", len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY planned_date DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectTasks(rows, log)
}

// ListOverdue implements store.TaskStore.ListOverdue
// It returns tasks still open whose planned date has passed the given
// time, used by the alert sweep.
func (s *PostgresTaskStore) ListOverdue(ctx context.Context, before time.Time) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM pm_tasks
		WHERE planned_date < $1 AND status IN ('pending', 'in_progress')
		ORDER BY planned_date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, before)
	if err != nil {
		log.Error("failed to query overdue tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectTasks(rows, log)
}

// Stats implements store.TaskStore.Stats
func (s *PostgresTaskStore) Stats(ctx context.Context) (*domain.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			COUNT(*) AS total_tasks,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_tasks,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress_tasks,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_tasks,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled_tasks,
			COUNT(*) FILTER (WHERE planned_date::date < CURRENT_DATE AND status != 'completed') AS overdue_tasks,
			COUNT(*) FILTER (WHERE planned_date::date = CURRENT_DATE AND status != 'completed') AS due_today
		FROM pm_tasks
	`

	var stats domain.TaskStats
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalTasks,
		&stats.PendingTasks,
		&stats.InProgressTasks,
		&stats.CompletedTasks,
		&stats.CancelledTasks,
		&stats.OverdueTasks,
		&stats.DueToday,
	)
	if err != nil {
		log.Error("failed to query task stats", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &stats, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE pm_tasks
		SET title = $1, description = $2, site_id = $3, equipment_id = $4, assigned_to = $5,
			planned_date = $6, status = $7, priority = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.SiteID,
		task.EquipmentID,
		task.AssigneeID,
		task.PlannedDate,
		task.Status,
		task.Priority,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM pm_tasks WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// Complete implements store.TaskStore.Complete
// The status check and the write are a single UPDATE, so two concurrent
// completions resolve to one winner; the loser sees ErrTaskFinished.
func (s *PostgresTaskStore) Complete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE pm_tasks
		SET status = 'completed', updated_at = $1
		WHERE id = $2 AND status IN ('pending', 'in_progress')
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to complete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		// Either the task is missing or it is already terminal. Look again
		// to report the right error.
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		log.Debug("task already finished", slog.String("task_id", id.String()))
		return store.ErrTaskFinished
	}

	log.Info("task completed", slog.String("task_id", id.String()))
	return nil
}

// UpdatePlannedDate implements store.TaskStore.UpdatePlannedDate
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) UpdatePlannedDate(
	ctx context.Context,
	id uuid.UUID,
	plannedDate time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE pm_tasks
		SET planned_date = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, plannedDate, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update planned date",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for planned date update", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task planned date updated",
		slog.String("task_id", id.String()),
		slog.Time("planned_date", plannedDate))
	return nil
}

// scanTask maps one pm_tasks row onto a domain.Task.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var equipmentID, assigneeID uuid.NullUUID
	var status, priority string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.SiteID,
		&equipmentID,
		&assigneeID,
		&task.PlannedDate,
		&status,
		&priority,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	if equipmentID.Valid {
		task.EquipmentID = &equipmentID.UUID
	}
	if assigneeID.Valid {
		task.AssigneeID = &assigneeID.UUID
	}
	task.Status = domain.TaskStatus(status)
	task.Priority = domain.Priority(priority)

	return &task, nil
}

// collectTasks drains rows into a slice, returning an empty slice rather
// than nil when nothing matched.
func collectTasks(rows *sql.Rows, log *slog.Logger) ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning task rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return tasks, nil
}

// clausePrefix joins filter conditions: the first gets WHERE, the rest AND.
func clausePrefix(priorArgs int) string {
	if priorArgs == 0 {
		return " WHERE "
	}
	return " AND "
}
