package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/store"
)

// PostgresAlertStore implements the store.AlertStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAlertStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAlertStore creates a new PostgreSQL implementation of the
// AlertStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAlertStore(db store.DBTX, logger *slog.Logger) *PostgresAlertStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAlertStore{
		db:     db,
		logger: logger.With(slog.String("component", "alert_store")),
	}
}

// Ensure PostgresAlertStore implements store.AlertStore interface
var _ store.AlertStore = (*PostgresAlertStore)(nil)

// Create implements store.AlertStore.Create
func (s *PostgresAlertStore) Create(ctx context.Context, alert *domain.Alert) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := alert.Validate(); err != nil {
		log.Warn("alert validation failed during create",
			slog.String("error", err.Error()),
			slog.String("alert_id", alert.ID.String()))
		return err
	}

	query := `
		INSERT INTO alerts (id, user_id, pm_task_id, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.UserID,
		alert.TaskID,
		alert.Type,
		alert.IsRead,
		alert.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create alert",
			slog.String("error", err.Error()),
			slog.String("alert_id", alert.ID.String()))
		return MapError(err)
	}

	log.Info("alert created",
		slog.String("alert_id", alert.ID.String()),
		slog.String("user_id", alert.UserID.String()),
		slog.String("type", string(alert.Type)))
	return nil
}

// ListByUser implements store.AlertStore.ListByUser
func (s *PostgresAlertStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Alert, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	query := `
		SELECT id, user_id, pm_task_id, type, is_read, created_at
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to query alerts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	alerts := []*domain.Alert{}
	for rows.Next() {
		var alert domain.Alert
		var taskID uuid.NullUUID
		var alertType string

		err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&taskID,
			&alertType,
			&alert.IsRead,
			&alert.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan alert row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		if taskID.Valid {
			alert.TaskID = &taskID.UUID
		}
		alert.Type = domain.AlertType(alertType)
		alerts = append(alerts, &alert)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning alert rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return alerts, nil
}

// MarkRead implements store.AlertStore.MarkRead
// Returns store.ErrAlertNotFound if the alert does not exist.
func (s *PostgresAlertStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE alerts SET is_read = TRUE WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to mark alert read",
			slog.String("error", err.Error()),
			slog.String("alert_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("alert_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("alert not found", slog.String("alert_id", id.String()))
		return store.ErrAlertNotFound
	}

	return nil
}

// MarkAllRead implements store.AlertStore.MarkAllRead
func (s *PostgresAlertStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE alerts SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to mark all alerts read",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	return rowsAffected, nil
}

// ExistsForTask implements store.AlertStore.ExistsForTask
func (s *PostgresAlertStore) ExistsForTask(
	ctx context.Context,
	taskID uuid.UUID,
	alertType domain.AlertType,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts WHERE pm_task_id = $1 AND type = $2
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, taskID, alertType).Scan(&exists)
	if err != nil {
		log.Error("failed to check alert existence",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("type", string(alertType)))
		return false, MapError(err)
	}

	return exists, nil
}
