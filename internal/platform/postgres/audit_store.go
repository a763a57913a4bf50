package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/store"
)

// PostgresAuditStore implements the store.AuditStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAuditStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditStore creates a new PostgreSQL implementation of the
// AuditStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAuditStore(db store.DBTX, logger *slog.Logger) *PostgresAuditStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAuditStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_store")),
	}
}

// Ensure PostgresAuditStore implements store.AuditStore interface
var _ store.AuditStore = (*PostgresAuditStore)(nil)

// Create implements store.AuditStore.Create
func (s *PostgresAuditStore) Create(ctx context.Context, entry *domain.AuditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("audit entry validation failed",
			slog.String("error", err.Error()),
			slog.String("audit_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO audit_logs (id, user_id, action, entity, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create audit entry",
			slog.String("error", err.Error()),
			slog.String("audit_id", entry.ID.String()),
			slog.String("action", entry.Action))
		return MapError(err)
	}

	return nil
}

// List implements store.AuditStore.List
func (s *PostgresAuditStore) List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	query := `
		SELECT id, user_id, action, entity, entity_id, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to query audit entries", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	entries := []*domain.AuditEntry{}
	for rows.Next() {
		var entry domain.AuditEntry
		var entityID sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Entity,
			&entityID,
			&entry.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan audit row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		entry.EntityID = entityID.String
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning audit rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return entries, nil
}
