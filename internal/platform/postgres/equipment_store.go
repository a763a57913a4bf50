package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/platform/logger"
	"github.com/efme/efme-api/internal/store"
)

// PostgresEquipmentStore implements the store.EquipmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEquipmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEquipmentStore creates a new PostgreSQL implementation of the
// EquipmentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresEquipmentStore(db store.DBTX, logger *slog.Logger) *PostgresEquipmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEquipmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "equipment_store")),
	}
}

// Ensure PostgresEquipmentStore implements store.EquipmentStore interface
var _ store.EquipmentStore = (*PostgresEquipmentStore)(nil)

// Create implements store.EquipmentStore.Create
// Returns store.ErrInvalidEntity if the referenced site does not exist.
func (s *PostgresEquipmentStore) Create(ctx context.Context, equipment *domain.Equipment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := equipment.Validate(); err != nil {
		log.Warn("equipment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("equipment_id", equipment.ID.String()))
		return err
	}

	query := `
		INSERT INTO equipment (id, site_id, name, reference, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		equipment.ID,
		equipment.SiteID,
		equipment.Name,
		equipment.Reference,
		equipment.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create equipment",
			slog.String("error", err.Error()),
			slog.String("equipment_id", equipment.ID.String()),
			slog.String("site_id", equipment.SiteID.String()))
		return MapError(err)
	}

	log.Info("equipment created successfully",
		slog.String("equipment_id", equipment.ID.String()),
		slog.String("site_id", equipment.SiteID.String()))
	return nil
}

// GetByID implements store.EquipmentStore.GetByID
// Returns store.ErrEquipmentNotFound if the equipment does not exist.
func (s *PostgresEquipmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, site_id, name, reference, created_at
		FROM equipment
		WHERE id = $1
	`

	equipment, err := scanEquipment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("equipment not found", slog.String("equipment_id", id.String()))
			return nil, store.ErrEquipmentNotFound
		}
		log.Error("failed to get equipment by ID",
			slog.String("error", err.Error()),
			slog.String("equipment_id", id.String()))
		return nil, MapError(err)
	}

	return equipment, nil
}

// List implements store.EquipmentStore.List
func (s *PostgresEquipmentStore) List(ctx context.Context, limit, offset int) ([]*domain.Equipment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	query := `
		SELECT id, site_id, name, reference, created_at
		FROM equipment
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to query equipment", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectEquipment(rows, log)
}

// ListBySite implements store.EquipmentStore.ListBySite
func (s *PostgresEquipmentStore) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*domain.Equipment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, site_id, name, reference, created_at
		FROM equipment
		WHERE site_id = $1
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, siteID)
	if err != nil {
		log.Error("failed to query equipment by site",
			slog.String("error", err.Error()),
			slog.String("site_id", siteID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectEquipment(rows, log)
}

// Update implements store.EquipmentStore.Update
// Returns store.ErrEquipmentNotFound if the equipment does not exist.
func (s *PostgresEquipmentStore) Update(ctx context.Context, equipment *domain.Equipment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := equipment.Validate(); err != nil {
		log.Warn("equipment validation failed during update",
			slog.String("error", err.Error()),
			slog.String("equipment_id", equipment.ID.String()))
		return err
	}

	query := `
		UPDATE equipment
		SET site_id = $1, name = $2, reference = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		equipment.SiteID,
		equipment.Name,
		equipment.Reference,
		equipment.ID,
	)

	if err != nil {
		log.Error("failed to update equipment",
			slog.String("error", err.Error()),
			slog.String("equipment_id", equipment.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("equipment_id", equipment.ID.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("equipment not found for update",
			slog.String("equipment_id", equipment.ID.String()))
		return store.ErrEquipmentNotFound
	}

	log.Info("equipment updated successfully",
		slog.String("equipment_id", equipment.ID.String()))
	return nil
}

// Delete implements store.EquipmentStore.Delete
// Returns store.ErrEquipmentNotFound if the equipment does not exist.
func (s *PostgresEquipmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM equipment WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete equipment",
			slog.String("error", err.Error()),
			slog.String("equipment_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("equipment_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("equipment not found for delete", slog.String("equipment_id", id.String()))
		return store.ErrEquipmentNotFound
	}

	log.Info("equipment deleted successfully", slog.String("equipment_id", id.String()))
	return nil
}

// scanEquipment maps one equipment row onto a domain.Equipment.
func scanEquipment(row rowScanner) (*domain.Equipment, error) {
	var equipment domain.Equipment
	var reference sql.NullString

	err := row.Scan(
		&equipment.ID,
		&equipment.SiteID,
		&equipment.Name,
		&reference,
		&equipment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	equipment.Reference = reference.String
	return &equipment, nil
}

// collectEquipment drains rows into a slice, returning an empty slice
// rather than nil when nothing matched.
func collectEquipment(rows *sql.Rows, log *slog.Logger) ([]*domain.Equipment, error) {
	items := []*domain.Equipment{}
	for rows.Next() {
		equipment, err := scanEquipment(rows)
		if err != nil {
			log.Error("failed to scan equipment row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		items = append(items, equipment)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning equipment rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return items, nil
}
