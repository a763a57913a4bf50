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

// PostgresSiteStore implements the store.SiteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSiteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSiteStore creates a new PostgreSQL implementation of the
// SiteStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSiteStore(db store.DBTX, logger *slog.Logger) *PostgresSiteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSiteStore{
		db:     db,
		logger: logger.With(slog.String("component", "site_store")),
	}
}

// Ensure PostgresSiteStore implements store.SiteStore interface
var _ store.SiteStore = (*PostgresSiteStore)(nil)

// Create implements store.SiteStore.Create
// Returns store.ErrDuplicate if the site code is already taken.
func (s *PostgresSiteStore) Create(ctx context.Context, site *domain.Site) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := site.Validate(); err != nil {
		log.Warn("site validation failed during create",
			slog.String("error", err.Error()),
			slog.String("site_id", site.ID.String()))
		return err
	}

	query := `
		INSERT INTO sites (id, name, code_site, latitude, longitude, radius_meters, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		site.ID,
		site.Name,
		site.Code,
		site.Latitude,
		site.Longitude,
		site.RadiusMeters,
		site.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create site",
			slog.String("error", err.Error()),
			slog.String("site_id", site.ID.String()))
		return MapError(err)
	}

	log.Info("site created successfully",
		slog.String("site_id", site.ID.String()),
		slog.String("code", site.Code))
	return nil
}

// GetByID implements store.SiteStore.GetByID
// Returns store.ErrSiteNotFound if the site does not exist.
func (s *PostgresSiteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, code_site, latitude, longitude, radius_meters, created_at
		FROM sites
		WHERE id = $1
	`

	site, err := scanSite(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("site not found", slog.String("site_id", id.String()))
			return nil, store.ErrSiteNotFound
		}
		log.Error("failed to get site by ID",
			slog.String("error", err.Error()),
			slog.String("site_id", id.String()))
		return nil, MapError(err)
	}

	return site, nil
}

// List implements store.SiteStore.List
func (s *PostgresSiteStore) List(ctx context.Context, limit, offset int) ([]*domain.Site, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)

	query := `
		SELECT id, name, code_site, latitude, longitude, radius_meters, created_at
		FROM sites
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to query sites", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	sites := []*domain.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			log.Error("failed to scan site row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning site rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return sites, nil
}

// Update implements store.SiteStore.Update
// Returns store.ErrSiteNotFound if the site does not exist.
func (s *PostgresSiteStore) Update(ctx context.Context, site *domain.Site) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := site.Validate(); err != nil {
		log.Warn("site validation failed during update",
			slog.String("error", err.Error()),
			slog.String("site_id", site.ID.String()))
		return err
	}

	query := `
		UPDATE sites
		SET name = $1, code_site = $2, latitude = $3, longitude = $4, radius_meters = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		site.Name,
		site.Code,
		site.Latitude,
		site.Longitude,
		site.RadiusMeters,
		site.ID,
	)

	if err != nil {
		log.Error("failed to update site",
			slog.String("error", err.Error()),
			slog.String("site_id", site.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("site_id", site.ID.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("site not found for update", slog.String("site_id", site.ID.String()))
		return store.ErrSiteNotFound
	}

	log.Info("site updated successfully", slog.String("site_id", site.ID.String()))
	return nil
}

// Delete implements store.SiteStore.Delete
// Returns store.ErrSiteNotFound if the site does not exist.
func (s *PostgresSiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM sites WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete site",
			slog.String("error", err.Error()),
			slog.String("site_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("site_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("site not found for delete", slog.String("site_id", id.String()))
		return store.ErrSiteNotFound
	}

	log.Info("site deleted successfully", slog.String("site_id", id.String()))
	return nil
}

// scanSite maps one sites row onto a domain.Site.
func scanSite(row rowScanner) (*domain.Site, error) {
	var site domain.Site
	var latitude, longitude sql.NullFloat64

	err := row.Scan(
		&site.ID,
		&site.Name,
		&site.Code,
		&latitude,
		&longitude,
		&site.RadiusMeters,
		&site.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if latitude.Valid {
		site.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		site.Longitude = &longitude.Float64
	}

	return &site, nil
}
