package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/efme/efme-api/internal/config"
	"github.com/efme/efme-api/internal/events"
	"github.com/efme/efme-api/internal/platform/postgres"
	"github.com/efme/efme-api/internal/service/auth"
	"github.com/efme/efme-api/internal/service/execution"
	"github.com/efme/efme-api/internal/service/postponement"
	"github.com/efme/efme-api/internal/store"
	"github.com/efme/efme-api/internal/worker"
)

// application holds the initialized dependency graph for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore         store.UserStore
	siteStore         store.SiteStore
	equipmentStore    store.EquipmentStore
	taskStore         store.TaskStore
	executionStore    store.ExecutionStore
	postponementStore store.PostponementStore
	alertStore        store.AlertStore
	auditStore        store.AuditStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	passwordHasher   auth.PasswordHasher

	// Workflow services
	executionService    *execution.Service
	postponementService *postponement.Service

	// Event system
	eventEmitter events.EventEmitter

	// Background work
	sweeper *worker.OverdueSweeper
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts the configuration, logger and database connection
// that must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()
	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.siteStore = postgres.NewPostgresSiteStore(db, logger)
	app.equipmentStore = postgres.NewPostgresEquipmentStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.executionStore = postgres.NewPostgresExecutionStore(db, logger)
	app.postponementStore = postgres.NewPostgresPostponementStore(db, logger)
	app.alertStore = postgres.NewPostgresAlertStore(db, logger)
	app.auditStore = postgres.NewPostgresAuditStore(db, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewAuditLogHandler(app.auditStore, logger))
	app.eventEmitter = emitter

	txRunner := store.NewTxRunner(db)

	app.executionService = execution.NewService(
		txRunner,
		app.taskStore,
		app.executionStore,
		app.eventEmitter,
		logger,
	)

	app.postponementService = postponement.NewService(
		txRunner,
		app.taskStore,
		app.postponementStore,
		app.eventEmitter,
		logger,
	)

	if cfg.Alert.SweepIntervalMinutes > 0 {
		app.sweeper = worker.NewOverdueSweeper(
			app.taskStore,
			app.alertStore,
			worker.SweeperConfig{
				Interval: time.Duration(cfg.Alert.SweepIntervalMinutes) * time.Minute,
			},
			logger,
		)
	} else {
		logger.Info("overdue alert sweeper disabled")
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the background sweeper and the HTTP server, handling lifecycle
// and cleanup. It returns an error if the server fails to start or
// encounters problems.
func (app *application) Run(ctx context.Context) error {
	if app.sweeper != nil {
		app.sweeper.Start()
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
