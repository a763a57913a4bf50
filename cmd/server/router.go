package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/efme/efme-api/internal/api"
	apiMiddleware "github.com/efme/efme-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		app.eventEmitter,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	userHandler := api.NewUserHandler(app.userStore, app.passwordHasher, app.eventEmitter, app.logger)
	siteHandler := api.NewSiteHandler(app.siteStore, app.equipmentStore, app.eventEmitter, app.logger)
	equipmentHandler := api.NewEquipmentHandler(app.equipmentStore, app.eventEmitter, app.logger)
	taskHandler := api.NewTaskHandler(
		app.taskStore,
		app.executionService,
		app.postponementService,
		app.eventEmitter,
		app.logger,
	)
	executionHandler := api.NewExecutionHandler(app.executionStore, app.logger)
	postponementHandler := api.NewPostponementHandler(
		app.postponementService,
		app.postponementStore,
		app.logger,
	)
	alertHandler := api.NewAlertHandler(app.alertStore, app.logger)
	auditHandler := api.NewAuditHandler(app.auditStore, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoint (public)
		r.Post("/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			r.Route("/sites", func(r chi.Router) {
				r.Get("/", siteHandler.List)
				r.Post("/", siteHandler.Create)
				r.Get("/{id}", siteHandler.Get)
				r.Put("/{id}", siteHandler.Update)
				r.Delete("/{id}", siteHandler.Delete)
				r.Get("/{id}/equipment", siteHandler.ListEquipment)
			})

			r.Route("/equipment", func(r chi.Router) {
				r.Get("/", equipmentHandler.List)
				r.Post("/", equipmentHandler.Create)
				r.Get("/{id}", equipmentHandler.Get)
				r.Put("/{id}", equipmentHandler.Update)
				r.Delete("/{id}", equipmentHandler.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/execute", taskHandler.Execute)
				r.Post("/{id}/postpone", taskHandler.Postpone)
				r.Get("/{id}/executions", taskHandler.ListExecutions)
			})

			r.Route("/executions", func(r chi.Router) {
				r.Get("/", executionHandler.List)
				r.Get("/{id}", executionHandler.Get)
			})

			r.Route("/postponements", func(r chi.Router) {
				r.Get("/", postponementHandler.List)
				r.Get("/{id}", postponementHandler.Get)
				r.Put("/{id}/approve", postponementHandler.Approve)
				r.Put("/{id}/reject", postponementHandler.Reject)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.List)
				r.Put("/{id}/read", alertHandler.MarkRead)
				r.Put("/mark-all-read", alertHandler.MarkAllRead)
			})

			r.Get("/dashboard", taskHandler.Dashboard)
			r.Get("/audit-logs", auditHandler.List)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
