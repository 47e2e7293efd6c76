package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/tracker-api/internal/config"
	"github.com/phrazzld/tracker-api/internal/job"
	"github.com/phrazzld/tracker-api/internal/platform/postgres"
	"github.com/phrazzld/tracker-api/internal/service"
	"github.com/phrazzld/tracker-api/internal/service/auth"
	"github.com/phrazzld/tracker-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore         store.UserStore
	projectStore      store.ProjectStore
	taskStore         store.TaskStore
	subtaskStore      store.SubtaskStore
	notificationStore store.NotificationStore
	activityStore     store.ActivityLogStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	notifier         service.Notifier
	activityRecorder service.ActivityRecorder
	taskService      service.TaskService

	// Background jobs
	scheduler *job.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger and
// database connection that must be established before application
// initialization.
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

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost)
	app.projectStore = postgres.NewPostgresProjectStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)
	app.subtaskStore = postgres.NewPostgresSubtaskStore(db)
	app.notificationStore = postgres.NewPostgresNotificationStore(db)
	app.activityStore = postgres.NewPostgresActivityLogStore(db)

	// Services
	app.notifier = service.NewNotifier(app.taskStore, app.notificationStore, logger)
	app.activityRecorder = service.NewActivityRecorder(app.activityStore)
	app.taskService = service.NewTaskService(db, app.taskStore, app.notifier, app.activityRecorder, logger)

	// Overdue sweep
	sweeper := job.NewOverdueSweeper(app.taskStore, app.activityRecorder, logger)
	app.scheduler, err = job.NewScheduler(cfg.Sweep.Schedule, sweeper, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sweep scheduler: %w", err)
	}
	app.scheduler.Start()
	logger.Info("Overdue sweep scheduled", "schedule", cfg.Sweep.Schedule)

	logger.Info("Application initialized successfully")
	return app, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
