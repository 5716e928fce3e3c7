package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lecturelab/study-api/internal/config"
	"github.com/lecturelab/study-api/internal/events"
	"github.com/lecturelab/study-api/internal/platform/gemini"
	"github.com/lecturelab/study-api/internal/platform/postgres"
	"github.com/lecturelab/study-api/internal/service"
	"github.com/lecturelab/study-api/internal/service/auth"
	"github.com/lecturelab/study-api/internal/service/review"
	"github.com/lecturelab/study-api/internal/store"
	"github.com/lecturelab/study-api/internal/task"
)

// application holds the shared application dependencies so wiring and
// shutdown live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore       store.UserStore
	transcriptStore store.TranscriptStore
	cardStore       store.CardStore
	scheduleStore   store.ScheduleStore
	reviewLogStore  store.ReviewLogStore
	taskStore       task.TaskStore

	// Services
	jwtService        auth.JWTService
	passwordHasher    auth.PasswordHasher
	passwordVerifier  auth.PasswordVerifier
	transcriptService service.TranscriptService
	cardService       service.CardService
	reviewService     review.ReviewService

	// Event system and background processing
	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires all dependencies. Card generation is only enabled
// when a Gemini API key is configured; without one, transcripts are accepted
// but stay pending.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
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

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewUserStore(db, logger)
	app.transcriptStore = postgres.NewTranscriptStore(db, logger)
	app.cardStore = postgres.NewCardStore(db, logger)
	app.scheduleStore = postgres.NewScheduleStore(db, logger)
	app.reviewLogStore = postgres.NewReviewLogStore(db, logger)
	app.taskStore = postgres.NewTaskStore(db, logger)

	// Event system
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Services
	app.transcriptService, err = service.NewTranscriptService(
		app.transcriptStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript service: %w", err)
	}

	app.cardService, err = service.NewCardService(db, app.cardStore, app.scheduleStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.reviewService = review.NewReviewService(
		db, app.cardStore, app.scheduleStore, app.reviewLogStore, logger)

	// Background card generation
	if err := app.setupGeneration(ctx); err != nil {
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

// setupGeneration wires the Gemini generator, task runner and event handler
// that together turn submitted transcripts into flashcards. It is a no-op
// when no Gemini API key is configured.
func (app *application) setupGeneration(ctx context.Context) error {
	if app.config.Generation.GeminiAPIKey == "" {
		app.logger.Warn("no Gemini API key configured, card generation disabled")
		return nil
	}

	generator, err := gemini.NewGenerator(ctx, app.config.Generation, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize card generator: %w", err)
	}
	app.logger.Info("card generator initialized",
		"model", app.config.Generation.ModelName,
		"max_cards", app.config.Generation.MaxCards)

	factory := task.NewCardGenerationTaskFactory(
		app.transcriptService,
		generator,
		app.cardService,
		app.logger,
	)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  app.config.Task.WorkerCount,
		QueueSize:    app.config.Task.QueueSize,
		StuckTaskAge: 30 * time.Minute,
	}, app.logger)
	app.taskRunner.RegisterReconstructor(task.TaskTypeCardGeneration, factory.ReconstructTask)

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	handler := task.NewCardGenerationEventHandler(factory, app.taskRunner, app.logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(handler)
	} else {
		return fmt.Errorf("unexpected event emitter type, cannot register generation handler")
	}

	return nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
