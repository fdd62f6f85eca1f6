package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/domain/srs"
	"github.com/phrazzld/vocab-api/internal/judge"
	"github.com/phrazzld/vocab-api/internal/platform/cachestore"
	"github.com/phrazzld/vocab-api/internal/platform/gemini"
	"github.com/phrazzld/vocab-api/internal/platform/migrations"
	"github.com/phrazzld/vocab-api/internal/platform/postgres"
	"github.com/phrazzld/vocab-api/internal/service/study"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/phrazzld/vocab-api/internal/task"
	"github.com/phrazzld/vocab-api/internal/validation"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	validation *validation.Service
	study      *study.Service
	runner     *task.TaskRunner

	// closers release resources in reverse order of acquisition
	closers []func() error
}

// newApplication connects to the databases, applies migrations and wires the
// services. On error everything acquired so far is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}
	if err := app.init(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	logger.Info("application initialized")
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg := app.config

	db, err := postgres.Open(ctx, cfg.Database, app.logger)
	if err != nil {
		return err
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	if err := migrations.Up(ctx, db, migrations.Postgres, app.logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	durable, closeCache, err := cachestore.Open(ctx, cfg.Cache, db, app.logger)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, closeCache)

	evaluator, err := setupEvaluator(ctx, cfg.Judge, app.logger)
	if err != nil {
		return err
	}

	paraphrases, err := loadParaphrases(cfg.Judge.ThesaurusPath, app.logger)
	if err != nil {
		return err
	}

	return app.wire(durable, evaluator, paraphrases)
}

// wire builds the services on top of already opened infrastructure.
func (app *application) wire(
	durable store.ValidationCacheStore,
	evaluator validation.Evaluator,
	paraphrases validation.ParaphraseLookup,
) error {
	cfg := app.config

	svc, err := validation.NewService(durable, evaluator, paraphrases, validation.Config{
		MemoryCapacity:      cfg.Cache.MemoryCapacity,
		SimilarityThreshold: cfg.Cache.SimilarityThreshold,
		TTL:                 cfg.Cache.TTL,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create validation service: %w", err)
	}
	app.validation = svc

	app.study = study.NewService(
		app.db,
		postgres.NewPostgresReviewStateStore(app.db, app.logger),
		postgres.NewPostgresContentPool(app.db, app.logger),
		srs.NewDefaultService(),
		app.logger,
	)

	app.runner = task.NewTaskRunner(app.validation, cfg.Maintenance, app.logger)
	return nil
}

// setupEvaluator builds the Gemini judge behind the retrying adapter.
func setupEvaluator(ctx context.Context, cfg config.JudgeConfig, logger *slog.Logger) (validation.Evaluator, error) {
	j, err := gemini.NewJudge(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize judge: %w", err)
	}
	logger.Info("judge initialized", "model", cfg.ModelName)

	return judge.NewAdapter(j, judge.AdapterConfig{
		MaxAttempts:       cfg.MaxAttempts,
		BaseBackoff:       cfg.BaseBackoff,
		AttemptTimeout:    cfg.AttemptTimeout,
		OverrideThreshold: cfg.OverrideThreshold,
	}, logger), nil
}

// loadParaphrases loads the optional thesaurus. Without one, no hints are sent.
func loadParaphrases(path string, logger *slog.Logger) (validation.ParaphraseLookup, error) {
	if path == "" {
		return validation.NoParaphrases{}, nil
	}
	t, err := validation.LoadThesaurus(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load thesaurus: %w", err)
	}
	logger.Info("thesaurus loaded", "entries", t.Len())
	return t, nil
}

// Run starts the maintenance runner and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	app.runner.Start()
	defer app.runner.Stop()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources in reverse order.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error("failed to release resource", "error", err)
		}
	}
	app.closers = nil
}
