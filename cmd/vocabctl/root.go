package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/cachestore"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/platform/migrations"
	"github.com/phrazzld/vocab-api/internal/platform/postgres"
	"github.com/phrazzld/vocab-api/internal/validation"
	"github.com/spf13/cobra"
)

// cacheManager is the part of the validation service the commands drive.
type cacheManager interface {
	Stats(ctx context.Context) (validation.Stats, error)
	Purge(ctx context.Context, olderThan *time.Duration) (int64, error)
	Audit(ctx context.Context, sampleSize int) (validation.QualityReport, error)
}

// environment is what a command runs against.
type environment struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	dialect migrations.Dialect
	cache   cacheManager
	close   func() error
}

// openFunc builds an environment from a config file path.
type openFunc func(ctx context.Context, configPath string) (*environment, error)

// offlineEvaluator stands in for the judge. Maintenance never validates
// answers, so a cache miss is reported as unavailable.
type offlineEvaluator struct{}

func (offlineEvaluator) Evaluate(context.Context, domain.ValidationContext, []string) (domain.Verdict, error) {
	return domain.Verdict{}, validation.ErrValidationUnavailable
}

// openEnvironment loads the config, connects to Postgres and opens the
// configured durable cache backend.
func openEnvironment(ctx context.Context, configPath string) (*environment, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	durable, closeCache, err := cachestore.Open(ctx, cfg.Cache, db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	closeAll := func() error {
		cacheErr := closeCache()
		if err := db.Close(); err != nil {
			return err
		}
		return cacheErr
	}

	svc, err := validation.NewService(durable, offlineEvaluator{}, validation.NoParaphrases{}, validation.Config{
		MemoryCapacity:      cfg.Cache.MemoryCapacity,
		SimilarityThreshold: cfg.Cache.SimilarityThreshold,
		TTL:                 cfg.Cache.TTL,
	}, log)
	if err != nil {
		_ = closeAll()
		return nil, fmt.Errorf("failed to create validation service: %w", err)
	}

	return &environment{
		config:  cfg,
		logger:  log,
		db:      db,
		dialect: migrations.Postgres,
		cache:   svc,
		close:   closeAll,
	}, nil
}

// newRootCmd builds the command tree. Each subcommand opens its environment
// through open and releases it when done.
func newRootCmd(open openFunc) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "vocabctl",
		Short:         "Maintenance commands for the vocab API",
		Long:          `vocabctl purges and audits the answer validation cache and manages database migrations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default: ./config.yaml)")

	withEnv := func(run func(cmd *cobra.Command, args []string, env *environment) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := env.close(); err != nil {
					env.logger.Error("failed to release resources", "error", err)
				}
			}()
			return run(cmd, args, env)
		}
	}

	root.AddCommand(
		newPurgeCmd(withEnv),
		newAuditCmd(withEnv),
		newMigrateCmd(withEnv),
		newStatsCmd(withEnv),
	)
	return root
}
