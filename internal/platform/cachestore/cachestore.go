// Package cachestore opens the durable validation cache backend selected in
// configuration: Postgres, a local SQLite file or Redis.
package cachestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/platform/postgres"
	"github.com/phrazzld/vocab-api/internal/platform/rediscache"
	"github.com/phrazzld/vocab-api/internal/platform/sqlite"
	"github.com/phrazzld/vocab-api/internal/store"
)

// Backend names accepted in CacheConfig.Backend.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Open returns the durable store for cfg.Backend and a function releasing the
// resources it opened. pg is only used by the postgres backend and is never
// closed here.
func Open(
	ctx context.Context,
	cfg config.CacheConfig,
	pg *sql.DB,
	logger *slog.Logger,
) (store.ValidationCacheStore, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	switch cfg.Backend {
	case BackendPostgres, "":
		if pg == nil {
			return nil, nil, fmt.Errorf("postgres cache backend requires a database connection")
		}
		logger.Info("using postgres validation cache")
		return postgres.NewPostgresValidationCacheStore(pg, logger), noop, nil

	case BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return sqlite.NewValidationCacheStore(db, logger), db.Close, nil

	case BackendRedis:
		client, err := rediscache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		logger.Info("using redis validation cache", slog.String("key_prefix", cfg.RedisKeyPrefix))
		return rediscache.NewValidationCacheStore(client, cfg.RedisKeyPrefix, logger), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
