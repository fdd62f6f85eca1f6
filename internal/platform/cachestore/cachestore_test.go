package cachestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/platform/postgres"
	"github.com/phrazzld/vocab-api/internal/platform/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPostgres(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, closeFn, err := Open(context.Background(), config.CacheConfig{Backend: BackendPostgres}, db, nil)
	require.NoError(t, err)
	assert.IsType(t, &postgres.PostgresValidationCacheStore{}, s)
	assert.NoError(t, closeFn())

	_, _, err = Open(context.Background(), config.CacheConfig{Backend: BackendPostgres}, nil, nil)
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, closeFn, err := Open(ctx, config.CacheConfig{Backend: BackendSQLite, SQLitePath: path}, nil, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	assert.IsType(t, &sqlite.ValidationCacheStore{}, s)

	entry, err := domain.NewCacheEntry(domain.ValidationContext{
		LearnerAnswer:   "swift",
		ReferenceAnswer: "fast",
	}, domain.Verdict{IsCorrect: true, Confidence: 0.9, IsMeaningful: true}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, entry))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.CacheConfig
	}{
		{"sqlite without path", config.CacheConfig{Backend: BackendSQLite}},
		{"redis with bad url", config.CacheConfig{Backend: BackendRedis, RedisURL: "not-a-url"}},
		{"unknown backend", config.CacheConfig{Backend: "memcached"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, closeFn, err := Open(context.Background(), tc.cfg, nil, nil)
			assert.Error(t, err)
			assert.Nil(t, s)
			assert.Nil(t, closeFn)
		})
	}
}
