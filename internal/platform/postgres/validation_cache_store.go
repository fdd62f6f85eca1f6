package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

// cacheColumns is the column list shared by every cache query, in scan order.
const cacheColumns = `cache_key, learner_answer, reference_answer, question_kind, study_mode,
	word, context, is_correct, confidence, reasoning, semantic_similarity, is_meaningful,
	suggested_correction, feedback, encouragement, created_at, access_count, last_accessed`

// PostgresValidationCacheStore implements the store.ValidationCacheStore interface
// using a PostgreSQL database as the durable cache tier.
type PostgresValidationCacheStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresValidationCacheStore creates a new PostgreSQL validation cache store.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresValidationCacheStore(db store.DBTX, logger *slog.Logger) *PostgresValidationCacheStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresValidationCacheStore{
		db:     db,
		logger: logger.With(slog.String("component", "validation_cache_store")),
	}
}

// Ensure PostgresValidationCacheStore implements store.ValidationCacheStore interface
var _ store.ValidationCacheStore = (*PostgresValidationCacheStore)(nil)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCacheEntry(row rowScanner) (*domain.CacheEntry, error) {
	var (
		e            domain.CacheEntry
		lastAccessed sql.NullTime
	)
	err := row.Scan(
		&e.Key,
		&e.Context.LearnerAnswer,
		&e.Context.ReferenceAnswer,
		&e.Context.QuestionKind,
		&e.Context.StudyMode,
		&e.Context.Word,
		&e.Context.FreeTextContext,
		&e.Verdict.IsCorrect,
		&e.Verdict.Confidence,
		&e.Verdict.Reasoning,
		&e.Verdict.SemanticSimilarity,
		&e.Verdict.IsMeaningful,
		&e.Verdict.SuggestedCorrection,
		&e.Verdict.Feedback,
		&e.Verdict.Encouragement,
		&e.CreatedAt,
		&e.AccessCount,
		&lastAccessed,
	)
	if err != nil {
		return nil, err
	}
	if lastAccessed.Valid {
		t := lastAccessed.Time
		e.LastAccessed = &t
	}
	return &e, nil
}

// Get implements store.ValidationCacheStore.Get.
// Returns store.ErrCacheEntryNotFound if nothing is cached under key.
func (s *PostgresValidationCacheStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cacheColumns + ` FROM validation_cache WHERE cache_key = $1`
	entry, err := scanCacheEntry(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrCacheEntryNotFound
		}
		log.Error("failed to get cache entry",
			slog.String("cache_key", key),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("validation_cache", "get", "failed to get cache entry", MapError(err))
	}
	return entry, nil
}

// Upsert implements store.ValidationCacheStore.Upsert.
// An existing row under the same key is replaced, access statistics included.
func (s *PostgresValidationCacheStore) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Verdict.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var lastAccessed sql.NullTime
	if entry.LastAccessed != nil {
		lastAccessed = sql.NullTime{Time: *entry.LastAccessed, Valid: true}
	}

	query := `
		INSERT INTO validation_cache (` + cacheColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (cache_key) DO UPDATE SET
			learner_answer = EXCLUDED.learner_answer,
			reference_answer = EXCLUDED.reference_answer,
			question_kind = EXCLUDED.question_kind,
			study_mode = EXCLUDED.study_mode,
			word = EXCLUDED.word,
			context = EXCLUDED.context,
			is_correct = EXCLUDED.is_correct,
			confidence = EXCLUDED.confidence,
			reasoning = EXCLUDED.reasoning,
			semantic_similarity = EXCLUDED.semantic_similarity,
			is_meaningful = EXCLUDED.is_meaningful,
			suggested_correction = EXCLUDED.suggested_correction,
			feedback = EXCLUDED.feedback,
			encouragement = EXCLUDED.encouragement,
			created_at = EXCLUDED.created_at,
			access_count = EXCLUDED.access_count,
			last_accessed = EXCLUDED.last_accessed
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.Key,
		entry.Context.LearnerAnswer,
		entry.Context.ReferenceAnswer,
		entry.Context.QuestionKind,
		entry.Context.StudyMode,
		entry.Context.Word,
		entry.Context.FreeTextContext,
		entry.Verdict.IsCorrect,
		entry.Verdict.Confidence,
		entry.Verdict.Reasoning,
		entry.Verdict.SemanticSimilarity,
		entry.Verdict.IsMeaningful,
		entry.Verdict.SuggestedCorrection,
		entry.Verdict.Feedback,
		entry.Verdict.Encouragement,
		entry.CreatedAt.UTC(),
		entry.AccessCount,
		lastAccessed,
	)
	if err != nil {
		log.Error("failed to upsert cache entry",
			slog.String("cache_key", entry.Key),
			slog.String("error", err.Error()))
		return store.NewStoreError("validation_cache", "upsert", "failed to upsert cache entry", MapError(err))
	}

	log.Debug("cache entry upserted", slog.String("cache_key", entry.Key))
	return nil
}

// Touch implements store.ValidationCacheStore.Touch.
func (s *PostgresValidationCacheStore) Touch(ctx context.Context, key string, at time.Time) error {
	query := `
		UPDATE validation_cache
		SET access_count = access_count + 1, last_accessed = $2
		WHERE cache_key = $1
	`
	if _, err := s.db.ExecContext(ctx, query, key, at.UTC()); err != nil {
		return store.NewStoreError("validation_cache", "touch", "failed to update access stats", MapError(err))
	}
	return nil
}

// Sample implements store.ValidationCacheStore.Sample.
func (s *PostgresValidationCacheStore) Sample(ctx context.Context, n int) ([]*domain.CacheEntry, error) {
	if n <= 0 {
		return []*domain.CacheEntry{}, nil
	}

	query := `SELECT ` + cacheColumns + ` FROM validation_cache ORDER BY RANDOM() LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, store.NewStoreError("validation_cache", "sample", "failed to sample cache entries", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.CacheEntry, 0, n)
	for rows.Next() {
		e, err := scanCacheEntry(rows)
		if err != nil {
			return nil, store.NewStoreError("validation_cache", "sample", "failed to scan cache entry", MapError(err))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("validation_cache", "sample", "failed to iterate cache entries", MapError(err))
	}
	return entries, nil
}

// DeleteOlderThan implements store.ValidationCacheStore.DeleteOlderThan.
func (s *PostgresValidationCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.delete(ctx, "delete_older_than",
		`DELETE FROM validation_cache WHERE created_at < $1`, cutoff.UTC())
}

// DeleteAll implements store.ValidationCacheStore.DeleteAll.
func (s *PostgresValidationCacheStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.delete(ctx, "delete_all", `DELETE FROM validation_cache`)
}

func (s *PostgresValidationCacheStore) delete(ctx context.Context, op, query string, args ...any) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete cache entries",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("validation_cache", op, "failed to delete cache entries", MapError(err))
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("validation_cache", op, "failed to get rows affected", err)
	}

	log.Info("cache entries deleted",
		slog.String("operation", op),
		slog.Int64("removed", removed))
	return removed, nil
}

// Count implements store.ValidationCacheStore.Count.
func (s *PostgresValidationCacheStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM validation_cache`).Scan(&n); err != nil {
		return 0, store.NewStoreError("validation_cache", "count", "failed to count cache entries", MapError(err))
	}
	return n, nil
}
