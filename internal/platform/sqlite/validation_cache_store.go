package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

const cacheColumns = `cache_key, learner_answer, reference_answer, question_kind, study_mode,
	word, context, is_correct, confidence, reasoning, semantic_similarity, is_meaningful,
	suggested_correction, feedback, encouragement, created_at, access_count, last_accessed`

// ValidationCacheStore implements store.ValidationCacheStore on a SQLite database.
type ValidationCacheStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewValidationCacheStore creates a store over db, which must already be migrated.
// If logger is nil, a default logger will be used.
func NewValidationCacheStore(db store.DBTX, logger *slog.Logger) *ValidationCacheStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationCacheStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_validation_cache_store")),
	}
}

var _ store.ValidationCacheStore = (*ValidationCacheStore)(nil)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func scanCacheEntry(row interface{ Scan(...any) error }) (*domain.CacheEntry, error) {
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
	e.CreatedAt = e.CreatedAt.UTC()
	if lastAccessed.Valid {
		t := lastAccessed.Time.UTC()
		e.LastAccessed = &t
	}
	return &e, nil
}

// Get implements store.ValidationCacheStore.Get.
func (s *ValidationCacheStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entry, err := scanCacheEntry(s.db.QueryRowContext(ctx,
		`SELECT `+cacheColumns+` FROM validation_cache WHERE cache_key = ?`, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
func (s *ValidationCacheStore) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Verdict.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var lastAccessed sql.NullString
	if entry.LastAccessed != nil {
		lastAccessed = sql.NullString{String: formatTime(*entry.LastAccessed), Valid: true}
	}

	query := `
		INSERT INTO validation_cache (` + cacheColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			learner_answer = excluded.learner_answer,
			reference_answer = excluded.reference_answer,
			question_kind = excluded.question_kind,
			study_mode = excluded.study_mode,
			word = excluded.word,
			context = excluded.context,
			is_correct = excluded.is_correct,
			confidence = excluded.confidence,
			reasoning = excluded.reasoning,
			semantic_similarity = excluded.semantic_similarity,
			is_meaningful = excluded.is_meaningful,
			suggested_correction = excluded.suggested_correction,
			feedback = excluded.feedback,
			encouragement = excluded.encouragement,
			created_at = excluded.created_at,
			access_count = excluded.access_count,
			last_accessed = excluded.last_accessed
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
		formatTime(entry.CreatedAt),
		entry.AccessCount,
		lastAccessed,
	)
	if err != nil {
		log.Error("failed to upsert cache entry",
			slog.String("cache_key", entry.Key),
			slog.String("error", err.Error()))
		return store.NewStoreError("validation_cache", "upsert", "failed to upsert cache entry", MapError(err))
	}
	return nil
}

// Touch implements store.ValidationCacheStore.Touch.
func (s *ValidationCacheStore) Touch(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE validation_cache SET access_count = access_count + 1, last_accessed = ? WHERE cache_key = ?`,
		formatTime(at), key)
	if err != nil {
		return store.NewStoreError("validation_cache", "touch", "failed to update access stats", MapError(err))
	}
	return nil
}

// Sample implements store.ValidationCacheStore.Sample.
func (s *ValidationCacheStore) Sample(ctx context.Context, n int) ([]*domain.CacheEntry, error) {
	if n <= 0 {
		return []*domain.CacheEntry{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cacheColumns+` FROM validation_cache ORDER BY RANDOM() LIMIT ?`, n)
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
func (s *ValidationCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.delete(ctx, "delete_older_than",
		`DELETE FROM validation_cache WHERE created_at < ?`, formatTime(cutoff))
}

// DeleteAll implements store.ValidationCacheStore.DeleteAll.
func (s *ValidationCacheStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.delete(ctx, "delete_all", `DELETE FROM validation_cache`)
}

func (s *ValidationCacheStore) delete(ctx context.Context, op, query string, args ...any) (int64, error) {
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
func (s *ValidationCacheStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM validation_cache`).Scan(&n); err != nil {
		return 0, store.NewStoreError("validation_cache", "count", "failed to count cache entries", MapError(err))
	}
	return n, nil
}
