package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "vocab:validation:"

const (
	// deleteBatch bounds the number of keys removed per round trip.
	deleteBatch = 500
	// touchAttempts bounds optimistic-lock retries in Touch.
	touchAttempts = 3
)

// ValidationCacheStore implements store.ValidationCacheStore on Redis.
// Entries never expire on their own; the durable tier is purged explicitly.
type ValidationCacheStore struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewValidationCacheStore creates a store over client. An empty prefix
// selects DefaultKeyPrefix. If logger is nil, a default logger will be used.
func NewValidationCacheStore(client redis.UniversalClient, prefix string, logger *slog.Logger) *ValidationCacheStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationCacheStore{
		client: client,
		prefix: prefix,
		logger: logger.With(slog.String("component", "redis_validation_cache_store")),
	}
}

var _ store.ValidationCacheStore = (*ValidationCacheStore)(nil)

// Connect parses a redis:// URL, connects and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping failed: %v", store.ErrUnavailable, err)
	}
	return client, nil
}

func (s *ValidationCacheStore) entryKey(key string) string {
	return s.prefix + "entry:" + key
}

func (s *ValidationCacheStore) indexKey() string {
	return s.prefix + "created"
}

// score is the creation time in milliseconds, which float64 holds exactly.
func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func decodeEntry(data []byte) (*domain.CacheEntry, error) {
	var e domain.CacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: corrupt cache entry: %v", store.ErrInvalidEntity, err)
	}
	return &e, nil
}

// Get implements store.ValidationCacheStore.Get.
func (s *ValidationCacheStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	data, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrCacheEntryNotFound
		}
		log.Error("failed to get cache entry",
			slog.String("cache_key", key),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("validation_cache", "get", "failed to get cache entry", MapError(err))
	}

	entry, err := decodeEntry(data)
	if err != nil {
		return nil, store.NewStoreError("validation_cache", "get", "failed to decode cache entry", err)
	}
	return entry, nil
}

// Upsert implements store.ValidationCacheStore.Upsert.
func (s *ValidationCacheStore) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Verdict.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return store.NewStoreError("validation_cache", "upsert", "failed to encode cache entry", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.entryKey(entry.Key), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: score(entry.CreatedAt), Member: entry.Key})
		return nil
	})
	if err != nil {
		log.Error("failed to upsert cache entry",
			slog.String("cache_key", entry.Key),
			slog.String("error", err.Error()))
		return store.NewStoreError("validation_cache", "upsert", "failed to upsert cache entry", MapError(err))
	}
	return nil
}

// Touch implements store.ValidationCacheStore.Touch. The read-modify-write runs
// under WATCH and is retried when another client changes the entry meanwhile.
func (s *ValidationCacheStore) Touch(ctx context.Context, key string, at time.Time) error {
	k := s.entryKey(key)

	touch := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		entry, err := decodeEntry(data)
		if err != nil {
			return err
		}
		entry.Touch(at.UTC())
		updated, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, updated, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < touchAttempts; i++ {
		err = s.client.Watch(ctx, touch, k)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
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

	keys, err := s.client.ZRandMember(ctx, s.indexKey(), n).Result()
	if err != nil {
		return nil, store.NewStoreError("validation_cache", "sample", "failed to sample cache keys", MapError(err))
	}
	if len(keys) == 0 {
		return []*domain.CacheEntry{}, nil
	}

	cmds := make([]*redis.StringCmd, len(keys))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Get(ctx, s.entryKey(key))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, store.NewStoreError("validation_cache", "sample", "failed to read sampled entries", MapError(err))
	}

	entries := make([]*domain.CacheEntry, 0, len(keys))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			// Index member without a document; the next purge drops it.
			continue
		}
		if err != nil {
			return nil, store.NewStoreError("validation_cache", "sample", "failed to read sampled entry", MapError(err))
		}
		e, err := decodeEntry(data)
		if err != nil {
			return nil, store.NewStoreError("validation_cache", "sample", "failed to decode sampled entry", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteOlderThan implements store.ValidationCacheStore.DeleteOlderThan.
// Creation times are compared at millisecond precision.
func (s *ValidationCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	upper := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	return s.deleteWhile(ctx, "delete_older_than", func() ([]string, error) {
		return s.client.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
			Min:   "-inf",
			Max:   upper,
			Count: deleteBatch,
		}).Result()
	})
}

// DeleteAll implements store.ValidationCacheStore.DeleteAll.
func (s *ValidationCacheStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.deleteWhile(ctx, "delete_all", func() ([]string, error) {
		return s.client.ZRange(ctx, s.indexKey(), 0, deleteBatch-1).Result()
	})
}

// deleteWhile removes batches returned by next until it returns none.
func (s *ValidationCacheStore) deleteWhile(
	ctx context.Context,
	op string,
	next func() ([]string, error),
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var removed int64
	for {
		keys, err := next()
		if err != nil {
			return removed, s.deleteError(log, op, err)
		}
		if len(keys) == 0 {
			break
		}

		entryKeys := make([]string, len(keys))
		members := make([]any, len(keys))
		for i, k := range keys {
			entryKeys[i] = s.entryKey(k)
			members[i] = k
		}

		var del *redis.IntCmd
		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, entryKeys...)
			pipe.ZRem(ctx, s.indexKey(), members...)
			return nil
		})
		if err != nil {
			return removed, s.deleteError(log, op, err)
		}
		removed += del.Val()
	}

	log.Info("cache entries deleted",
		slog.String("operation", op),
		slog.Int64("removed", removed))
	return removed, nil
}

func (s *ValidationCacheStore) deleteError(log *slog.Logger, op string, err error) error {
	log.Error("failed to delete cache entries",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return store.NewStoreError("validation_cache", op, "failed to delete cache entries", MapError(err))
}

// Count implements store.ValidationCacheStore.Count.
func (s *ValidationCacheStore) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, store.NewStoreError("validation_cache", "count", "failed to count cache entries", MapError(err))
	}
	return n, nil
}
