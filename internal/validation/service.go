package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/phrazzld/vocab-api/internal/store"
)

// ErrValidationUnavailable is returned when an answer could not be validated
// because the judge failed. It wraps the judge error.
var ErrValidationUnavailable = errors.New("answer validation unavailable")

// Evaluator judges a context that neither the pre-filter nor the cache could answer.
// judge.Adapter is the production implementation.
type Evaluator interface {
	Evaluate(ctx context.Context, vc domain.ValidationContext, hints []string) (domain.Verdict, error)
}

// Config holds the tuning of a Service.
type Config struct {
	// MemoryCapacity is the maximum number of entries in the memory tier.
	MemoryCapacity int
	// SimilarityThreshold is the minimum Jaccard ratio accepted by the pre-filter.
	SimilarityThreshold float64
	// TTL is the age after which durable entries are considered stale.
	// It is only applied by PurgeStale; reads never filter on it.
	TTL time.Duration
}

// DefaultConfig returns capacity 1000, threshold 0.85 and a 24h TTL.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:      1000,
		SimilarityThreshold: DefaultSimilarityThreshold,
		TTL:                 24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MemoryCapacity <= 0 {
		c.MemoryCapacity = d.MemoryCapacity
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	return c
}

// Service validates learner answers through the pre-filter, the two cache
// tiers and finally the judge. Each Service owns its own memory tier and
// counters; nothing is shared between instances.
type Service struct {
	durable     store.ValidationCacheStore
	evaluator   Evaluator
	paraphrases ParaphraseLookup
	config      Config
	memory      *memoryTier
	counters    *counters
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a validation service.
// It panics if durable or evaluator is nil. A nil paraphrase lookup disables hints.
func NewService(
	durable store.ValidationCacheStore,
	evaluator Evaluator,
	paraphrases ParaphraseLookup,
	config Config,
	logger *slog.Logger,
) (*Service, error) {
	if durable == nil {
		panic("durable store cannot be nil")
	}
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	if paraphrases == nil {
		paraphrases = NoParaphrases{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	config = config.withDefaults()
	memory, err := newMemoryTier(config.MemoryCapacity)
	if err != nil {
		return nil, err
	}

	return &Service{
		durable:     durable,
		evaluator:   evaluator,
		paraphrases: paraphrases,
		config:      config,
		memory:      memory,
		counters:    newCounters(),
		logger:      logger.With(slog.String("component", "validation_service")),
		now:         time.Now,
	}, nil
}

// Validate returns the verdict for vc.
//
// Blank answers get a fixed incorrect verdict and are not counted. Exact and
// highly similar answers are accepted by the pre-filter without touching the
// cache. Otherwise the memory tier, then the durable tier, then the judge are
// consulted; judged verdicts are written through to both tiers. Judge failures
// return an error wrapping ErrValidationUnavailable and are never cached.
func (s *Service) Validate(ctx context.Context, vc domain.ValidationContext) (domain.Verdict, error) {
	if vc.HasEmptyAnswer() {
		return domain.EmptyAnswerVerdict(), nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	s.counters.inc(counterTotalRequests)

	if ExactMatch(vc.LearnerAnswer, vc.ReferenceAnswer) {
		s.counters.inc(counterExactMatches)
		return exactMatchVerdict(), nil
	}

	if ratio := Similarity(vc.LearnerAnswer, vc.ReferenceAnswer); ratio >= s.config.SimilarityThreshold && ratio < 1 {
		s.counters.inc(counterSimilarityMatches)
		return similarityVerdict(ratio), nil
	}

	key := vc.Key()
	if verdict, ok := s.lookup(ctx, key); ok {
		return verdict, nil
	}
	s.counters.inc(counterCacheMisses)

	hints := s.hints(ctx, vc)
	s.counters.inc(counterAICalls)
	verdict, err := s.evaluator.Evaluate(ctx, vc, hints)
	if err != nil {
		log.ErrorContext(ctx, "answer validation failed",
			slog.String("cache_key", key),
			slog.String("error", err.Error()))
		return domain.Verdict{}, fmt.Errorf("%w: %w", ErrValidationUnavailable, err)
	}

	s.put(ctx, vc, verdict)
	return verdict, nil
}

// lookup consults the memory tier and then the durable tier. Durable failures
// count as a miss.
func (s *Service) lookup(ctx context.Context, key string) (domain.Verdict, bool) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	if entry, ok := s.memory.get(key, now); ok {
		s.counters.inc(counterMemoryHits)
		verdict := entry.Verdict
		verdict.Source = domain.VerdictSourceMemory
		return verdict, true
	}

	entry, err := s.durable.Get(ctx, key)
	if err != nil {
		if !store.IsNotFoundError(err) {
			durableErrorsTotal.WithLabelValues("get").Inc()
			log.WarnContext(ctx, "durable cache read failed, treating as miss",
				slog.String("cache_key", key),
				slog.String("error", err.Error()))
		}
		return domain.Verdict{}, false
	}

	entry.Touch(now)
	if s.memory.put(*entry) {
		memoryEvictionsTotal.Inc()
	}
	if err := s.durable.Touch(ctx, key, now); err != nil {
		durableErrorsTotal.WithLabelValues("touch").Inc()
		log.WarnContext(ctx, "failed to update durable access stats",
			slog.String("cache_key", key),
			slog.String("error", err.Error()))
	}

	s.counters.inc(counterDBHits)
	verdict := entry.Verdict
	verdict.Source = domain.VerdictSourceDurable
	return verdict, true
}

// put writes a judged verdict through to both tiers. Durable failures are
// logged and swallowed.
func (s *Service) put(ctx context.Context, vc domain.ValidationContext, verdict domain.Verdict) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entry, err := domain.NewCacheEntry(vc, verdict, s.now())
	if err != nil {
		log.ErrorContext(ctx, "refusing to cache invalid verdict",
			slog.String("error", err.Error()))
		return
	}

	if s.memory.put(*entry) {
		memoryEvictionsTotal.Inc()
	}
	if err := s.durable.Upsert(ctx, entry); err != nil {
		durableErrorsTotal.WithLabelValues("upsert").Inc()
		log.ErrorContext(ctx, "durable cache write failed",
			slog.String("cache_key", entry.Key),
			slog.String("error", err.Error()))
	}
}

// hints looks up paraphrases of the word, or of the reference answer when no
// word is given. Lookup failures only cost the hints.
func (s *Service) hints(ctx context.Context, vc domain.ValidationContext) []string {
	term := vc.Word
	if term == "" {
		term = vc.ReferenceAnswer
	}

	hints, err := s.paraphrases.Paraphrases(ctx, term)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "paraphrase lookup failed",
			slog.String("error", err.Error()))
		return nil
	}
	return hints
}

// Stats returns the counters, derived rates and current tier sizes.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats := s.counters.snapshot()
	stats.MemoryCacheSize = s.memory.len()

	size, err := s.durable.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to count durable cache entries: %w", err)
	}
	stats.DurableCacheSize = size
	return stats, nil
}

// Purge removes durable entries created more than olderThan ago, or every
// entry when olderThan is nil. On success the memory tier is cleared and the
// counters are reset. It returns the number of durable entries removed.
func (s *Service) Purge(ctx context.Context, olderThan *time.Duration) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		removed int64
		err     error
	)
	if olderThan == nil {
		removed, err = s.durable.DeleteAll(ctx)
	} else {
		if *olderThan < 0 {
			return 0, fmt.Errorf("%w: older_than must not be negative", domain.ErrValidation)
		}
		removed, err = s.durable.DeleteOlderThan(ctx, s.now().Add(-*olderThan))
	}
	if err != nil {
		return 0, fmt.Errorf("failed to purge validation cache: %w", err)
	}

	s.memory.purge()
	s.counters.reset()
	purgedEntriesTotal.Add(float64(removed))

	attrs := []any{slog.Int64("removed", removed)}
	if olderThan != nil {
		attrs = append(attrs, slog.Duration("older_than", *olderThan))
	}
	log.InfoContext(ctx, "validation cache purged", attrs...)
	return removed, nil
}

// PurgeStale removes durable entries older than the configured TTL.
func (s *Service) PurgeStale(ctx context.Context) (int64, error) {
	ttl := s.config.TTL
	return s.Purge(ctx, &ttl)
}
