package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/validation"
)

// CachePurger removes durable cache entries past the TTL horizon.
type CachePurger interface {
	PurgeStale(ctx context.Context) (int64, error)
}

// CacheAuditor produces a quality report over a sample of the durable cache.
type CacheAuditor interface {
	Audit(ctx context.Context, sampleSize int) (validation.QualityReport, error)
}

// PurgeTask removes stale entries from the durable validation cache.
type PurgeTask struct {
	id     uuid.UUID
	purger CachePurger
	logger *slog.Logger
}

// NewPurgeTask creates a purge task with a fresh ID.
func NewPurgeTask(purger CachePurger, logger *slog.Logger) *PurgeTask {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeTask{id: uuid.New(), purger: purger, logger: logger}
}

// ID implements Task.
func (t *PurgeTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *PurgeTask) Type() string { return TaskTypeCachePurge }

// Execute implements Task.
func (t *PurgeTask) Execute(ctx context.Context) error {
	removed, err := t.purger.PurgeStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge stale cache entries: %w", err)
	}
	t.logger.Info("stale cache entries purged",
		slog.String("task_id", t.id.String()),
		slog.Int64("removed", removed))
	return nil
}

// AuditTask samples the durable cache and logs the resulting quality report.
type AuditTask struct {
	id         uuid.UUID
	auditor    CacheAuditor
	sampleSize int
	logger     *slog.Logger
}

// NewAuditTask creates an audit task with a fresh ID.
func NewAuditTask(auditor CacheAuditor, sampleSize int, logger *slog.Logger) *AuditTask {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditTask{id: uuid.New(), auditor: auditor, sampleSize: sampleSize, logger: logger}
}

// ID implements Task.
func (t *AuditTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *AuditTask) Type() string { return TaskTypeCacheAudit }

// Execute implements Task.
func (t *AuditTask) Execute(ctx context.Context) error {
	report, err := t.auditor.Audit(ctx, t.sampleSize)
	if err != nil {
		return fmt.Errorf("failed to audit validation cache: %w", err)
	}

	level := slog.LevelInfo
	if needsAttention(report) {
		level = slog.LevelWarn
	}
	t.logger.Log(ctx, level, "validation cache audit completed",
		slog.String("task_id", t.id.String()),
		slog.Int("entries_checked", report.EntriesChecked),
		slog.Int("exact_matches", report.ExactMatches),
		slog.Int("high_similarity", report.HighSimilarity),
		slog.Float64("mean_ai_confidence", report.MeanAIConfidence),
		slog.Int("context_buckets", report.ContextBuckets),
		slog.Float64("quality_score", report.Score),
		slog.Any("recommendations", report.Recommendations))
	return nil
}

// needsAttention reports whether the audit recommended anything beyond the
// all-clear.
func needsAttention(report validation.QualityReport) bool {
	for _, r := range report.Recommendations {
		if r != validation.RecommendQualityGood {
			return true
		}
	}
	return false
}
