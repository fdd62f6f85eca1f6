package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
)

// minAuditEntries is the smallest sample the auditor will score.
const minAuditEntries = 10

// auditSimilarity is the similarity counted as a high-similarity entry.
const auditSimilarity = 0.85

// Audit recommendations.
const (
	RecommendNotEnoughEntries = "Not enough cache entries for quality analysis"
	RecommendAdjustThreshold  = "Consider adjusting similarity threshold"
	RecommendReviewConfidence = "AI confidence scores may need review"
	RecommendLimitedDiversity = "Limited context diversity in cache"
	RecommendQualityGood      = "Cache quality is good"
)

// QualityReport is the result of a cache quality audit.
type QualityReport struct {
	EntriesChecked   int      `json:"total_entries_checked"`
	ExactMatches     int      `json:"exact_match_consistency"`
	HighSimilarity   int      `json:"similarity_threshold_accuracy"`
	MeanAIConfidence float64  `json:"ai_result_consistency"`
	ContextBuckets   int      `json:"context_isolation"`
	Score            float64  `json:"quality_score"`
	Recommendations  []string `json:"recommendations"`
}

// Audit samples up to sampleSize durable entries and scores how healthy the
// cache looks. It is diagnostic only and never changes the cache.
func (s *Service) Audit(ctx context.Context, sampleSize int) (QualityReport, error) {
	if sampleSize <= 0 {
		return QualityReport{}, fmt.Errorf("%w: sample size must be positive", domain.ErrValidation)
	}

	entries, err := s.durable.Sample(ctx, sampleSize)
	if err != nil {
		return QualityReport{}, fmt.Errorf("failed to sample validation cache: %w", err)
	}

	report := scoreEntries(entries)
	auditScore.Set(report.Score)
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "validation cache audited",
		slog.Int("entries_checked", report.EntriesChecked),
		slog.Float64("score", report.Score))
	return report, nil
}

func scoreEntries(entries []*domain.CacheEntry) QualityReport {
	report := QualityReport{EntriesChecked: len(entries)}
	if len(entries) < minAuditEntries {
		report.Recommendations = []string{RecommendNotEnoughEntries}
		return report
	}

	var aiSum float64
	var aiCount int
	buckets := make(map[string]struct{})
	for _, e := range entries {
		v := e.Verdict
		if v.IsCorrect && v.Confidence == 1.0 {
			report.ExactMatches++
		}
		if v.SemanticSimilarity >= auditSimilarity {
			report.HighSimilarity++
		}
		if v.Confidence > 0 && v.Confidence < 1 {
			aiSum += v.Confidence
			aiCount++
		}
		buckets[e.BucketKey()] = struct{}{}
	}
	if aiCount > 0 {
		report.MeanAIConfidence = aiSum / float64(aiCount)
	}
	report.ContextBuckets = len(buckets)

	// Weights in tenths: 3, 3, 2, 2.
	points := 0
	if report.ExactMatches > 0 {
		points += 3
	}
	if report.HighSimilarity > 0 {
		points += 3
	}
	if report.MeanAIConfidence > 0.5 {
		points += 2
	}
	if report.ContextBuckets > 1 {
		points += 2
	}
	report.Score = float64(points) / 10

	if report.Score < 0.7 {
		report.Recommendations = append(report.Recommendations, RecommendAdjustThreshold)
	}
	if report.MeanAIConfidence < 0.6 {
		report.Recommendations = append(report.Recommendations, RecommendReviewConfidence)
	}
	if report.ContextBuckets < 2 {
		report.Recommendations = append(report.Recommendations, RecommendLimitedDiversity)
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = []string{RecommendQualityGood}
	}
	return report
}
