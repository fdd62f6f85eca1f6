package validation

import (
	"fmt"
	"strings"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// DefaultSimilarityThreshold is the Jaccard ratio at or above which two
// answers are accepted without asking the judge.
const DefaultSimilarityThreshold = 0.85

// ExactMatch reports whether a and b are equal after trimming and case folding.
func ExactMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Similarity returns the Jaccard ratio of the case-folded word sets of a and b.
// It is 0 when either side has no words.
func Similarity(a, b string) float64 {
	left := wordSet(a)
	right := wordSet(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	shared := 0
	for w := range left {
		if _, ok := right[w]; ok {
			shared++
		}
	}
	union := len(left) + len(right) - shared
	return float64(shared) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func exactMatchVerdict() domain.Verdict {
	return domain.Verdict{
		IsCorrect:          true,
		Confidence:         1.0,
		Reasoning:          "Exact match found",
		SemanticSimilarity: 1.0,
		IsMeaningful:       true,
		Feedback:           "Perfect! Exact match.",
		Encouragement:      "Excellent! You got it exactly right!",
		Source:             domain.VerdictSourceExact,
	}
}

func similarityVerdict(ratio float64) domain.Verdict {
	return domain.Verdict{
		IsCorrect:          true,
		Confidence:         ratio,
		Reasoning:          fmt.Sprintf("High similarity match (%.2f)", ratio),
		SemanticSimilarity: ratio,
		IsMeaningful:       true,
		Feedback:           "Great! Very close to the correct answer.",
		Encouragement:      "You're doing well! Keep it up!",
		Source:             domain.VerdictSourceSimilarity,
	}
}
