package judge

import (
	"context"
	"fmt"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// Result is the raw verdict reported by a judge, before the adapter's policy is applied.
type Result struct {
	IsCorrect           bool
	Confidence          float64
	Reasoning           string
	SemanticSimilarity  float64
	IsMeaningful        bool
	SuggestedCorrection string
	Feedback            string
	Encouragement       string
}

// Validate rejects scores outside [0, 1] with ErrInvalidResponse.
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: empty result", ErrInvalidResponse)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range", ErrInvalidResponse, r.Confidence)
	}
	if r.SemanticSimilarity < 0 || r.SemanticSimilarity > 1 {
		return fmt.Errorf("%w: semantic similarity %v out of range", ErrInvalidResponse, r.SemanticSimilarity)
	}
	return nil
}

// Judge decides whether a learner's answer is semantically equivalent to the reference.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Judge interface {
	// Judge evaluates the context. Hints are optional paraphrases of the word or
	// reference answer that the judge may treat as acceptable wording.
	//
	// Implementations return ErrInvalidResponse for malformed output,
	// ErrContentBlocked for refusals and any other error for transient failures.
	Judge(ctx context.Context, vc domain.ValidationContext, hints []string) (*Result, error)
}
