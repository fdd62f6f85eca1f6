package srs

import (
	"math"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// Attempt is the outcome of one answer to a card, as judged and as reported by the learner.
type Attempt struct {
	// IsCorrect is the final verdict on the answer.
	IsCorrect bool
	// Confidence is the raw confidence of the verdict, in [0, 1].
	Confidence float64
	// HintsUsed is how many hints the learner revealed before answering.
	HintsUsed int
	// ResponseTime is how long the learner took to answer. Zero means unknown.
	ResponseTime time.Duration
	// UserConfidence is the learner's self-rating on a 1..5 scale. Zero means not supplied.
	UserConfidence int
}

// adjustConfidence corrects the judge's raw confidence with the learner's behaviour.
//
// Very fast answers are slightly discounted as likely guesses, very slow ones as
// likely struggles. Each hint costs a fixed penalty up to a cap. A supplied
// self-rating nudges the result up or down around the neutral rating of 3.
// The result is clamped to [0, 1].
func adjustConfidence(a Attempt, params *Params) float64 {
	c := a.Confidence

	if a.ResponseTime > 0 {
		switch {
		case a.ResponseTime < params.FastResponse:
			c *= params.FastResponseFactor
		case a.ResponseTime > params.SlowResponse:
			c *= params.SlowResponseFactor
		}
	}

	if a.HintsUsed > 0 {
		c -= math.Min(float64(a.HintsUsed)*params.HintPenalty, params.MaxHintPenalty)
	}

	if a.UserConfidence >= 1 && a.UserConfidence <= 5 {
		c += float64(a.UserConfidence-3) * params.UserConfidenceWeight
	}

	return clamp01(c)
}

// deriveDifficulty rates the attempt from its correctness and adjusted confidence.
func deriveDifficulty(correct bool, adjusted float64, params *Params) domain.DifficultyRating {
	switch {
	case !correct:
		return domain.DifficultyAgain
	case adjusted >= params.EasyThreshold:
		return domain.DifficultyEasy
	case adjusted >= params.MediumThreshold:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

// nextMastery is the single authoritative mastery update: a correct attempt adds
// the adjusted confidence times the increment, capped at 1; an incorrect one
// leaves mastery untouched.
func nextMastery(current float64, correct bool, adjusted float64, params *Params) float64 {
	if !correct {
		return current
	}
	return math.Min(1, current+adjusted*params.MasteryIncrement)
}

// stepDelay looks up the scheduling delay for a review count in the step table.
func stepDelay(reviewCount int, params *Params) time.Duration {
	steps := params.StepDays
	if len(steps) == 0 || reviewCount <= 0 {
		return 0
	}
	if reviewCount >= len(steps) {
		reviewCount = len(steps) - 1
	}
	return time.Duration(steps[reviewCount]) * 24 * time.Hour
}

// calculateNextReviewAt applies the step table to the last review time. A card
// that was never reviewed is due at now.
func calculateNextReviewAt(state *domain.CardReviewState, now time.Time, params *Params) time.Time {
	base := now
	if state.LastReviewedAt != nil {
		base = *state.LastReviewedAt
	}
	return base.Add(stepDelay(state.ReviewCount, params))
}

// calculateNextState returns a new state reflecting one attempt. The input is not modified.
func calculateNextState(
	state *domain.CardReviewState,
	attempt Attempt,
	now time.Time,
	params *Params,
) *domain.CardReviewState {
	next := state.Clone()

	adjusted := adjustConfidence(attempt, params)

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.ReviewCount++
	next.MasteryLevel = nextMastery(state.MasteryLevel, attempt.IsCorrect, adjusted, params)
	next.Difficulty = deriveDifficulty(attempt.IsCorrect, adjusted, params)
	next.NextReviewAt = calculateNextReviewAt(next, now, params)
	next.UpdatedAt = now

	return next
}

// EstimateMastery derives a mastery level from the review history alone:
// min(1, min(1, 0.2*reviewCount) * (6 - difficulty)/5), where an unset
// difficulty counts as medium.
//
// It is only used for states that carry no stored mastery level. Once a state has
// been through RecordAttempt the incremental value is the source of truth.
func EstimateMastery(reviewCount int, difficulty domain.DifficultyRating) float64 {
	if reviewCount <= 0 {
		return 0
	}
	base := math.Min(1, float64(reviewCount)*0.2)
	factor := float64(6-difficulty.Value()) / 5
	return clamp01(base * factor)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
