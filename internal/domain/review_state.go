package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DifficultyRating is how hard the last attempt on a card turned out to be.
type DifficultyRating string

// Possible difficulty ratings. The empty rating means "not yet rated".
const (
	DifficultyUnset  DifficultyRating = ""
	DifficultyEasy   DifficultyRating = "easy"
	DifficultyMedium DifficultyRating = "medium"
	DifficultyHard   DifficultyRating = "hard"
	DifficultyAgain  DifficultyRating = "again"
)

// Value maps the rating onto the 1..5 scale used by the mastery estimate.
// Unset ratings count as medium.
func (d DifficultyRating) Value() int {
	switch d {
	case DifficultyEasy:
		return 2
	case DifficultyHard:
		return 4
	case DifficultyAgain:
		return 5
	default:
		return 3
	}
}

// IsValid reports whether the rating is one of the known values or unset.
func (d DifficultyRating) IsValid() bool {
	switch d {
	case DifficultyUnset, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyAgain:
		return true
	default:
		return false
	}
}

// LearningState is the derived stage of a card in a learner's progression.
type LearningState string

// Learning states. A card only moves forward through them.
const (
	StateUnseen    LearningState = "unseen"
	StateLearning  LearningState = "learning"
	StateReviewing LearningState = "reviewing"
	StateMastered  LearningState = "mastered"
)

// MasteredThreshold is the mastery level at which a card counts as mastered.
const MasteredThreshold = 0.8

// Validation errors for CardReviewState
var (
	ErrEmptyLearnerID       = errors.New("review state learner ID cannot be empty")
	ErrEmptyCardID          = errors.New("review state card ID cannot be empty")
	ErrNegativeReviewCount  = errors.New("review count must be greater than or equal to 0")
	ErrNextReviewBeforeLast = errors.New("next review cannot precede last review")
)

// CardReviewState tracks one learner's progress on one card.
type CardReviewState struct {
	LearnerID      uuid.UUID        `json:"learner_id"`
	CardID         uuid.UUID        `json:"card_id"`
	ReviewCount    int              `json:"review_count"`
	LastReviewedAt *time.Time       `json:"last_reviewed_at,omitempty"`
	Difficulty     DifficultyRating `json:"difficulty_rating,omitempty"`
	MasteryLevel   float64          `json:"mastery_level"`
	NextReviewAt   time.Time        `json:"next_review_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewCardReviewState creates the state of a card nobody has attempted yet.
// It is due immediately.
func NewCardReviewState(learnerID, cardID uuid.UUID, now time.Time) (*CardReviewState, error) {
	state := &CardReviewState{
		LearnerID:    learnerID,
		CardID:       cardID,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks the state invariants.
func (s *CardReviewState) Validate() error {
	if s.LearnerID == uuid.Nil {
		return ErrEmptyLearnerID
	}
	if s.CardID == uuid.Nil {
		return ErrEmptyCardID
	}
	if s.ReviewCount < 0 {
		return ErrNegativeReviewCount
	}
	if s.MasteryLevel < 0 || s.MasteryLevel > 1 {
		return fmt.Errorf("%w: mastery level %v", ErrOutOfRange, s.MasteryLevel)
	}
	if !s.Difficulty.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, s.Difficulty)
	}
	if s.LastReviewedAt != nil && s.NextReviewAt.Before(*s.LastReviewedAt) {
		return ErrNextReviewBeforeLast
	}
	return nil
}

// State derives the learning stage from the review count and mastery level.
func (s *CardReviewState) State() LearningState {
	switch {
	case s.ReviewCount == 0:
		return StateUnseen
	case s.MasteryLevel >= MasteredThreshold:
		return StateMastered
	case s.ReviewCount == 1:
		return StateLearning
	default:
		return StateReviewing
	}
}

// Clone returns a deep copy of the state.
func (s *CardReviewState) Clone() *CardReviewState {
	c := *s
	if s.LastReviewedAt != nil {
		t := *s.LastReviewedAt
		c.LastReviewedAt = &t
	}
	return &c
}
