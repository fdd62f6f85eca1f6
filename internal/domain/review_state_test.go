package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDifficultyRatingValue(t *testing.T) {
	t.Parallel()

	tests := map[DifficultyRating]int{
		DifficultyEasy:   2,
		DifficultyMedium: 3,
		DifficultyHard:   4,
		DifficultyAgain:  5,
		DifficultyUnset:  3,
	}
	for rating, want := range tests {
		if got := rating.Value(); got != want {
			t.Errorf("%q.Value() = %d, want %d", rating, got, want)
		}
	}

	if DifficultyRating("impossible").IsValid() {
		t.Error("Expected unknown rating to be invalid")
	}
}

func TestNewCardReviewState(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	learnerID, cardID := uuid.New(), uuid.New()

	state, err := NewCardReviewState(learnerID, cardID, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if state.ReviewCount != 0 || state.MasteryLevel != 0 {
		t.Errorf("Expected a fresh state, got %+v", state)
	}
	if !state.NextReviewAt.Equal(now) {
		t.Errorf("Expected the card to be due immediately, got %v", state.NextReviewAt)
	}
	if state.State() != StateUnseen {
		t.Errorf("Expected unseen, got %s", state.State())
	}

	if _, err := NewCardReviewState(uuid.Nil, cardID, now); err != ErrEmptyLearnerID {
		t.Errorf("Expected %v, got %v", ErrEmptyLearnerID, err)
	}
	if _, err := NewCardReviewState(learnerID, uuid.Nil, now); err != ErrEmptyCardID {
		t.Errorf("Expected %v, got %v", ErrEmptyCardID, err)
	}
}

func TestCardReviewStateValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	valid := func() CardReviewState {
		last := now
		return CardReviewState{
			LearnerID:      uuid.New(),
			CardID:         uuid.New(),
			ReviewCount:    2,
			LastReviewedAt: &last,
			Difficulty:     DifficultyMedium,
			MasteryLevel:   0.3,
			NextReviewAt:   now.AddDate(0, 0, 3),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*CardReviewState)
		wantErr error
	}{
		{"valid", func(*CardReviewState) {}, nil},
		{"negative count", func(s *CardReviewState) { s.ReviewCount = -1 }, ErrNegativeReviewCount},
		{"mastery above one", func(s *CardReviewState) { s.MasteryLevel = 1.01 }, ErrOutOfRange},
		{"unknown difficulty", func(s *CardReviewState) { s.Difficulty = "brutal" }, ErrInvalidDifficulty},
		{"next before last", func(s *CardReviewState) { s.NextReviewAt = now.Add(-time.Hour) }, ErrNextReviewBeforeLast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCardReviewStateState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count   int
		mastery float64
		want    LearningState
	}{
		{0, 0, StateUnseen},
		{1, 0.1, StateLearning},
		{4, 0.5, StateReviewing},
		{9, 0.8, StateMastered},
		{1, 0.9, StateMastered},
	}
	for _, tt := range tests {
		s := CardReviewState{ReviewCount: tt.count, MasteryLevel: tt.mastery}
		if got := s.State(); got != tt.want {
			t.Errorf("count=%d mastery=%v: got %s, want %s", tt.count, tt.mastery, got, tt.want)
		}
	}
}

func TestCardReviewStateClone(t *testing.T) {
	t.Parallel()

	last := time.Now()
	s := &CardReviewState{LearnerID: uuid.New(), CardID: uuid.New(), LastReviewedAt: &last}
	c := s.Clone()
	*c.LastReviewedAt = last.Add(time.Hour)
	if !s.LastReviewedAt.Equal(last) {
		t.Error("Expected clone to own its LastReviewedAt")
	}
}
