package srs

import (
	"errors"
	"math"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// Common errors
var (
	ErrNilState          = errors.New("card review state cannot be nil")
	ErrInvalidConfidence = errors.New("attempt confidence must be within [0, 1]")
	ErrInvalidHints      = errors.New("hints used cannot be negative")
	ErrInvalidUserRating = errors.New("user confidence must be between 1 and 5")
)

// Service defines the interface for mastery and scheduling operations
type Service interface {
	// RecordAttempt computes the state that results from one attempt on a card
	RecordAttempt(
		state *domain.CardReviewState,
		attempt Attempt,
		now time.Time,
	) (*domain.CardReviewState, error)

	// NextReviewAt reports when the card is due according to the step table
	NextReviewAt(state *domain.CardReviewState, now time.Time) (time.Time, error)

	// SelectSession builds a session of at most size cards from the candidates
	SelectSession(candidates []domain.CardCandidate, size int, now time.Time) domain.SessionSelection
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// RecordAttempt implements the Service interface
func (s *defaultService) RecordAttempt(
	state *domain.CardReviewState,
	attempt Attempt,
	now time.Time,
) (*domain.CardReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if err := validateAttempt(attempt); err != nil {
		return nil, err
	}

	return calculateNextState(state, attempt, now, s.params), nil
}

// NextReviewAt implements the Service interface
func (s *defaultService) NextReviewAt(state *domain.CardReviewState, now time.Time) (time.Time, error) {
	if state == nil {
		return time.Time{}, ErrNilState
	}
	return calculateNextReviewAt(state, now, s.params), nil
}

// SelectSession implements the Service interface
func (s *defaultService) SelectSession(
	candidates []domain.CardCandidate,
	size int,
	now time.Time,
) domain.SessionSelection {
	return selectSession(candidates, size, now, s.params)
}

func validateAttempt(a Attempt) error {
	if a.Confidence < 0 || a.Confidence > 1 || math.IsNaN(a.Confidence) {
		return ErrInvalidConfidence
	}
	if a.HintsUsed < 0 {
		return ErrInvalidHints
	}
	if a.UserConfidence != 0 && (a.UserConfidence < 1 || a.UserConfidence > 5) {
		return ErrInvalidUserRating
	}
	return nil
}
