package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CEFRLevel is a Common European Framework proficiency level.
type CEFRLevel string

// Supported levels, from beginner to proficient.
const (
	LevelA1 CEFRLevel = "A1"
	LevelA2 CEFRLevel = "A2"
	LevelB1 CEFRLevel = "B1"
	LevelB2 CEFRLevel = "B2"
	LevelC1 CEFRLevel = "C1"
	LevelC2 CEFRLevel = "C2"
)

// ParseCEFRLevel accepts a level in any case. The empty string parses to the
// empty level, which means "any level" when used as a filter.
func ParseCEFRLevel(s string) (CEFRLevel, error) {
	l := CEFRLevel(strings.ToUpper(strings.TrimSpace(s)))
	if l == "" {
		return "", nil
	}
	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}

// Validate returns ErrInvalidLevel for anything outside A1..C2.
func (l CEFRLevel) Validate() error {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, string(l))
	}
}

// CardRef identifies a vocabulary card and the attributes sessions filter on.
type CardRef struct {
	ID    uuid.UUID `json:"id"`
	Word  string    `json:"word"`
	Topic string    `json:"topic,omitempty"`
	Level CEFRLevel `json:"level,omitempty"`
}

// CardCandidate pairs a card with the learner's review state for it.
type CardCandidate struct {
	Card  CardRef         `json:"card"`
	State CardReviewState `json:"state"`
}

// SessionFilters narrows the cards a session is drawn from. Zero values match everything.
type SessionFilters struct {
	Topic string    `json:"topic,omitempty"`
	Level CEFRLevel `json:"level,omitempty"`
}

// Matches reports whether the card passes the filters.
func (f SessionFilters) Matches(card CardRef) bool {
	if f.Topic != "" && !strings.EqualFold(f.Topic, card.Topic) {
		return false
	}
	if f.Level != "" && f.Level != card.Level {
		return false
	}
	return true
}
