package domain

import (
	"errors"
	"testing"
)

func TestParseCEFRLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    CEFRLevel
		wantErr bool
	}{
		{"b2", LevelB2, false},
		{" C1 ", LevelC1, false},
		{"", "", false},
		{"D1", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCEFRLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("ParseCEFRLevel(%q): expected ErrInvalidLevel, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCEFRLevel(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSessionFiltersMatches(t *testing.T) {
	t.Parallel()

	card := CardRef{Word: "perro", Topic: "Animals", Level: LevelA1}

	tests := []struct {
		name    string
		filters SessionFilters
		want    bool
	}{
		{"no filters", SessionFilters{}, true},
		{"topic case-insensitive", SessionFilters{Topic: "animals"}, true},
		{"other topic", SessionFilters{Topic: "food"}, false},
		{"level match", SessionFilters{Level: LevelA1}, true},
		{"level mismatch", SessionFilters{Level: LevelB1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Matches(card); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucketQuotas(t *testing.T) {
	t.Parallel()

	q := BucketQuotas{Overdue: 4, New: 3, Review: 2, Mastered: 1}
	if q.Total() != 10 {
		t.Errorf("Expected total 10, got %d", q.Total())
	}
	for _, b := range BackfillOrder {
		if q.For(b) == 0 {
			t.Errorf("Expected non-zero quota for %s", b)
		}
	}
	if q.For("unknown") != 0 {
		t.Error("Expected zero quota for unknown bucket")
	}
}
