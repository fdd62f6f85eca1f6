package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidationContextKey(t *testing.T) {
	t.Parallel()

	base := ValidationContext{
		LearnerAnswer:   "a big dog",
		ReferenceAnswer: "a large dog",
		QuestionKind:    "definition",
		StudyMode:       "recall",
		Word:            "dog",
	}

	// Normalization makes case and surrounding whitespace irrelevant
	shouty := ValidationContext{
		LearnerAnswer:   "  A Big Dog ",
		ReferenceAnswer: "A LARGE DOG",
		QuestionKind:    "Definition",
		StudyMode:       " recall",
		Word:            "Dog",
	}
	if base.Key() != shouty.Key() {
		t.Errorf("Expected equal keys for contexts differing only in case/whitespace")
	}

	if len(base.Key()) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(base.Key()))
	}

	variants := map[string]ValidationContext{
		"learner answer": func() ValidationContext { c := base; c.LearnerAnswer = "a huge dog"; return c }(),
		"reference":      func() ValidationContext { c := base; c.ReferenceAnswer = "a giant dog"; return c }(),
		"question kind":  func() ValidationContext { c := base; c.QuestionKind = "usage"; return c }(),
		"study mode":     func() ValidationContext { c := base; c.StudyMode = "recognition"; return c }(),
		"word":           func() ValidationContext { c := base; c.Word = "hound"; return c }(),
		"context":        func() ValidationContext { c := base; c.FreeTextContext = "pets"; return c }(),
	}
	for name, v := range variants {
		if v.Key() == base.Key() {
			t.Errorf("Expected a different key when %s differs", name)
		}
	}
}

func TestValidationContextKeyFieldBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b ValidationContext
	}{
		{
			name: "separator moves between answers",
			a:    ValidationContext{LearnerAnswer: "cat|dog", ReferenceAnswer: "animal", QuestionKind: "definition", StudyMode: "recall"},
			b:    ValidationContext{LearnerAnswer: "cat", ReferenceAnswer: "dog|animal", QuestionKind: "definition", StudyMode: "recall"},
		},
		{
			name: "text moves from word to context",
			a:    ValidationContext{LearnerAnswer: "cat", ReferenceAnswer: "cat", Word: "pets"},
			b:    ValidationContext{LearnerAnswer: "cat", ReferenceAnswer: "cat", FreeTextContext: "pets"},
		},
		{
			name: "length prefix lookalike",
			a:    ValidationContext{LearnerAnswer: "1:a", ReferenceAnswer: ""},
			b:    ValidationContext{LearnerAnswer: "", ReferenceAnswer: "1:a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.Key() == tt.b.Key() {
				t.Errorf("Expected distinct keys, both were %s", tt.a.Key())
			}
		})
	}
}

func TestValidationContextHasEmptyAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		learner string
		ref     string
		want    bool
	}{
		{"both present", "cat", "cat", false},
		{"blank learner", "   ", "cat", true},
		{"empty reference", "cat", "", true},
		{"both empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ValidationContext{LearnerAnswer: tt.learner, ReferenceAnswer: tt.ref}
			if got := c.HasEmptyAnswer(); got != tt.want {
				t.Errorf("HasEmptyAnswer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerdictValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verdict Verdict
		wantErr bool
	}{
		{"in range", Verdict{Confidence: 0.7, SemanticSimilarity: 0.4}, false},
		{"bounds", Verdict{Confidence: 1, SemanticSimilarity: 0}, false},
		{"confidence too high", Verdict{Confidence: 1.2}, true},
		{"negative similarity", Verdict{Confidence: 0.5, SemanticSimilarity: -0.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.verdict.Validate()
			if tt.wantErr && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Expected ErrOutOfRange, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestNewCacheEntry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	vc := ValidationContext{LearnerAnswer: "x", ReferenceAnswer: "y", QuestionKind: "q", StudyMode: "m"}

	entry, err := NewCacheEntry(vc, Verdict{IsCorrect: true, Confidence: 0.9, Source: VerdictSourceJudge}, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if entry.Key != vc.Key() {
		t.Errorf("Expected key %s, got %s", vc.Key(), entry.Key)
	}
	if entry.Verdict.Source != "" {
		t.Errorf("Expected source to be stripped from cached verdict, got %q", entry.Verdict.Source)
	}
	if entry.AccessCount != 0 || entry.LastAccessed != nil {
		t.Errorf("Expected fresh access metadata, got %d / %v", entry.AccessCount, entry.LastAccessed)
	}

	later := now.Add(time.Minute)
	entry.Touch(later)
	entry.Touch(later)
	if entry.AccessCount != 2 {
		t.Errorf("Expected access count 2, got %d", entry.AccessCount)
	}
	if entry.LastAccessed == nil || !entry.LastAccessed.Equal(later) {
		t.Errorf("Expected last accessed %v, got %v", later, entry.LastAccessed)
	}

	if _, err := NewCacheEntry(vc, Verdict{Confidence: 2}, now); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
}

func TestCacheEntryBucketKey(t *testing.T) {
	t.Parallel()

	a := CacheEntry{Context: ValidationContext{QuestionKind: "Definition", StudyMode: "recall", Word: "Dog"}}
	b := CacheEntry{Context: ValidationContext{QuestionKind: "definition", StudyMode: "RECALL", Word: "dog", LearnerAnswer: "other"}}
	if a.BucketKey() != b.BucketKey() {
		t.Errorf("Expected same bucket, got %q and %q", a.BucketKey(), b.BucketKey())
	}
}
