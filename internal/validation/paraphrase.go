package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ParaphraseLookup supplies acceptable alternative wordings for a word. The
// hints are passed to the judge on a cache miss.
type ParaphraseLookup interface {
	Paraphrases(ctx context.Context, word string) ([]string, error)
}

// NoParaphrases is the lookup used when no thesaurus is configured.
type NoParaphrases struct{}

// Paraphrases always returns nil.
func (NoParaphrases) Paraphrases(context.Context, string) ([]string, error) {
	return nil, nil
}

// Thesaurus is a static, read-only paraphrase table keyed by lower-cased word.
type Thesaurus struct {
	entries map[string][]string
}

var _ ParaphraseLookup = (*Thesaurus)(nil)

// NewThesaurus builds a thesaurus from a word to paraphrases map.
func NewThesaurus(entries map[string][]string) *Thesaurus {
	t := &Thesaurus{entries: make(map[string][]string, len(entries))}
	for word, alts := range entries {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" {
			continue
		}
		for _, alt := range alts {
			alt = strings.TrimSpace(alt)
			if alt != "" {
				t.entries[key] = append(t.entries[key], alt)
			}
		}
	}
	return t
}

// LoadThesaurus reads a JSON object of the form {"word": ["paraphrase", ...]}.
func LoadThesaurus(path string) (*Thesaurus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thesaurus %s: %w", path, err)
	}

	var entries map[string][]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse thesaurus %s: %w", path, err)
	}
	return NewThesaurus(entries), nil
}

// Paraphrases returns a copy of the paraphrases of word, or nil if it is unknown.
func (t *Thesaurus) Paraphrases(_ context.Context, word string) ([]string, error) {
	alts := t.entries[strings.ToLower(strings.TrimSpace(word))]
	if len(alts) == 0 {
		return nil, nil
	}
	out := make([]string, len(alts))
	copy(out, alts)
	return out, nil
}

// Len returns the number of words in the thesaurus.
func (t *Thesaurus) Len() int {
	return len(t.entries)
}
