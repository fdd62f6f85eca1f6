package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThesaurus(t *testing.T) {
	th := NewThesaurus(map[string][]string{
		" Bed ": {"cot", "", "bunk"},
		"":      {"ignored"},
		"chair": {},
	})
	ctx := context.Background()

	got, err := th.Paraphrases(ctx, "BED")
	require.NoError(t, err)
	assert.Equal(t, []string{"cot", "bunk"}, got)

	got[0] = "mutated"
	again, _ := th.Paraphrases(ctx, "bed")
	assert.Equal(t, "cot", again[0], "callers get a copy")

	got, err = th.Paraphrases(ctx, "chair")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, 1, th.Len())
}

func TestLoadThesaurus(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "thesaurus.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"happy": ["glad", "joyful"]}`), 0o600))
	th, err := LoadThesaurus(path)
	require.NoError(t, err)
	got, err := th.Paraphrases(context.Background(), "Happy")
	require.NoError(t, err)
	assert.Equal(t, []string{"glad", "joyful"}, got)

	_, err = LoadThesaurus(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["not", "an", "object"]`), 0o600))
	_, err = LoadThesaurus(bad)
	assert.Error(t, err)
}

func TestNoParaphrases(t *testing.T) {
	got, err := NoParaphrases{}.Paraphrases(context.Background(), "bed")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
