package analytics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Len(t, c, 10)
	assert.Equal(t, "Two Pointers", c[0].Name)
	assert.Equal(t, 15, c[0].Target)
	assert.Equal(t, 30, c[3].Target)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: Trie\n  target: 4\n"), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, Catalog{{Name: "Trie", Target: 4}}, c)

	c, err = LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, c, 10)

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseCatalog_RejectsBadTarget(t *testing.T) {
	_, err := ParseCatalog([]byte("- name: Trie\n  target: 0\n"))
	assert.Error(t, err)
}

func TestMastery(t *testing.T) {
	catalog := Catalog{
		{Name: "Sorting", Target: 10},
		{Name: "Greedy", Target: 15},
		{Name: "Hash Map", Target: 20},
		{Name: "Backtracking", Target: 20},
		{Name: "Linked List", Target: 15},
	}
	counts := map[string]int{
		"Sorting":     12, // over target
		"Greedy":      9,  // 60%
		"Hash Map":    6,  // 30%
		"Linked List": 4,  // 27%
		"Trie":        3,  // not in catalog
	}
	r := Mastery(counts, catalog, 2)

	require.Len(t, r.Patterns, 5)
	sorting := r.Patterns[0]
	assert.Equal(t, 100, sorting.Progress)
	assert.Equal(t, 0, sorting.Remaining)
	assert.Equal(t, LevelExpert, sorting.Level)

	assert.Equal(t, 60, r.Patterns[1].Progress)
	assert.Equal(t, LevelAdvanced, r.Patterns[1].Level)
	assert.Equal(t, 6, r.Patterns[1].Remaining)

	assert.Equal(t, LevelIntermediate, r.Patterns[2].Level)
	assert.Equal(t, LevelBeginner, r.Patterns[3].Level)
	assert.Equal(t, 0, r.Patterns[3].Solved)
	assert.Equal(t, 27, r.Patterns[4].Progress)
	assert.Equal(t, LevelBeginner, r.Patterns[4].Level)

	assert.Equal(t, 80, r.Coverage)
	assert.Equal(t, 2, r.Uncategorized)
}

func TestMastery_EmptyCatalog(t *testing.T) {
	r := Mastery(map[string]int{"Greedy": 1}, nil, 0)
	assert.Empty(t, r.Patterns)
	assert.Equal(t, 0, r.Coverage)
}
