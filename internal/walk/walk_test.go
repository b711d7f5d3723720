package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func collect(t *testing.T, w *Walker) []string {
	t.Helper()
	var got []string
	require.NoError(t, w.Walk(func(rel string) error {
		got = append(got, rel)
		return nil
	}))
	sort.Strings(got)
	return got
}

func TestWalkMatchesGlobRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.md", "a")
	writeFile(t, root, "docs/intro.md", "b")
	writeFile(t, root, "docs/deep/nested.md", "c")
	writeFile(t, root, "notes.txt", "d")

	w, err := New(Options{Root: root, Glob: "**/*.md"})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"docs/deep/nested.md", "docs/intro.md", "notes.md"}, got)
}

func TestWalkSkipsDotAndExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/config.md", "a")
	writeFile(t, root, "node_modules/pkg/readme.md", "b")
	writeFile(t, root, "docs/keep.md", "c")

	w, err := New(Options{Root: root, Glob: "**/*.md", ExcludeDirs: []string{"node_modules"}})
	require.NoError(t, err)

	got := collect(t, w)
	assert.Equal(t, []string{"docs/keep.md"}, got)
}

func TestWalkOnMissingRootErrors(t *testing.T) {
	_, err := New(Options{Root: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
