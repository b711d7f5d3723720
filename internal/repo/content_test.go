package repo

import (
	"path/filepath"
	"testing"

	"github.com/qmd-project/qmd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContentInsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	content := NewContent(s)

	require.NoError(t, content.Insert("h1", "hello"))
	require.NoError(t, content.Insert("h1", "hello again"))

	doc, found, err := content.Get("h1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", doc)
}

func TestContentGetMissing(t *testing.T) {
	s := newTestStore(t)
	content := NewContent(s)

	_, found, err := content.Get("nope")
	require.NoError(t, err)
	assert.False(t, found)
}
