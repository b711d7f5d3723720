package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsCreateAndCleanupOrphanedContent(t *testing.T) {
	s := newTestStore(t)
	content := NewContent(s)
	collections := NewCollections(s)
	documents := NewDocuments(s)

	c, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)

	require.NoError(t, content.Insert("h1", "same body"))
	require.NoError(t, content.Insert("h2", "same body"))

	_, err = documents.Create(c.ID, "a.md", "A", "h1", time.Now())
	require.NoError(t, err)
	_, err = documents.Create(c.ID, "b.md", "B", "h1", time.Now())
	require.NoError(t, err)

	removed, err := documents.CleanupOrphanedContent()
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "h2 is unreferenced and should be removed, h1 is referenced twice and kept")

	removedAgain, err := documents.CleanupOrphanedContent()
	require.NoError(t, err)
	assert.Equal(t, 0, removedAgain)
}

func TestDocumentsDeactivateMissingThenCleanup(t *testing.T) {
	s := newTestStore(t)
	content := NewContent(s)
	collections := NewCollections(s)
	documents := NewDocuments(s)

	c, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)
	require.NoError(t, content.Insert("h1", "body"))

	doc, err := documents.Create(c.ID, "x.md", "X", "h1", time.Now())
	require.NoError(t, err)

	n, err := documents.DeactivateMissing(c.ID, []string{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	reloaded, found, err := documents.Get(doc.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, reloaded.Active)

	removed, err := documents.CleanupOrphanedContent()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestDocumentsDeactivateMissingKeepsSeenPaths(t *testing.T) {
	s := newTestStore(t)
	content := NewContent(s)
	collections := NewCollections(s)
	documents := NewDocuments(s)

	c, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)
	require.NoError(t, content.Insert("h1", "body"))

	_, err = documents.Create(c.ID, "keep.md", "Keep", "h1", time.Now())
	require.NoError(t, err)
	_, err = documents.Create(c.ID, "gone.md", "Gone", "h1", time.Now())
	require.NoError(t, err)

	n, err := documents.DeactivateMissing(c.ID, []string{"keep.md"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := documents.ListActive(c.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "keep.md", active[0].Path)
}
