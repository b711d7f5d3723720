package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionsGetOrCreateAutoNamesAndIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	collections := NewCollections(s)

	c1, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)
	assert.Equal(t, "repo", c1.Name)

	c2, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)
}

func TestCollectionsGetOrCreateResolvesNameCollision(t *testing.T) {
	s := newTestStore(t)
	collections := NewCollections(s)

	c1, err := collections.GetOrCreate("/a/repo", "**/*.md")
	require.NoError(t, err)
	assert.Equal(t, "repo", c1.Name)

	c2, err := collections.GetOrCreate("/b/repo", "**/*.md")
	require.NoError(t, err)
	assert.Equal(t, "repo-2", c2.Name)

	c3, err := collections.GetOrCreate("/c/repo", "**/*.md")
	require.NoError(t, err)
	assert.Equal(t, "repo-3", c3.Name)
}

func TestCollectionsRenameToExistingNameFails(t *testing.T) {
	s := newTestStore(t)
	collections := NewCollections(s)

	c1, err := collections.GetOrCreate("/a/repo", "**/*.md")
	require.NoError(t, err)
	c2, err := collections.GetOrCreate("/b/other", "**/*.md")
	require.NoError(t, err)

	err = collections.Rename(c2.ID, c1.Name)
	require.Error(t, err)

	reloaded, found, err := collections.GetByID(c2.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "other", reloaded.Name)
}
