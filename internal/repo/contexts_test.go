package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextsLongestPrefixMatch(t *testing.T) {
	s := newTestStore(t)
	collections := NewCollections(s)
	contexts := NewContexts(s)

	c, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)

	require.NoError(t, contexts.Upsert(c.ID, "", "root"))
	require.NoError(t, contexts.Upsert(c.ID, "docs", "sub"))

	got, found, err := contexts.GetContextForPath(c.ID, "docs/intro.md")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "sub", got)

	got, found, err = contexts.GetContextForPath(c.ID, "README.md")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "root", got)
}

func TestContextsExactPathMatchesPrefix(t *testing.T) {
	s := newTestStore(t)
	collections := NewCollections(s)
	contexts := NewContexts(s)

	c, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)
	require.NoError(t, contexts.Upsert(c.ID, "docs", "sub"))

	got, found, err := contexts.GetContextForPath(c.ID, "docs")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "sub", got)
}

func TestContextsNoMatchReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	collections := NewCollections(s)
	contexts := NewContexts(s)

	c, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)

	_, found, err := contexts.GetContextForPath(c.ID, "anything.md")
	require.NoError(t, err)
	assert.False(t, found)
}
