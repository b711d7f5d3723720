package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmd-project/qmd/internal/repo"
)

func TestFillDisplayPathsDisambiguatesSameFilename(t *testing.T) {
	e, s := newTestEngine(t)
	collections := repo.NewCollections(s)
	col, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)

	seedDocument(t, s, col.ID, "project-a/docs/readme.md", "A", "h1", "alpha project notes")
	seedDocument(t, s, col.ID, "project-b/docs/readme.md", "B", "h2", "beta project notes")

	hitsA, err := e.SearchFTS(context.Background(), "alpha", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, hitsA, 1)
	assert.Equal(t, "project-a/docs/readme.md", hitsA[0].DisplayPath)

	hitsB, err := e.SearchFTS(context.Background(), "beta", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, hitsB, 1)
	assert.Equal(t, "project-b/docs/readme.md", hitsB[0].DisplayPath)
}
