package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParseRoundTrip(t *testing.T) {
	vp := Build("repo", "docs/intro.md")
	assert.Equal(t, "qmd://repo/docs/intro.md", vp)

	collection, relPath, err := Parse(vp)
	require.NoError(t, err)
	assert.Equal(t, "repo", collection)
	assert.Equal(t, "docs/intro.md", relPath)
}

func TestParseRejectsMissingScheme(t *testing.T) {
	_, _, err := Parse("repo/docs/intro.md")
	assert.Error(t, err)
}

func TestParseCollectionOnly(t *testing.T) {
	collection, relPath, err := Parse("qmd://repo")
	require.NoError(t, err)
	assert.Equal(t, "repo", collection)
	assert.Equal(t, "", relPath)
}
