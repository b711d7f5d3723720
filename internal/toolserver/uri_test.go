package toolserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeURIRoundTripsASCII(t *testing.T) {
	original := "qmd://repo/notes/journal entry.md"
	encoded := encodeURI(original)
	assert.NotEqual(t, original, encoded)
	assert.Equal(t, original, decodeURI(encoded))
}

func TestEncodeURIPreservesSlashesBetweenSegments(t *testing.T) {
	encoded := encodeURI("qmd://repo/a/b/c.md")
	assert.Equal(t, "qmd://repo/a/b/c.md", encoded)
}

func TestSimilarPathsMatchesCaseInsensitiveSubstring(t *testing.T) {
	candidates := []string{"/repo/Notes/Journal.md", "/repo/other.md"}
	got := similarPaths("journal", candidates, 5)
	assert.Equal(t, []string{"/repo/Notes/Journal.md"}, got)
}

func TestSimilarPathsRespectsLimit(t *testing.T) {
	candidates := []string{"a.md", "ab.md", "abc.md"}
	got := similarPaths("a", candidates, 2)
	assert.Len(t, got, 2)
}
