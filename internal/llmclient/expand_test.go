package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExpansionsStripsThinkBlocks(t *testing.T) {
	text := "<think>reasoning here</think>\nwhat is a fox\nhow do foxes hunt"
	got := parseExpansions(text, 2)
	assert.Equal(t, []string{"what is a fox", "how do foxes hunt"}, got)
}

func TestParseExpansionsDropsOutOfRangeLines(t *testing.T) {
	text := "good phrase\nx\n" + stringsRepeat("y", 120)
	got := parseExpansions(text, 5)
	assert.Equal(t, []string{"good phrase"}, got)
}

func TestParseExpansionsRespectsCount(t *testing.T) {
	text := "one phrase here\nanother phrase\nyet another phrase"
	got := parseExpansions(text, 2)
	assert.Len(t, got, 2)
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
