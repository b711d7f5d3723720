package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFTSQuerySingleToken(t *testing.T) {
	assert.Equal(t, `"quick"*`, buildFTSQuery("quick"))
}

func TestBuildFTSQueryMultipleTokensJoinedWithAnd(t *testing.T) {
	assert.Equal(t, `"quick"* AND "brown"*`, buildFTSQuery("quick brown"))
}

func TestBuildFTSQuerySanitizesPunctuation(t *testing.T) {
	assert.Equal(t, `"don't"*`, buildFTSQuery("don't!!!"))
}

func TestBuildFTSQueryEmptyWhenAllTokensStrip(t *testing.T) {
	assert.Equal(t, "", buildFTSQuery("!!! ???"))
}
