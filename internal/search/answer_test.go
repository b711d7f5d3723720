package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerReturnsNoResultsMessageWhenNoHits(t *testing.T) {
	e, _ := newTestEngine(t)

	answer, err := e.Answer(context.Background(), "quick fox", "model-a", nil)
	require.NoError(t, err)
	assert.Equal(t, noResultsAnswer, answer)
}

func TestAnswerFallsBackWhenProviderReturnsNoText(t *testing.T) {
	e, _ := newTestEngine(t)

	hits := []SearchHit{{DisplayPath: "qmd://repo/notes.md", Title: "Title", Snippet: "the quick brown fox", Score: 0.8}}
	answer, err := e.Answer(context.Background(), "quick fox", "model-a", hits)
	require.NoError(t, err)
	assert.Equal(t, "I couldn't generate an answer from the retrieved notes.", answer)
}
