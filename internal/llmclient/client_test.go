package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEmbedInputForDocument(t *testing.T) {
	got := formatEmbedInput("the quick brown fox", EmbedOptions{Title: "Foxes"})
	assert.Equal(t, "title: Foxes | text: the quick brown fox", got)
}

func TestFormatEmbedInputDefaultsTitleToNone(t *testing.T) {
	got := formatEmbedInput("body text", EmbedOptions{})
	assert.Equal(t, "title: none | text: body text", got)
}

func TestFormatEmbedInputForQuery(t *testing.T) {
	got := formatEmbedInput("brown fox", EmbedOptions{IsQuery: true})
	assert.Equal(t, "task: search result | query: brown fox", got)
}

func TestOllamaBaseURLStripsV1Suffix(t *testing.T) {
	c := New("http://localhost:11434/v1", "")
	assert.Equal(t, "http://localhost:11434", c.ollamaBaseURL())
}
