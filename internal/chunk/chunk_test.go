package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reassemble(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

func TestChunkSmallBodyReturnsSingleChunk(t *testing.T) {
	c := New(Options{MaxBytes: 100})
	body := "hello world"

	chunks := c.Chunk(body)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Pos)
	assert.Equal(t, body, chunks[0].Text)
}

func TestChunkExactlyMaxBytesIsSingleChunk(t *testing.T) {
	body := strings.Repeat("a", 6144)
	c := New(Options{})

	chunks := c.Chunk(body)
	require.Len(t, chunks, 1)
	assert.Equal(t, body, chunks[0].Text)
}

func TestChunkOneByteOverSplitsIntoTwo(t *testing.T) {
	body := strings.Repeat("a", 6145)
	c := New(Options{})

	chunks := c.Chunk(body)
	require.Len(t, chunks, 2)
	assert.Equal(t, body, reassemble(chunks))
}

func TestChunkPartitionsExactly(t *testing.T) {
	body := strings.Repeat("word ", 3000)
	c := New(Options{MaxBytes: 500})

	chunks := c.Chunk(body)
	require.True(t, len(chunks) > 1)
	assert.Equal(t, body, reassemble(chunks))
}

func TestChunkPosMatchesOriginalBodySlice(t *testing.T) {
	body := strings.Repeat("word ", 3000)
	c := New(Options{MaxBytes: 500})

	chunks := c.Chunk(body)
	runes := []rune(body)
	for _, chunk := range chunks {
		chunkRunes := []rune(chunk.Text)
		got := string(runes[chunk.Pos : chunk.Pos+len(chunkRunes)])
		assert.Equal(t, chunk.Text, got)
	}
}

func TestChunkSplitsAtParagraphBreak(t *testing.T) {
	body := strings.Repeat("A", 5000) + "\n\n" + strings.Repeat("B", 5000)
	c := New(Options{MaxBytes: 6144})

	chunks := c.Chunk(body)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "\n\n"))
	assert.Equal(t, 0, chunks[0].Pos)
	assert.Equal(t, body, reassemble(chunks))
}

func TestChunkEmptyBodyReturnsNil(t *testing.T) {
	c := New(Options{})
	assert.Nil(t, c.Chunk(""))
}

func TestChunkUnicodeBodyPosIsCharacterIndex(t *testing.T) {
	body := strings.Repeat("日本語のテキストです。", 400)
	c := New(Options{MaxBytes: 500})

	chunks := c.Chunk(body)
	require.True(t, len(chunks) > 1)
	assert.Equal(t, body, reassemble(chunks))

	runes := []rune(body)
	for _, chunk := range chunks {
		chunkRunes := []rune(chunk.Text)
		assert.Equal(t, chunk.Text, string(runes[chunk.Pos:chunk.Pos+len(chunkRunes)]))
	}
}
