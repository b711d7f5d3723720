// Package chunk splits a document body into an ordered, non-overlapping
// list of chunks no larger than a configured byte limit, seeking a
// natural boundary near the limit rather than cutting mid-word. It is a
// pure function package: no I/O, no persistence, deterministic and
// restartable given the same input and limit.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxBytes is the default maximum UTF-8 byte size of a chunk.
const DefaultMaxBytes = 6144

// Chunk is a contiguous substring of a document body. Pos is the
// character (rune) index of the chunk's first character within the
// original body — not a byte offset, matching how the chunker advances.
type Chunk struct {
	Pos  int
	Text string
}

// Options configures a Chunker.
type Options struct {
	// MaxBytes is the maximum UTF-8 byte size of a chunk. Zero selects
	// DefaultMaxBytes.
	MaxBytes int
}

// Chunker splits bodies per Options, with zero-valued options replaced
// by their defaults.
type Chunker struct {
	opts Options
}

// New returns a Chunker configured by opts, applying defaults for zero values.
func New(opts Options) *Chunker {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Chunker{opts: opts}
}

// Chunk splits body into an ordered list of chunks. An empty body
// yields no chunks (nil). For non-empty bodies that already fit within
// MaxBytes, returns a single chunk covering the whole body. The concatenation of all returned chunk texts equals body
// exactly — chunks partition the body, they never overlap.
func (c *Chunker) Chunk(body string) []Chunk {
	if body == "" {
		return nil
	}
	if len(body) <= c.opts.MaxBytes {
		return []Chunk{{Pos: 0, Text: body}}
	}

	var chunks []Chunk
	charPos := 0
	byteStart := 0

	for byteStart < len(body) {
		byteEnd, charEnd := advanceToLimit(body, byteStart, charPos, c.opts.MaxBytes)

		if byteEnd >= len(body) {
			chunks = append(chunks, Chunk{Pos: charPos, Text: body[byteStart:]})
			break
		}

		slice := body[byteStart:byteEnd]
		splitAt := findBoundary(slice)
		if splitAt <= 0 {
			_, size := utf8.DecodeRuneInString(slice)
			splitAt = size
		}

		text := body[byteStart : byteStart+splitAt]
		chunks = append(chunks, Chunk{Pos: charPos, Text: text})

		charPos += utf8.RuneCountInString(text)
		byteStart += splitAt
		_ = charEnd
	}

	return chunks
}

// advanceToLimit walks body forward one rune at a time starting at
// byteStart (whose rune index is charStart), returning the byte and
// rune-count offsets reached just before the next rune would push the
// accumulated byte length past maxBytes.
func advanceToLimit(body string, byteStart, charStart, maxBytes int) (byteEnd, charCount int) {
	byteEnd = byteStart
	charCount = charStart

	for byteEnd < len(body) {
		_, size := utf8.DecodeRuneInString(body[byteEnd:])
		if byteEnd-byteStart+size > maxBytes {
			break
		}
		byteEnd += size
		charCount++
	}

	return byteEnd, charCount
}

// sentenceTerminators are the two-byte sequences treated as sentence
// boundaries, in no particular priority among themselves — the last
// occurrence of any of them, beyond the threshold, wins.
var sentenceTerminators = []string{". ", ".\n", "? ", "?\n", "! ", "!\n"}

// findBoundary searches slice for the best natural split point per the
// priority order in spec.md §4.3, returning the byte offset to split
// after, or len(slice) if no candidate qualifies.
func findBoundary(slice string) int {
	n := len(slice)
	if n == 0 {
		return 0
	}

	half := n / 2
	thirtyPercent := n * 3 / 10

	if idx := lastIndexAtOrBeyond(slice, "\n\n", half); idx >= 0 {
		return idx + 2
	}
	if idx := lastSentenceTerminatorAtOrBeyond(slice, half); idx >= 0 {
		return idx + 2
	}
	if idx := lastIndexAtOrBeyond(slice, "\n", thirtyPercent); idx >= 0 {
		return idx + 1
	}
	if idx := lastIndexAtOrBeyond(slice, " ", thirtyPercent); idx >= 0 {
		return idx + 1
	}

	return n
}

func lastIndexAtOrBeyond(s, sub string, threshold int) int {
	idx := strings.LastIndex(s, sub)
	if idx < 0 || idx < threshold {
		return -1
	}
	return idx
}

func lastSentenceTerminatorAtOrBeyond(s string, threshold int) int {
	best := -1
	for _, term := range sentenceTerminators {
		if idx := strings.LastIndex(s, term); idx > best {
			best = idx
		}
	}
	if best < 0 || best < threshold {
		return -1
	}
	return best
}
