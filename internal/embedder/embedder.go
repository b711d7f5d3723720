// Package embedder implements embedDocuments from spec.md §4.5: the
// decoupled, on-demand embedding step that turns indexed-but-unembedded
// content into vectors_vec rows. Indexing and embedding are separate
// passes so a collection can be reindexed quickly without paying for a
// model round-trip on every run.
package embedder

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/qmd-project/qmd/internal/chunk"
	"github.com/qmd-project/qmd/internal/llmclient"
	"github.com/qmd-project/qmd/internal/repo"
)

// Progress reports incremental embedding status.
type Progress struct {
	BytesProcessed int
	TotalBytes     int
	ChunksDone     int
	TotalChunks    int
}

// ProgressFunc is called after each chunk is embedded (successfully or not).
type ProgressFunc func(Progress)

// Result tallies an embedDocuments run.
type Result struct {
	Targets int
	Chunks  int
	Errors  int
}

// Options configures a single embedDocuments run.
type Options struct {
	Model      string
	Force      bool
	ChunkOpts  chunk.Options
	OnProgress ProgressFunc
}

// Embedder orchestrates chunking and embedding of pending content.
type Embedder struct {
	content  repo.Content
	vectors  repo.Vectors
	provider llmclient.Provider
}

// New returns an Embedder backed by the given repositories and provider.
func New(content repo.Content, vectors repo.Vectors, provider llmclient.Provider) *Embedder {
	return &Embedder{content: content, vectors: vectors, provider: provider}
}

// EmbedDocuments performs spec.md §4.5's embedDocuments(model).
func (e *Embedder) EmbedDocuments(ctx context.Context, opts Options) (Result, error) {
	var result Result

	if opts.Force {
		if err := e.vectors.Truncate(); err != nil {
			return result, fmt.Errorf("failed to truncate vectors for force rebuild: %w", err)
		}
	}

	targets, err := e.content.ListPendingEmbedding(opts.Model)
	if err != nil {
		return result, fmt.Errorf("failed to list pending embedding targets: %w", err)
	}

	chunker := chunk.New(opts.ChunkOpts)

	totalBytes := 0
	type plannedChunk struct {
		target repo.EmbedTarget
		chunk  chunk.Chunk
		seq    int
	}
	var planned []plannedChunk

	for _, target := range targets {
		if target.Body == "" {
			continue
		}
		totalBytes += len(target.Body)
		chunks := chunker.Chunk(target.Body)
		for seq, c := range chunks {
			planned = append(planned, plannedChunk{target: target, chunk: c, seq: seq})
		}
	}

	if len(planned) == 0 {
		return result, nil
	}

	result.Targets = len(targets)

	dimensionLocked := false
	bytesProcessed := 0

	report := func(i int) {
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				BytesProcessed: bytesProcessed,
				TotalBytes:     totalBytes,
				ChunksDone:     i + 1,
				TotalChunks:    len(planned),
			})
		}
	}

	for i, p := range planned {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		embedResult, err := e.provider.Embed(ctx, p.chunk.Text, llmclient.EmbedOptions{
			Model: opts.Model,
			Title: p.target.Title,
		})
		if err != nil || embedResult == nil {
			log.Warn("embed failed, skipping chunk", "hash", p.target.Hash, "seq", p.seq, "error", err)
			result.Errors++
			report(i)
			continue
		}

		if !dimensionLocked {
			if err := e.vectors.EnsureVecTable(len(embedResult.Embedding)); err != nil {
				return result, fmt.Errorf("failed to size vector table to dimension %d: %w", len(embedResult.Embedding), err)
			}
			dimensionLocked = true
		}

		if err := e.vectors.Insert(p.target.Hash, p.seq, p.chunk.Pos, opts.Model, embedResult.Embedding); err != nil {
			log.Warn("failed to store embedding, skipping chunk", "hash", p.target.Hash, "seq", p.seq, "error", err)
			result.Errors++
			report(i)
			continue
		}

		result.Chunks++
		bytesProcessed += len(p.chunk.Text)

		report(i)
	}

	return result, nil
}
