package search

import (
	"github.com/qmd-project/qmd/internal/llmclient"
	"github.com/qmd-project/qmd/internal/repo"
)

// Engine is the stateless SearchEngine of spec.md §4.6: everything it
// needs lives in the repositories it holds and the LLMProvider it
// calls, never in the Engine itself.
type Engine struct {
	fts         repo.FTS
	vectors     repo.Vectors
	documents   repo.Documents
	collections repo.Collections
	cache       repo.Cache
	provider    llmclient.Provider
}

// New returns an Engine backed by the given repositories and provider.
func New(fts repo.FTS, vectors repo.Vectors, documents repo.Documents, collections repo.Collections, cache repo.Cache, provider llmclient.Provider) *Engine {
	return &Engine{
		fts:         fts,
		vectors:     vectors,
		documents:   documents,
		collections: collections,
		cache:       cache,
		provider:    provider,
	}
}
