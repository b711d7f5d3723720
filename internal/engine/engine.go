// Package engine is qmd's composition root, replacing the
// database-singleton/LLM-singleton global state spec.md §9 calls out
// as a pattern to re-architect: one Engine holds the Store and the
// LLMProvider, built once by the CLI entry (and torn down on exit) or
// once by the tool server (and kept for the session).
package engine

import (
	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/embedder"
	"github.com/qmd-project/qmd/internal/indexer"
	"github.com/qmd-project/qmd/internal/llmclient"
	"github.com/qmd-project/qmd/internal/repo"
	"github.com/qmd-project/qmd/internal/search"
	"github.com/qmd-project/qmd/internal/store"
)

// Engine wires the store, every repository and the LLM provider into
// the services the frontends call: Indexer, Embedder and the
// SearchEngine.
type Engine struct {
	Store    *store.Store
	Cfg      *config.Config
	Provider llmclient.Provider

	Content     repo.Content
	Collections repo.Collections
	Documents   repo.Documents
	Contexts    repo.Contexts
	Vectors     repo.Vectors
	FTS         repo.FTS
	Cache       repo.Cache

	Indexer  *indexer.Indexer
	Embedder *embedder.Embedder
	Search   *search.Engine
}

// New opens the database at cfg.IndexPath and wires every repository,
// the LLM client and the three core services over it.
func New(cfg *config.Config) (*Engine, error) {
	s, err := store.Open(cfg.IndexPath)
	if err != nil {
		return nil, err
	}

	provider := llmclient.New(cfg.LLM.BaseURL, cfg.LLM.APIKey)

	content := repo.NewContent(s)
	collections := repo.NewCollections(s)
	documents := repo.NewDocuments(s)
	contexts := repo.NewContexts(s)
	vectors := repo.NewVectors(s)
	fts := repo.NewFTS(s)
	cache := repo.NewCache(s)

	return &Engine{
		Store:       s,
		Cfg:         cfg,
		Provider:    provider,
		Content:     content,
		Collections: collections,
		Documents:   documents,
		Contexts:    contexts,
		Vectors:     vectors,
		FTS:         fts,
		Cache:       cache,
		Indexer:     indexer.New(s),
		Embedder:    embedder.New(content, vectors, provider),
		Search:      search.New(fts, vectors, documents, collections, cache, provider),
	}, nil
}

// Close releases the underlying database handle.
func (e *Engine) Close() error {
	return e.Store.Close()
}
