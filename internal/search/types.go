// Package search implements the SearchEngine of spec.md §4.6: lexical
// FTS, vector KNN, LLM-backed query expansion, Reciprocal Rank Fusion
// across both, and an optional LLM rerank pass, all blended into one
// ordered result list. The engine itself is stateless; everything it
// touches lives in the repositories or the LLM provider.
package search

// SearchHit is one ranked result, generalized from
// custodia-labs-sercha-cli's SearchHit{ChunkID, Score} shape to carry
// qmd's richer addressing and provenance. Collection+Path identify the
// document exactly (address.Build derives its qmd:// virtual path from
// them); DisplayPath is the spec's short, corpus-unique human-facing
// label, filled in separately by fillDisplayPaths.
type SearchHit struct {
	DisplayPath string
	Collection  string
	Path        string
	Title       string
	Score       float64
	Source      string // "fts" or "vec"
	ChunkPos    int
	Snippet     string
}

// Options configures a single search call across searchFTS,
// searchVector and searchHybrid.
type Options struct {
	CollectionID *int64
	Limit        int
	MinScore     float64
	EmbedModel   string
	QueryModel   string
	RerankModel  string
	Rerank       bool
	ExpandCount  int
	BatchSize    int
}

// DefaultOptions returns the limits spec.md §4.6 names.
func DefaultOptions() Options {
	return Options{
		Limit:       10,
		ExpandCount: 2,
		BatchSize:   5,
	}
}
