package search

import (
	"context"
	"sort"

	"github.com/qmd-project/qmd/internal/address"
	"github.com/qmd-project/qmd/internal/llmclient"
)

// SearchVector implements spec.md §4.6.2.
func (e *Engine) SearchVector(ctx context.Context, query string, opts Options) ([]SearchHit, error) {
	hits, err := e.searchVector(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return e.fillDisplayPaths(hits)
}

// searchVector is the display-path-free core of SearchVector, used
// directly by SearchHybrid's fan-out so the corpus-wide uniqueness
// scan only runs once, over the final fused result list.
func (e *Engine) searchVector(ctx context.Context, query string, opts Options) ([]SearchHit, error) {
	exists, err := e.vectors.VecTableExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	embedResult, err := e.provider.Embed(ctx, query, llmclient.EmbedOptions{Model: opts.EmbedModel, IsQuery: true})
	if err != nil {
		return nil, err
	}
	if embedResult == nil {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	raw, err := e.vectors.SearchVectors(embedResult.Embedding, limit*3, opts.CollectionID)
	if err != nil {
		return nil, err
	}

	bestByDoc := make(map[string]SearchHit)
	order := make([]string, 0, len(raw))

	for _, v := range raw {
		docs, err := e.documents.FindActiveByHash(v.Hash)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			collection, found, err := e.collections.GetByID(doc.CollectionID)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			key := address.Build(collection.Name, doc.Path)
			existing, ok := bestByDoc[key]
			if !ok || v.Distance < distanceOf(existing) {
				bestByDoc[key] = SearchHit{
					Collection: collection.Name,
					Path:       doc.Path,
					Title:      doc.Title,
					Score:      1 / (1 + v.Distance),
					Source:     "vec",
					ChunkPos:   v.Pos,
				}
				if !ok {
					order = append(order, key)
				}
			}
		}
	}

	out := make([]SearchHit, 0, len(order))
	for _, key := range order {
		out = append(out, bestByDoc[key])
	}
	sortHitsByScoreDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// distanceOf recovers the cosine distance that produced a hit's score,
// the inverse of the 1/(1+d) transform applied when the hit was built.
func distanceOf(h SearchHit) float64 {
	if h.Score <= 0 {
		return 1e18
	}
	return 1/h.Score - 1
}

func sortHitsByScoreDesc(hits []SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
}
