package search

import (
	"context"
	"sort"

	"github.com/qmd-project/qmd/internal/address"
	"github.com/qmd-project/qmd/internal/llmclient"
)

const hybridFusionLimit = 30

// SearchHybrid implements spec.md §4.6.4: expand, fan out FTS/vector
// searches per expansion, fuse with RRF, optionally rerank, then blend
// and sort.
func (e *Engine) SearchHybrid(ctx context.Context, query string, opts Options) ([]SearchHit, error) {
	queryModel := opts.QueryModel
	expandCount := opts.ExpandCount
	if expandCount <= 0 {
		expandCount = 2
	}

	queries, err := e.ExpandQuery(ctx, query, queryModel, expandCount)
	if err != nil || len(queries) == 0 {
		queries = []string{query}
	}

	fanOutOpts := opts
	fanOutOpts.Limit = 20

	var lists []rankList
	for i, q := range queries {
		weight := 1.0
		if i == 0 {
			weight = 2.0
		}

		ftsHits, err := e.searchFTS(ctx, q, fanOutOpts)
		if err != nil {
			return nil, err
		}
		if len(ftsHits) > 0 {
			lists = append(lists, rankList{hits: ftsHits, weight: weight})
		}

		vecHits, err := e.searchVector(ctx, q, fanOutOpts)
		if err != nil {
			return nil, err
		}
		if len(vecHits) > 0 {
			lists = append(lists, rankList{hits: vecHits, weight: weight})
		}
	}

	fused := fuse(lists)
	if len(fused) > hybridFusionLimit {
		fused = fused[:hybridFusionLimit]
	}

	judgments := make(map[string]llmclient.RerankJudgment)
	if opts.Rerank && len(fused) > 0 {
		docs := make([]llmclient.RerankDoc, len(fused))
		for i, hit := range fused {
			docs[i] = llmclient.RerankDoc{File: address.Build(hit.Collection, hit.Path), Text: hit.Title + "\n" + hit.Snippet}
		}
		batchSize := opts.BatchSize
		if batchSize <= 0 {
			batchSize = 5
		}
		result, err := e.provider.Rerank(ctx, query, docs, llmclient.RerankOptions{Model: opts.RerankModel, BatchSize: batchSize})
		if err == nil && result != nil {
			for _, j := range result.Results {
				judgments[j.File] = j
			}
		}
	}

	out := make([]SearchHit, 0, len(fused))
	for i, hit := range fused {
		rrfRank := i + 1
		rrfWeight := 0.40
		switch {
		case rrfRank <= 3:
			rrfWeight = 0.75
		case rrfRank <= 10:
			rrfWeight = 0.60
		}

		rerankScore := 0.0
		if j, ok := judgments[address.Build(hit.Collection, hit.Path)]; ok {
			rerankScore = j.Score
		}

		hit.Score = rrfWeight*(1/float64(rrfRank)) + (1-rrfWeight)*rerankScore
		out = append(out, hit)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	filtered := out[:0]
	for _, hit := range out {
		if hit.Score < opts.MinScore {
			continue
		}
		filtered = append(filtered, hit)
		if len(filtered) >= limit {
			break
		}
	}

	return e.fillDisplayPaths(filtered)
}
