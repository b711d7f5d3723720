package search

import (
	"sort"

	"github.com/qmd-project/qmd/internal/address"
)

const rrfK = 60

// rankList is one input list to Reciprocal Rank Fusion: an ordered
// slice of hits (already sorted best-first) plus its weight.
type rankList struct {
	hits   []SearchHit
	weight float64
}

type fusedCandidate struct {
	hit       SearchHit
	score     float64
	bestRank  int
	firstSeen int
}

// fuse implements the Glossary's RRF: for each document d,
// rrf(d) = Σ wᵢ / (k + rankᵢ(d) + 1) over lists where d appears
// (0-based rank), plus a best-rank bonus: +0.05 if d was rank 0 in any
// list, +0.02 if rank 1 or 2, else zero. Sorted descending by the sum,
// ties broken by first-seen (insertion) order.
func fuse(lists []rankList) []SearchHit {
	byKey := make(map[string]*fusedCandidate)
	var candidates []*fusedCandidate

	for _, list := range lists {
		for rank, hit := range list.hits {
			key := address.Build(hit.Collection, hit.Path)
			c, ok := byKey[key]
			if !ok {
				c = &fusedCandidate{hit: hit, bestRank: rank, firstSeen: len(candidates)}
				byKey[key] = c
				candidates = append(candidates, c)
			}
			c.score += list.weight / float64(rrfK+rank+1)
			if rank < c.bestRank {
				c.bestRank = rank
			}
		}
	}

	for _, c := range candidates {
		switch {
		case c.bestRank == 0:
			c.score += 0.05
		case c.bestRank <= 2:
			c.score += 0.02
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].firstSeen < candidates[j].firstSeen
	})

	out := make([]SearchHit, 0, len(candidates))
	for _, c := range candidates {
		hit := c.hit
		hit.Score = c.score
		out = append(out, hit)
	}
	return out
}
