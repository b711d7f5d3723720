package search

import (
	"context"
	"encoding/json"
	"strings"
)

const expandCacheMaxEntries = 1000

// expandQueryKey is the canonical, deterministically-serialized cache
// request behind spec.md §4.6.3's cache key.
type expandQueryKey struct {
	Query string `json:"query"`
	Model string `json:"model"`
}

// ExpandQuery implements spec.md §4.6.3: a deterministic cache lookup
// keyed on ("expandQuery", {query, model}), falling through to the
// LLMProvider on miss and caching the result.
func (e *Engine) ExpandQuery(ctx context.Context, query, model string, count int) ([]string, error) {
	body, err := json.Marshal(expandQueryKey{Query: query, Model: model})
	if err != nil {
		return []string{query}, nil
	}
	key := e.cache.GenerateKey("expandQuery", body)

	if cached, found, err := e.cache.Get(key); err == nil && found {
		variations := strings.Split(cached, "\n")
		return append([]string{query}, variations...), nil
	}

	variations, err := e.provider.ExpandQuery(ctx, query, model, count)
	if err != nil {
		return []string{query}, nil
	}
	if len(variations) == 0 {
		return []string{query}, nil
	}

	extra := variations[1:]
	if len(extra) > 0 {
		if err := e.cache.SetWithAutoCleanup(key, strings.Join(extra, "\n"), expandCacheMaxEntries); err != nil {
			return variations, nil
		}
	}

	return variations, nil
}
