package search

import (
	"context"
	"strings"
	"unicode"
)

// SearchFTS implements spec.md §4.6.1.
func (e *Engine) SearchFTS(ctx context.Context, query string, opts Options) ([]SearchHit, error) {
	hits, err := e.searchFTS(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return e.fillDisplayPaths(hits)
}

// searchFTS is the display-path-free core of SearchFTS, used directly
// by SearchHybrid's fan-out so the corpus-wide uniqueness scan only
// runs once, over the final fused result list.
func (e *Engine) searchFTS(_ context.Context, query string, opts Options) ([]SearchHit, error) {
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	hits, err := e.fts.SearchFTS(ftsQuery, limit, opts.CollectionID)
	if err != nil {
		return nil, err
	}

	out := make([]SearchHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, SearchHit{
			Collection: h.CollectionName,
			Path:       h.Path,
			Title:      h.Title,
			Score:      absFloat(h.RawScore),
			Source:     "fts",
		})
	}
	return out, nil
}

// buildFTSQuery implements spec.md §4.6.1 steps 1–3: tokenize on
// whitespace, sanitize (lowercase, strip everything but letters,
// digits and apostrophe), drop empty tokens, then join as a
// prefix-match AND query.
func buildFTSQuery(query string) string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		t := sanitizeToken(f)
		if t != "" {
			tokens = append(tokens, `"`+t+`"*`)
		}
	}
	return strings.Join(tokens, " AND ")
}

func sanitizeToken(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
