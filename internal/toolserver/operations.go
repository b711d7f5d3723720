package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/qmd-project/qmd/internal/address"
	"github.com/qmd-project/qmd/internal/search"
	"github.com/qmd-project/qmd/internal/store"
)

const similarPathsLimit = 5

func (s *Server) searchOptions(p SearchParams) (search.Options, error) {
	opts := search.DefaultOptions()
	opts.EmbedModel = s.cfg.LLM.EmbedModel
	opts.QueryModel = s.cfg.LLM.QueryModel
	opts.RerankModel = s.cfg.LLM.RerankModel
	if p.Limit > 0 {
		opts.Limit = p.Limit
	}
	opts.MinScore = p.MinScore

	if p.Collection != "" {
		col, found, err := s.collections.GetByName(p.Collection)
		if err != nil {
			return opts, err
		}
		if found {
			opts.CollectionID = &col.ID
		}
	}
	return opts, nil
}

func toHitResults(hits []search.SearchHit) []HitResult {
	out := make([]HitResult, len(hits))
	for i, h := range hits {
		out[i] = HitResult{
			File:        address.Build(h.Collection, h.Path),
			DisplayPath: h.DisplayPath,
			Title:       h.Title,
			Score:       h.Score,
			Snippet:     h.Snippet,
		}
	}
	return out
}

func summarize(op, query string, n int) string {
	if n == 0 {
		return fmt.Sprintf("%s for %q found no results", op, query)
	}
	if n == 1 {
		return fmt.Sprintf("%s for %q found 1 result", op, query)
	}
	return fmt.Sprintf("%s for %q found %d results", op, query, n)
}

func (s *Server) handleSearch(ctx context.Context, raw json.RawMessage) (*SearchResult, error) {
	var p SearchParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	opts, err := s.searchOptions(p)
	if err != nil {
		return nil, err
	}

	hits, err := s.engine.SearchFTS(ctx, p.Query, opts)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Summary: summarize("search", p.Query, len(hits)), Hits: toHitResults(hits)}, nil
}

func (s *Server) handleVSearch(ctx context.Context, raw json.RawMessage) (*SearchResult, error) {
	var p SearchParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	opts, err := s.searchOptions(p)
	if err != nil {
		return nil, err
	}

	hits, err := s.engine.SearchVector(ctx, p.Query, opts)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Summary: summarize("vector search", p.Query, len(hits)), Hits: toHitResults(hits)}, nil
}

func (s *Server) handleQuery(ctx context.Context, raw json.RawMessage) (*QueryResult, error) {
	var p SearchParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	opts, err := s.searchOptions(p)
	if err != nil {
		return nil, err
	}
	opts.Rerank = true

	hits, err := s.engine.SearchHybrid(ctx, p.Query, opts)
	if err != nil {
		return nil, err
	}

	answer, err := s.engine.Answer(ctx, p.Query, s.cfg.LLM.QueryModel, hits)
	if err != nil {
		answer = "I couldn't find anything relevant. Try rephrasing the question or indexing more notes."
	}

	return &QueryResult{
		Summary: summarize("query", p.Query, len(hits)),
		Answer:  answer,
		Hits:    toHitResults(hits),
	}, nil
}

// resolveDocument looks up the document and body addressed by
// virtualPath, returning (title, body, found).
func (s *Server) resolveDocument(virtualPath string) (title, body string, found bool, err error) {
	collectionName, relPath, parseErr := address.Parse(virtualPath)
	if parseErr != nil {
		return "", "", false, nil
	}

	col, colFound, err := s.collections.GetByName(collectionName)
	if err != nil {
		return "", "", false, err
	}
	if !colFound {
		return "", "", false, nil
	}

	doc, docFound, err := s.documents.GetByPath(col.ID, relPath)
	if err != nil {
		return "", "", false, err
	}
	if !docFound || !doc.Active {
		return "", "", false, nil
	}

	content, contentFound, err := s.content.Get(doc.Hash)
	if err != nil {
		return "", "", false, err
	}
	if !contentFound {
		return "", "", false, nil
	}

	return doc.Title, content, true, nil
}

// allAbsolutePaths enumerates every active document's absolute
// filesystem path across all collections, used for the similar-paths
// not-found fallback.
func (s *Server) allAbsolutePaths() ([]string, error) {
	cols, err := s.collections.List()
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, col := range cols {
		docs, err := s.documents.ListActive(col.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			paths = append(paths, filepath.Join(col.Pwd, d.Path))
		}
	}
	return paths, nil
}

func (s *Server) handleGet(raw json.RawMessage) (*GetResult, error) {
	var p GetParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	title, body, found, err := s.resolveDocument(p.Path)
	if err != nil {
		return nil, err
	}
	if found {
		return &GetResult{Path: p.Path, Title: title, Content: body, Found: true}, nil
	}

	candidates, err := s.allAbsolutePaths()
	if err != nil {
		return nil, err
	}
	return &GetResult{
		Path:         p.Path,
		Found:        false,
		SimilarPaths: similarPaths(p.Path, candidates, similarPathsLimit),
	}, nil
}

func (s *Server) handleMultiGet(raw json.RawMessage) (*MultiGetResult, error) {
	var p MultiGetParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	maxBytes := s.cfg.Index.MultiGetMaxBytes
	var used int
	var docs []GetResult
	var truncated bool

	for _, path := range p.Paths {
		title, body, found, err := s.resolveDocument(path)
		if err != nil {
			return nil, err
		}
		if !found {
			docs = append(docs, GetResult{Path: path, Found: false})
			continue
		}
		if maxBytes > 0 && used+len(body) > maxBytes {
			truncated = true
			break
		}
		used += len(body)
		docs = append(docs, GetResult{Path: path, Title: title, Content: body, Found: true})
	}

	return &MultiGetResult{Documents: docs, Truncated: truncated}, nil
}

func (s *Server) handleStatus() (*StatusResult, error) {
	cols, err := s.collections.List()
	if err != nil {
		return nil, err
	}

	statuses := make([]CollectionStatus, 0, len(cols))
	for _, col := range cols {
		docs, err := s.documents.ListActive(col.ID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, CollectionStatus{
			Name:        col.Name,
			Pwd:         col.Pwd,
			GlobPattern: col.GlobPattern,
			ActiveDocs:  len(docs),
		})
	}

	return &StatusResult{
		Collections: statuses,
		EmbedModel:  s.cfg.LLM.EmbedModel,
		QueryModel:  s.cfg.LLM.QueryModel,
		RerankModel: s.cfg.LLM.RerankModel,
	}, nil
}

func (s *Server) handleResourceList(raw json.RawMessage) (*ResourceListResult, error) {
	var p ResourceListParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	var cols []store.Collection
	if p.Collection != "" {
		col, found, err := s.collections.GetByName(p.Collection)
		if err != nil {
			return nil, err
		}
		if found {
			cols = []store.Collection{*col}
		}
	} else {
		var err error
		cols, err = s.collections.List()
		if err != nil {
			return nil, err
		}
	}

	var entries []ResourceEntry
	for _, col := range cols {
		docs, err := s.documents.ListActive(col.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			entries = append(entries, ResourceEntry{
				URI:      encodeURI(address.Build(col.Name, d.Path)),
				Title:    d.Title,
				MimeType: "text/markdown",
			})
		}
	}

	return &ResourceListResult{Resources: entries}, nil
}

func (s *Server) handleResourceRead(raw json.RawMessage) (*ResourceReadResult, error) {
	var p ResourceReadParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	virtualPath := decodeURI(p.URI)
	_, body, found, err := s.resolveDocument(virtualPath)
	if err != nil {
		return nil, err
	}
	if found {
		return &ResourceReadResult{URI: p.URI, MimeType: "text/markdown", Content: body, Found: true}, nil
	}

	candidates, err := s.allAbsolutePaths()
	if err != nil {
		return nil, err
	}
	return &ResourceReadResult{
		URI:          p.URI,
		Found:        false,
		SimilarPaths: similarPaths(virtualPath, candidates, similarPathsLimit),
	}, nil
}
