package repo

import (
	"fmt"

	"github.com/qmd-project/qmd/internal/store"
)

// FTSHit is one full-text match joined back to its document and
// collection.
type FTSHit struct {
	DocumentID     int64
	CollectionID   int64
	CollectionName string
	Path           string
	Title          string
	Hash           string
	// RawScore is the raw bm25() score: more negative is more relevant.
	RawScore float64
}

// FTS provides full-text search over documents_fts, weighted by BM25.
type FTS interface {
	// SearchFTS runs ftsQuery (already built per spec.md §4.6.1) against
	// documents_fts with BM25 weights {path: 10.0, body: 1.0}, optionally
	// restricted to collectionID, ordered by raw bm25 score ascending
	// (most relevant first).
	SearchFTS(ftsQuery string, limit int, collectionID *int64) ([]FTSHit, error)
}

type ftsRepo struct {
	s *store.Store
}

// NewFTS returns the SQLite-backed FTS repository.
func NewFTS(s *store.Store) FTS {
	return &ftsRepo{s: s}
}

func (r *ftsRepo) SearchFTS(ftsQuery string, limit int, collectionID *int64) ([]FTSHit, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	query := `
		SELECT d.id, d.collection_id, c.name, d.path, d.title, d.hash,
			bm25(documents_fts, 10.0, 1.0) AS score
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		JOIN collections c ON c.id = d.collection_id
		WHERE documents_fts MATCH ? AND d.active = 1
	`
	args := []any{ftsQuery}

	if collectionID != nil {
		query += " AND d.collection_id = ?"
		args = append(args, *collectionID)
	}

	query += " ORDER BY score ASC LIMIT ?"
	args = append(args, limit)

	rows, err := r.s.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	var out []FTSHit
	for rows.Next() {
		var h FTSHit
		if err := rows.Scan(&h.DocumentID, &h.CollectionID, &h.CollectionName, &h.Path, &h.Title, &h.Hash, &h.RawScore); err != nil {
			return nil, fmt.Errorf("fts search scan: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
