// Package repo holds the narrow, single-purpose repositories of
// spec.md §4.2 — Content, Collections, Documents, Contexts, Vectors,
// FTS, Cache — each a thin interface plus SQLite implementation over a
// shared *store.Store. Repositories never swallow database errors and
// never perform user-visible I/O; translating errors into qmd's error
// taxonomy is left to the services that call them.
package repo

import (
	"database/sql"
	"fmt"

	"github.com/qmd-project/qmd/internal/store"
)

// Content provides content-addressed access to document bodies.
type Content interface {
	// Insert is idempotent: inserting an already-present hash is a no-op.
	Insert(hash, doc string) error
	Get(hash string) (string, bool, error)
	// ListPendingEmbedding returns every hash referenced by at least
	// one active document that has no content_vectors row for model at
	// seq=0, via a LEFT JOIN of content against content_vectors. Each
	// entry carries the body and a representative path/title drawn
	// from any one active referencing document.
	ListPendingEmbedding(model string) ([]EmbedTarget, error)
}

// EmbedTarget is one body awaiting embedding under a given model.
type EmbedTarget struct {
	Hash  string
	Body  string
	Path  string
	Title string
}

type contentRepo struct {
	s *store.Store
}

// NewContent returns the SQLite-backed Content repository.
func NewContent(s *store.Store) Content {
	return &contentRepo{s: s}
}

func (r *contentRepo) Insert(hash, doc string) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec(
		"INSERT OR IGNORE INTO content (hash, doc) VALUES (?, ?)",
		hash, doc,
	)
	if err != nil {
		return fmt.Errorf("content insert: %w", err)
	}
	return nil
}

func (r *contentRepo) Get(hash string) (string, bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	var doc string
	err := r.s.DB().QueryRow("SELECT doc FROM content WHERE hash = ?", hash).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("content get: %w", err)
	}
	return doc, true, nil
}

func (r *contentRepo) ListPendingEmbedding(model string) ([]EmbedTarget, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	rows, err := r.s.DB().Query(`
		SELECT c.hash, c.doc,
		       (SELECT d.path FROM documents d WHERE d.hash = c.hash AND d.active = 1 LIMIT 1),
		       (SELECT d.title FROM documents d WHERE d.hash = c.hash AND d.active = 1 LIMIT 1)
		FROM content c
		WHERE EXISTS (SELECT 1 FROM documents d WHERE d.hash = c.hash AND d.active = 1)
		AND NOT EXISTS (
			SELECT 1 FROM content_vectors cv
			WHERE cv.hash = c.hash AND cv.model = ? AND cv.seq = 0
		)
	`, model)
	if err != nil {
		return nil, fmt.Errorf("content list pending embedding: %w", err)
	}
	defer rows.Close()

	var targets []EmbedTarget
	for rows.Next() {
		var t EmbedTarget
		if err := rows.Scan(&t.Hash, &t.Body, &t.Path, &t.Title); err != nil {
			return nil, fmt.Errorf("content list pending embedding: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("content list pending embedding: %w", err)
	}
	return targets, nil
}
