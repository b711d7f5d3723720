package repo

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qmd-project/qmd/internal/store"
)

// Documents manages the reconciliation of on-disk files against indexed
// document rows.
type Documents interface {
	// Create inserts a new document row with active=1.
	Create(collectionID int64, path, title, hash string, modifiedAt time.Time) (*store.Document, error)
	GetByPath(collectionID int64, path string) (*store.Document, bool, error)
	Get(id int64) (*store.Document, bool, error)
	// UpdateHashTitle updates hash, title and modified_at for an
	// existing document (the file's content changed).
	UpdateHashTitle(id int64, hash, title string, modifiedAt time.Time) error
	// UpdateTitle updates only title and modified_at (same hash, title
	// extraction produced a different result).
	UpdateTitle(id int64, title string, modifiedAt time.Time) error
	// Deactivate sets active=0 on a single document.
	Deactivate(id int64) error
	// Reactivate sets active=1 on a single document (a previously
	// removed file reappeared with the same path during reindexing).
	Reactivate(id int64) error
	// DeactivateMissing sets active=0 on every active document in the
	// collection whose path is not in seenPaths. Returns the count.
	DeactivateMissing(collectionID int64, seenPaths []string) (int, error)
	// CleanupOrphanedContent deletes every content row not referenced
	// by any active document. Returns the count deleted.
	CleanupOrphanedContent() (int, error)
	ListActive(collectionID int64) ([]store.Document, error)
	// FindActiveByHash returns every active document referencing hash,
	// used by search to resolve a vector hit's chunk back to the
	// addressable documents that share its body.
	FindActiveByHash(hash string) ([]store.Document, error)
}

type documentsRepo struct {
	s *store.Store
}

// NewDocuments returns the SQLite-backed Documents repository.
func NewDocuments(s *store.Store) Documents {
	return &documentsRepo{s: s}
}

func (r *documentsRepo) Create(collectionID int64, path, title, hash string, modifiedAt time.Time) (*store.Document, error) {
	r.s.Lock()
	defer r.s.Unlock()

	result, err := r.s.DB().Exec(`
		INSERT INTO documents (collection_id, path, title, hash, modified_at, active)
		VALUES (?, ?, ?, ?, ?, 1)
	`, collectionID, path, title, hash, modifiedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("documents create: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("documents create: %w", err)
	}

	d, _, err := r.getLocked(id)
	return d, err
}

func (r *documentsRepo) GetByPath(collectionID int64, path string) (*store.Document, bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	row := r.s.DB().QueryRow(`
		SELECT id, collection_id, path, title, hash, created_at, modified_at, active
		FROM documents WHERE collection_id = ? AND path = ?
	`, collectionID, path)
	return scanDocument(row)
}

func (r *documentsRepo) Get(id int64) (*store.Document, bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()
	return r.getLocked(id)
}

func (r *documentsRepo) getLocked(id int64) (*store.Document, bool, error) {
	row := r.s.DB().QueryRow(`
		SELECT id, collection_id, path, title, hash, created_at, modified_at, active
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

func (r *documentsRepo) UpdateHashTitle(id int64, hash, title string, modifiedAt time.Time) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec(`
		UPDATE documents SET hash = ?, title = ?, modified_at = ? WHERE id = ?
	`, hash, title, modifiedAt.UTC().Format(sqliteTimeLayout), id)
	if err != nil {
		return fmt.Errorf("documents update hash/title: %w", err)
	}
	return nil
}

func (r *documentsRepo) UpdateTitle(id int64, title string, modifiedAt time.Time) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec(`
		UPDATE documents SET title = ?, modified_at = ? WHERE id = ?
	`, title, modifiedAt.UTC().Format(sqliteTimeLayout), id)
	if err != nil {
		return fmt.Errorf("documents update title: %w", err)
	}
	return nil
}

func (r *documentsRepo) Deactivate(id int64) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec("UPDATE documents SET active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("documents deactivate: %w", err)
	}
	return nil
}

func (r *documentsRepo) Reactivate(id int64) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec("UPDATE documents SET active = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("documents reactivate: %w", err)
	}
	return nil
}

func (r *documentsRepo) DeactivateMissing(collectionID int64, seenPaths []string) (int, error) {
	r.s.Lock()
	defer r.s.Unlock()

	seen := make(map[string]bool, len(seenPaths))
	for _, p := range seenPaths {
		seen[p] = true
	}

	rows, err := r.s.DB().Query(`
		SELECT id, path FROM documents WHERE collection_id = ? AND active = 1
	`, collectionID)
	if err != nil {
		return 0, fmt.Errorf("documents deactivate-missing scan: %w", err)
	}

	var toDeactivate []int64
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("documents deactivate-missing scan: %w", err)
		}
		if !seen[path] {
			toDeactivate = append(toDeactivate, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, id := range toDeactivate {
		if _, err := r.s.DB().Exec("UPDATE documents SET active = 0 WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("documents deactivate-missing: %w", err)
		}
	}

	return len(toDeactivate), nil
}

func (r *documentsRepo) CleanupOrphanedContent() (int, error) {
	r.s.Lock()
	defer r.s.Unlock()

	result, err := r.s.DB().Exec(`
		DELETE FROM content WHERE hash NOT IN (
			SELECT DISTINCT hash FROM documents WHERE active = 1
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("documents cleanup orphaned content: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("documents cleanup orphaned content: %w", err)
	}
	return int(affected), nil
}

func (r *documentsRepo) ListActive(collectionID int64) ([]store.Document, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	rows, err := r.s.DB().Query(`
		SELECT id, collection_id, path, title, hash, created_at, modified_at, active
		FROM documents WHERE collection_id = ? AND active = 1 ORDER BY path
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("documents list active: %w", err)
	}
	defer rows.Close()

	var out []store.Document
	for rows.Next() {
		d, _, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *documentsRepo) FindActiveByHash(hash string) ([]store.Document, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	rows, err := r.s.DB().Query(`
		SELECT id, collection_id, path, title, hash, created_at, modified_at, active
		FROM documents WHERE hash = ? AND active = 1 ORDER BY path
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("documents find active by hash: %w", err)
	}
	defer rows.Close()

	var out []store.Document
	for rows.Next() {
		d, _, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDocument(row *sql.Row) (*store.Document, bool, error) {
	return scanDocumentGeneric(row)
}

func scanDocumentRows(rows *sql.Rows) (*store.Document, bool, error) {
	return scanDocumentGeneric(rows)
}

func scanDocumentGeneric(s rowScanner) (*store.Document, bool, error) {
	var d store.Document
	var createdAt, modifiedAt string
	var active int
	err := s.Scan(&d.ID, &d.CollectionID, &d.Path, &d.Title, &d.Hash, &createdAt, &modifiedAt, &active)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("documents scan: %w", err)
	}
	d.CreatedAt = parseSQLiteTime(createdAt)
	d.ModifiedAt = parseSQLiteTime(modifiedAt)
	d.Active = active != 0
	return &d, true, nil
}
