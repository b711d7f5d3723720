package repo

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/qmd-project/qmd/internal/qmderr"
	"github.com/qmd-project/qmd/internal/store"
)

// Collections manages collection records: creation keyed by (pwd, glob),
// renaming, and lookup.
type Collections interface {
	// GetOrCreate returns the existing collection for (pwd, glob) or
	// creates one, auto-naming it from the basename of pwd, appending
	// "-N" starting at 2 on name collision.
	GetOrCreate(pwd, glob string) (*store.Collection, error)
	GetByID(id int64) (*store.Collection, bool, error)
	GetByName(name string) (*store.Collection, bool, error)
	List() ([]store.Collection, error)
	Rename(id int64, newName string) error
	Delete(id int64) error
	UpdateTimestamp(id int64) error
}

type collectionsRepo struct {
	s *store.Store
}

// NewCollections returns the SQLite-backed Collections repository.
func NewCollections(s *store.Store) Collections {
	return &collectionsRepo{s: s}
}

func (r *collectionsRepo) GetOrCreate(pwd, glob string) (*store.Collection, error) {
	r.s.Lock()
	defer r.s.Unlock()

	existing, found, err := r.queryByPwdGlob(pwd, glob)
	if err != nil {
		return nil, err
	}
	if found {
		return existing, nil
	}

	name, err := r.uniqueNameLocked(filepath.Base(pwd))
	if err != nil {
		return nil, err
	}

	result, err := r.s.DB().Exec(`
		INSERT INTO collections (name, pwd, glob_pattern) VALUES (?, ?, ?)
	`, name, pwd, glob)
	if err != nil {
		return nil, fmt.Errorf("collections create: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("collections create: %w", err)
	}

	c, _, err := r.getByIDLocked(id)
	return c, err
}

// uniqueNameLocked finds the smallest suffix -N (N starting at 2) that
// makes base unique, or returns base itself if it's already unique.
// Must be called with the store write lock held.
func (r *collectionsRepo) uniqueNameLocked(base string) (string, error) {
	if base == "" || base == "." || base == "/" {
		base = "collection"
	}

	var exists bool
	err := r.s.DB().QueryRow("SELECT EXISTS(SELECT 1 FROM collections WHERE name = ?)", base).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("collections name check: %w", err)
	}
	if !exists {
		return base, nil
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		err := r.s.DB().QueryRow("SELECT EXISTS(SELECT 1 FROM collections WHERE name = ?)", candidate).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("collections name check: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (r *collectionsRepo) queryByPwdGlob(pwd, glob string) (*store.Collection, bool, error) {
	row := r.s.DB().QueryRow(`
		SELECT id, name, pwd, glob_pattern, created_at, updated_at
		FROM collections WHERE pwd = ? AND glob_pattern = ?
	`, pwd, glob)
	return scanCollection(row)
}

func (r *collectionsRepo) GetByID(id int64) (*store.Collection, bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()
	return r.getByIDLocked(id)
}

func (r *collectionsRepo) getByIDLocked(id int64) (*store.Collection, bool, error) {
	row := r.s.DB().QueryRow(`
		SELECT id, name, pwd, glob_pattern, created_at, updated_at
		FROM collections WHERE id = ?
	`, id)
	return scanCollection(row)
}

func (r *collectionsRepo) GetByName(name string) (*store.Collection, bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	row := r.s.DB().QueryRow(`
		SELECT id, name, pwd, glob_pattern, created_at, updated_at
		FROM collections WHERE name = ?
	`, name)
	return scanCollection(row)
}

func (r *collectionsRepo) List() ([]store.Collection, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	rows, err := r.s.DB().Query(`
		SELECT id, name, pwd, glob_pattern, created_at, updated_at
		FROM collections ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("collections list: %w", err)
	}
	defer rows.Close()

	var out []store.Collection
	for rows.Next() {
		c, _, err := scanCollectionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *collectionsRepo) Rename(id int64, newName string) error {
	r.s.Lock()
	defer r.s.Unlock()

	var exists bool
	err := r.s.DB().QueryRow("SELECT EXISTS(SELECT 1 FROM collections WHERE name = ? AND id != ?)", newName, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("collections rename check: %w", err)
	}
	if exists {
		return qmderr.Validation(fmt.Sprintf("collection name %q already in use", newName))
	}

	_, err = r.s.DB().Exec("UPDATE collections SET name = ?, updated_at = datetime('now') WHERE id = ?", newName, id)
	if err != nil {
		return fmt.Errorf("collections rename: %w", err)
	}
	return nil
}

func (r *collectionsRepo) Delete(id int64) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec("DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("collections delete: %w", err)
	}
	return nil
}

func (r *collectionsRepo) UpdateTimestamp(id int64) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec("UPDATE collections SET updated_at = datetime('now') WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("collections update timestamp: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row *sql.Row) (*store.Collection, bool, error) {
	return scanCollectionGeneric(row)
}

func scanCollectionRows(rows *sql.Rows) (*store.Collection, bool, error) {
	return scanCollectionGeneric(rows)
}

func scanCollectionGeneric(s rowScanner) (*store.Collection, bool, error) {
	var c store.Collection
	var createdAt, updatedAt string
	err := s.Scan(&c.ID, &c.Name, &c.Pwd, &c.GlobPattern, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("collections scan: %w", err)
	}
	c.CreatedAt = parseSQLiteTime(createdAt)
	c.UpdatedAt = parseSQLiteTime(updatedAt)
	return &c, true, nil
}
