package repo

import (
	"fmt"
	"strings"

	"github.com/qmd-project/qmd/internal/store"
)

// Contexts attaches freeform context text to path prefixes within a
// collection, inherited by documents via longest-prefix match.
type Contexts interface {
	// Upsert creates or replaces the context for (collectionID, prefix).
	Upsert(collectionID int64, prefix, context string) error
	Delete(collectionID int64, prefix string) error
	// GetContextForPath returns the context of the longest path_prefix p
	// such that path == p or path starts with p+"/", or "" if none
	// match. Ties are broken by insertion order (lower id wins).
	GetContextForPath(collectionID int64, path string) (string, bool, error)
	List(collectionID int64) ([]store.PathContext, error)
}

type contextsRepo struct {
	s *store.Store
}

// NewContexts returns the SQLite-backed Contexts repository.
func NewContexts(s *store.Store) Contexts {
	return &contextsRepo{s: s}
}

func (r *contextsRepo) Upsert(collectionID int64, prefix, context string) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec(`
		INSERT INTO path_contexts (collection_id, path_prefix, context)
		VALUES (?, ?, ?)
		ON CONFLICT(collection_id, path_prefix) DO UPDATE SET context = excluded.context
	`, collectionID, prefix, context)
	if err != nil {
		return fmt.Errorf("contexts upsert: %w", err)
	}
	return nil
}

func (r *contextsRepo) Delete(collectionID int64, prefix string) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec(`
		DELETE FROM path_contexts WHERE collection_id = ? AND path_prefix = ?
	`, collectionID, prefix)
	if err != nil {
		return fmt.Errorf("contexts delete: %w", err)
	}
	return nil
}

func (r *contextsRepo) GetContextForPath(collectionID int64, path string) (string, bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	rows, err := r.s.DB().Query(`
		SELECT id, path_prefix, context FROM path_contexts WHERE collection_id = ? ORDER BY id ASC
	`, collectionID)
	if err != nil {
		return "", false, fmt.Errorf("contexts get for path: %w", err)
	}
	defer rows.Close()

	var bestPrefixLen = -1
	var bestContext string
	found := false

	for rows.Next() {
		var id int64
		var prefix, context string
		if err := rows.Scan(&id, &prefix, &context); err != nil {
			return "", false, fmt.Errorf("contexts get for path: %w", err)
		}
		_ = id

		matches := prefix == "" || path == prefix || strings.HasPrefix(path, prefix+"/")
		if !matches {
			continue
		}

		if len(prefix) > bestPrefixLen {
			bestPrefixLen = len(prefix)
			bestContext = context
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, err
	}

	return bestContext, found, nil
}

func (r *contextsRepo) List(collectionID int64) ([]store.PathContext, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	rows, err := r.s.DB().Query(`
		SELECT id, collection_id, path_prefix, context, created_at
		FROM path_contexts WHERE collection_id = ? ORDER BY id ASC
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("contexts list: %w", err)
	}
	defer rows.Close()

	var out []store.PathContext
	for rows.Next() {
		var pc store.PathContext
		var createdAt string
		if err := rows.Scan(&pc.ID, &pc.CollectionID, &pc.PathPrefix, &pc.Context, &createdAt); err != nil {
			return nil, fmt.Errorf("contexts list scan: %w", err)
		}
		pc.CreatedAt = parseSQLiteTime(createdAt)
		out = append(out, pc)
	}
	return out, rows.Err()
}
