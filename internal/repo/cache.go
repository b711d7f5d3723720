package repo

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math/rand"

	"github.com/qmd-project/qmd/internal/store"
)

// Cache memoizes LLM provider responses keyed by a hash of the request.
type Cache interface {
	// GenerateKey returns SHA-256(url ∥ canonicalJSON(body)).
	GenerateKey(url string, canonicalBody []byte) string
	Get(key string) (string, bool, error)
	// SetWithAutoCleanup writes (key, val) and, with 1% probability,
	// trims the table to the most recently-created max entries.
	SetWithAutoCleanup(key, val string, max int) error
}

type cacheRepo struct {
	s *store.Store
}

// NewCache returns the SQLite-backed Cache repository.
func NewCache(s *store.Store) Cache {
	return &cacheRepo{s: s}
}

func (r *cacheRepo) GenerateKey(url string, canonicalBody []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write(canonicalBody)
	return hex.EncodeToString(h.Sum(nil))
}

func (r *cacheRepo) Get(key string) (string, bool, error) {
	r.s.RLock()
	defer r.s.RUnlock()

	var result string
	err := r.s.DB().QueryRow("SELECT result FROM ollama_cache WHERE hash = ?", key).Scan(&result)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return result, true, nil
}

func (r *cacheRepo) SetWithAutoCleanup(key, val string, max int) error {
	r.s.Lock()
	defer r.s.Unlock()

	_, err := r.s.DB().Exec(`
		INSERT INTO ollama_cache (hash, result) VALUES (?, ?)
		ON CONFLICT(hash) DO UPDATE SET result = excluded.result, created_at = datetime('now')
	`, key, val)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	if rand.Float64() < 0.01 {
		if err := r.trimLocked(max); err != nil {
			return fmt.Errorf("cache auto cleanup: %w", err)
		}
	}

	return nil
}

// trimLocked retains only the max most-recently-created rows. Must be
// called with the store write lock held.
func (r *cacheRepo) trimLocked(max int) error {
	_, err := r.s.DB().Exec(`
		DELETE FROM ollama_cache WHERE hash NOT IN (
			SELECT hash FROM ollama_cache ORDER BY created_at DESC, hash ASC LIMIT ?
		)
	`, max)
	return err
}
