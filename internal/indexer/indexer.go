// Package indexer implements indexFiles from spec.md §4.4: it walks a
// directory tree, reconciles what it finds against the Content,
// Collections and Documents repositories, and reports a summary of
// what changed. It never touches vectors; embedding is a separate,
// on-demand step owned by internal/embedder.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/repo"
	"github.com/qmd-project/qmd/internal/store"
	"github.com/qmd-project/qmd/internal/walk"
)

// Progress reports incremental indexing status via the ProgressFunc
// callback, one call per file processed.
type Progress struct {
	Current     int
	Total       int
	RelPath     string
	CurrentFile string
}

// ProgressFunc is called after each file is reconciled.
type ProgressFunc func(Progress)

// Options configures a single indexFiles run.
type Options struct {
	// ExcludeDirs overrides config.DefaultExcludeDirs when non-nil.
	ExcludeDirs []string
	OnProgress  ProgressFunc
}

// Result tallies what an indexFiles run changed, per spec.md §4.4 step 7.
type Result struct {
	Indexed         int
	Updated         int
	Unchanged       int
	Removed         int
	OrphanedContent int
}

// Indexer orchestrates walking, hashing, title extraction and
// reconciliation against the repositories.
type Indexer struct {
	content     repo.Content
	collections repo.Collections
	documents   repo.Documents

	mu sync.Mutex
}

// New returns an Indexer backed by the given store.
func New(s *store.Store) *Indexer {
	return &Indexer{
		content:     repo.NewContent(s),
		collections: repo.NewCollections(s),
		documents:   repo.NewDocuments(s),
	}
}

// IndexFiles performs spec.md §4.4's indexFiles(pwd, glob, options).
func (idx *Indexer) IndexFiles(ctx context.Context, pwd, glob string, excludeDirs []string, onProgress ProgressFunc) (Result, error) {
	var result Result

	collection, err := idx.collections.GetOrCreate(pwd, glob)
	if err != nil {
		return result, fmt.Errorf("failed to get or create collection: %w", err)
	}

	if excludeDirs == nil {
		excludeDirs = config.DefaultExcludeDirs()
	}

	w, err := walk.New(walk.Options{
		Root:           pwd,
		Glob:           glob,
		FollowSymlinks: true,
		OnlyFiles:      true,
		ExcludeDirs:    excludeDirs,
	})
	if err != nil {
		return result, fmt.Errorf("failed to create file walker: %w", err)
	}

	var relPaths []string
	if err := w.Walk(func(relPath string) error {
		relPaths = append(relPaths, relPath)
		return nil
	}); err != nil {
		return result, fmt.Errorf("failed to walk %s: %w", pwd, err)
	}

	seen := make([]string, 0, len(relPaths))
	total := len(relPaths)

	for i, relPath := range relPaths {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := idx.indexFile(pwd, collection.ID, relPath, &result); err != nil {
			log.Warn("failed to index file", "path", relPath, "error", err)
			continue
		}
		seen = append(seen, relPath)

		if onProgress != nil {
			onProgress(Progress{Current: i + 1, Total: total, RelPath: relPath, CurrentFile: relPath})
		}
	}

	removed, err := idx.documents.DeactivateMissing(collection.ID, seen)
	if err != nil {
		return result, fmt.Errorf("failed to deactivate missing documents: %w", err)
	}
	result.Removed = removed

	orphaned, err := idx.documents.CleanupOrphanedContent()
	if err != nil {
		return result, fmt.Errorf("failed to clean up orphaned content: %w", err)
	}
	result.OrphanedContent = orphaned

	if err := idx.collections.UpdateTimestamp(collection.ID); err != nil {
		return result, fmt.Errorf("failed to update collection timestamp: %w", err)
	}

	return result, nil
}

func (idx *Indexer) indexFile(pwd string, collectionID int64, relPath string, result *Result) error {
	fullPath := filepath.Join(pwd, relPath)

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", fullPath, err)
	}
	body := string(raw)
	hash := sha256Hex(raw)
	title := extractTitle(body, relPath)

	modifiedAt := time.Now()
	if info, err := os.Stat(fullPath); err == nil {
		modifiedAt = info.ModTime()
	}

	existing, found, err := idx.documents.GetByPath(collectionID, relPath)
	if err != nil {
		return fmt.Errorf("failed to look up document %s: %w", relPath, err)
	}

	if !found {
		if err := idx.content.Insert(hash, body); err != nil {
			return fmt.Errorf("failed to insert content for %s: %w", relPath, err)
		}
		if _, err := idx.documents.Create(collectionID, relPath, title, hash, modifiedAt); err != nil {
			return fmt.Errorf("failed to create document %s: %w", relPath, err)
		}
		idx.mu.Lock()
		result.Indexed++
		idx.mu.Unlock()
		return nil
	}

	if existing.Hash == hash {
		if !existing.Active {
			if err := idx.documents.Reactivate(existing.ID); err != nil {
				return fmt.Errorf("failed to reactivate document %s: %w", relPath, err)
			}
		}
		if existing.Title != title {
			if err := idx.documents.UpdateTitle(existing.ID, title, modifiedAt); err != nil {
				return fmt.Errorf("failed to update title for %s: %w", relPath, err)
			}
			idx.mu.Lock()
			result.Updated++
			idx.mu.Unlock()
			return nil
		}
		if !existing.Active {
			idx.mu.Lock()
			result.Updated++
			idx.mu.Unlock()
			return nil
		}
		idx.mu.Lock()
		result.Unchanged++
		idx.mu.Unlock()
		return nil
	}

	if err := idx.content.Insert(hash, body); err != nil {
		return fmt.Errorf("failed to insert content for %s: %w", relPath, err)
	}
	if err := idx.documents.UpdateHashTitle(existing.ID, hash, title, modifiedAt); err != nil {
		return fmt.Errorf("failed to update document %s: %w", relPath, err)
	}
	if !existing.Active {
		if err := idx.documents.Reactivate(existing.ID); err != nil {
			return fmt.Errorf("failed to reactivate document %s: %w", relPath, err)
		}
	}
	idx.mu.Lock()
	result.Updated++
	idx.mu.Unlock()
	return nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
