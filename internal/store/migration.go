package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// migrateFromFlatSchema migrates a pre-existing flat schema (where
// documents carried the body directly, one implicit collection per
// distinct pwd) into the content-addressed schema. The legacy shape
// assumed is `collection(id, pwd)` plus `documents(id, collection_id,
// path, body, created_at, modified_at)` with `path` an absolute
// filesystem path. The whole migration is one atomic unit of work;
// on any failure the transaction is rolled back and the original
// tables are left untouched.
func migrateFromFlatSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("ALTER TABLE documents RENAME TO documents_old"); err != nil {
		return fmt.Errorf("failed to rename documents table: %w", err)
	}
	hasLegacyCollection := tableExists(db, "collection")
	if hasLegacyCollection {
		if _, err := tx.Exec("ALTER TABLE collection RENAME TO collection_old"); err != nil {
			return fmt.Errorf("failed to rename collection table: %w", err)
		}
	}

	for _, table := range []string{
		contentTable, collectionsTable, documentsTable,
		pathContextsTable, contentVectorsTable, ollamaCacheTable, documentsFTSTable,
	} {
		if _, err := tx.Exec(table); err != nil {
			return fmt.Errorf("failed to create new schema table: %w", err)
		}
	}
	if _, err := tx.Exec(ftsTriggers); err != nil {
		return fmt.Errorf("failed to create fts triggers: %w", err)
	}

	pwdByOldCollectionID, err := legacyPwds(tx, hasLegacyCollection)
	if err != nil {
		return fmt.Errorf("failed to resolve legacy pwds: %w", err)
	}

	newCollectionID, err := createCollectionsFromPwds(tx, pwdByOldCollectionID)
	if err != nil {
		return fmt.Errorf("failed to regenerate collections: %w", err)
	}

	if err := migrateDocumentRows(tx, newCollectionID, pwdByOldCollectionID, hasLegacyCollection); err != nil {
		return fmt.Errorf("failed to migrate document rows: %w", err)
	}

	if _, err := tx.Exec("DROP TABLE documents_old"); err != nil {
		return fmt.Errorf("failed to drop documents_old: %w", err)
	}
	if hasLegacyCollection {
		if _, err := tx.Exec("DROP TABLE collection_old"); err != nil {
			return fmt.Errorf("failed to drop collection_old: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Debug("flat schema migration complete", "collections", len(newCollectionID))
	return nil
}

// legacyPwds resolves a pwd string per legacy collection id. Without a
// legacy collection table, every document is treated as belonging to
// one implicit collection rooted at the longest common directory
// prefix of all document paths.
func legacyPwds(tx *sql.Tx, hasLegacyCollection bool) (map[int64]string, error) {
	result := make(map[int64]string)

	if hasLegacyCollection {
		rows, err := tx.Query("SELECT id, pwd FROM collection_old")
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			var pwd string
			if err := rows.Scan(&id, &pwd); err != nil {
				return nil, err
			}
			result[id] = pwd
		}
		return result, rows.Err()
	}

	rows, err := tx.Query("SELECT path FROM documents_old")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result[0] = commonDir(paths)
	return result, nil
}

// commonDir returns the longest common directory prefix of a set of
// absolute paths, falling back to "/" if none share one.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return "/"
	}
	common := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		dir := filepath.Dir(p)
		for !strings.HasPrefix(dir+"/", common+"/") {
			parent := filepath.Dir(common)
			if parent == common {
				break
			}
			common = parent
		}
	}
	return common
}

// createCollectionsFromPwds inserts one collections row per distinct
// pwd, naming each from the pwd basename and resolving collisions by
// appending -{id}. Returns the new collection id keyed by old
// collection id (or 0 for the implicit single-collection case).
func createCollectionsFromPwds(tx *sql.Tx, pwdByOldID map[int64]string) (map[int64]int64, error) {
	newIDs := make(map[int64]int64, len(pwdByOldID))
	usedNames := make(map[string]bool)

	for oldID, pwd := range pwdByOldID {
		base := filepath.Base(pwd)
		if base == "" || base == "." || base == "/" {
			base = "collection"
		}
		name := base
		for usedNames[name] {
			name = fmt.Sprintf("%s-%d", base, oldID)
		}
		usedNames[name] = true

		result, err := tx.Exec(`
			INSERT INTO collections (name, pwd, glob_pattern, created_at, updated_at)
			VALUES (?, ?, '**/*.md', datetime('now'), datetime('now'))
		`, name, pwd)
		if err != nil {
			return nil, err
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		newIDs[oldID] = newID
	}

	return newIDs, nil
}

// migrateDocumentRows folds duplicate legacy bodies into content by
// hash (earliest created_at wins) and re-inserts documents against the
// new schema with relative paths derived from each collection's pwd.
func migrateDocumentRows(tx *sql.Tx, newCollectionID map[int64]int64, pwdByOldID map[int64]string, hasLegacyCollection bool) error {
	query := "SELECT id, path, body, created_at, modified_at FROM documents_old ORDER BY created_at ASC"
	if hasLegacyCollection {
		query = "SELECT id, collection_id, path, body, created_at, modified_at FROM documents_old ORDER BY created_at ASC"
	}

	rows, err := tx.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, oldCollectionID int64
		var path, body, createdAt, modifiedAt string

		if hasLegacyCollection {
			if err := rows.Scan(&id, &oldCollectionID, &path, &body, &createdAt, &modifiedAt); err != nil {
				return err
			}
		} else {
			if err := rows.Scan(&id, &path, &body, &createdAt, &modifiedAt); err != nil {
				return err
			}
			oldCollectionID = 0
		}

		hash := sha256Hex(body)
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO content (hash, doc, created_at) VALUES (?, ?, ?)",
			hash, body, createdAt,
		); err != nil {
			return fmt.Errorf("failed to fold content for legacy document %d: %w", id, err)
		}

		collectionID := newCollectionID[oldCollectionID]
		pwd := pwdByOldID[oldCollectionID]
		relPath := relativeTo(pwd, path)
		title := titleFromStem(relPath)

		if _, err := tx.Exec(`
			INSERT INTO documents (collection_id, path, title, hash, created_at, modified_at, active)
			VALUES (?, ?, ?, ?, ?, ?, 1)
		`, collectionID, relPath, title, hash, createdAt, modifiedAt); err != nil {
			return fmt.Errorf("failed to insert migrated document %d: %w", id, err)
		}
	}

	return rows.Err()
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func relativeTo(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

func titleFromStem(relPath string) string {
	stem := strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))
	return stem
}
