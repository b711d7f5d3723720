package store

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

const currentSchemaVersion = 1

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

const contentTable = `
CREATE TABLE IF NOT EXISTS content (
	hash TEXT PRIMARY KEY,
	doc TEXT NOT NULL,
	created_at TEXT DEFAULT (datetime('now'))
);
`

const collectionsTable = `
CREATE TABLE IF NOT EXISTS collections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	pwd TEXT NOT NULL,
	glob_pattern TEXT NOT NULL,
	created_at TEXT DEFAULT (datetime('now')),
	updated_at TEXT DEFAULT (datetime('now')),
	UNIQUE(pwd, glob_pattern)
);
`

const documentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	path TEXT NOT NULL,
	title TEXT NOT NULL,
	hash TEXT NOT NULL REFERENCES content(hash),
	created_at TEXT DEFAULT (datetime('now')),
	modified_at TEXT DEFAULT (datetime('now')),
	active INTEGER NOT NULL DEFAULT 1,
	UNIQUE(collection_id, path)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection_active ON documents(collection_id, active);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(hash);
CREATE INDEX IF NOT EXISTS idx_documents_path_active ON documents(path, active);
`

const pathContextsTable = `
CREATE TABLE IF NOT EXISTS path_contexts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	path_prefix TEXT NOT NULL,
	context TEXT NOT NULL,
	created_at TEXT DEFAULT (datetime('now')),
	UNIQUE(collection_id, path_prefix)
);

CREATE INDEX IF NOT EXISTS idx_path_contexts_collection_prefix ON path_contexts(collection_id, path_prefix);
`

const contentVectorsTable = `
CREATE TABLE IF NOT EXISTS content_vectors (
	hash TEXT NOT NULL REFERENCES content(hash),
	seq INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	model TEXT NOT NULL,
	embedded_at TEXT DEFAULT (datetime('now')),
	PRIMARY KEY (hash, seq, model)
);

CREATE INDEX IF NOT EXISTS idx_content_vectors_hash ON content_vectors(hash);
CREATE INDEX IF NOT EXISTS idx_content_vectors_model ON content_vectors(model);
`

const ollamaCacheTable = `
CREATE TABLE IF NOT EXISTS ollama_cache (
	hash TEXT PRIMARY KEY,
	result TEXT NOT NULL,
	created_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_ollama_cache_created_at ON ollama_cache(created_at);
`

const documentsFTSTable = `
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	path,
	body,
	tokenize = 'unicode61'
);
`

// createVecTable creates the sqlite-vec virtual table for the given dimensions.
func createVecTable(db *sql.DB, dimensions int) error {
	query := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS vectors_vec USING vec0(
			hash_seq TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, dimensions)

	_, err := db.Exec(query)
	return err
}

// initSchema initializes the database schema, migrating a pre-existing
// flat schema (where documents carried the body directly) if detected.
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		version = 0
	} else if err != nil {
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		log.Debug("schema is up to date", "version", version)
		return nil
	}

	if needsFlatSchemaMigration(db) {
		log.Debug("detected pre-existing flat schema, migrating")
		if err := migrateFromFlatSchema(db); err != nil {
			return fmt.Errorf("failed to migrate flat schema: %w", err)
		}
	}

	log.Debug("migrating schema", "from", version, "to", currentSchemaVersion)

	if version < 1 {
		if err := migrateV1(db); err != nil {
			return fmt.Errorf("failed to migrate to v1: %w", err)
		}
	}

	return nil
}

// needsFlatSchemaMigration detects the legacy layout: a `documents` table
// exists but `content` does not, meaning `documents` still carries the
// body directly instead of referencing it by hash.
func needsFlatSchemaMigration(db *sql.DB) bool {
	hasDocuments := tableExists(db, "documents")
	hasContent := tableExists(db, "content")
	return hasDocuments && !hasContent
}

func tableExists(db *sql.DB, name string) bool {
	var got string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&got)
	return err == nil
}

// migrateV1 creates the initial schema.
func migrateV1(db *sql.DB) error {
	log.Debug("applying migration v1")

	tables := []string{
		contentTable,
		collectionsTable,
		documentsTable,
		pathContextsTable,
		contentVectorsTable,
		ollamaCacheTable,
		documentsFTSTable,
	}
	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	if err := createFTSTriggers(db); err != nil {
		return fmt.Errorf("failed to create fts triggers: %w", err)
	}

	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return nil
}

// createFTSTriggers keeps documents_fts mirroring (path, body) of every
// row in documents, joined through content for the body text.
const ftsTriggers = `
CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
	INSERT INTO documents_fts(rowid, path, body)
	SELECT new.id, new.path, content.doc FROM content WHERE content.hash = new.hash;
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
	DELETE FROM documents_fts WHERE rowid = old.id;
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
	DELETE FROM documents_fts WHERE rowid = old.id;
	INSERT INTO documents_fts(rowid, path, body)
	SELECT new.id, new.path, content.doc FROM content WHERE content.hash = new.hash;
END;
`

func createFTSTriggers(db *sql.DB) error {
	_, err := db.Exec(ftsTriggers)
	return err
}

// ensureVecTable ensures vectors_vec exists with the correct dimensions.
// If a table already exists with a different dimension it is dropped and
// recreated; callers must re-embed in that case.
func ensureVecTable(db *sql.DB, dimensions int) error {
	existingDim, ok, err := vecTableDimensions(db)
	if err != nil {
		return fmt.Errorf("failed to check vec table: %w", err)
	}

	if !ok {
		log.Debug("creating vec table", "dimensions", dimensions)
		return createVecTable(db, dimensions)
	}

	if existingDim != dimensions {
		log.Debug("vec table dimension changed, recreating", "from", existingDim, "to", dimensions)
		if _, err := db.Exec("DROP TABLE vectors_vec"); err != nil {
			return fmt.Errorf("failed to drop outdated vec table: %w", err)
		}
		return createVecTable(db, dimensions)
	}

	return nil
}

// vecTableDimensions inspects sqlite_master for the vec0 table's declared
// dimension, parsed out of its stored CREATE statement.
func vecTableDimensions(db *sql.DB) (int, bool, error) {
	var sqlText string
	err := db.QueryRow(`SELECT sql FROM sqlite_master WHERE type='table' AND name='vectors_vec'`).Scan(&sqlText)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var dim int
	if _, scanErr := fmt.Sscanf(extractBetween(sqlText, "float[", "]"), "%d", &dim); scanErr != nil {
		return 0, false, fmt.Errorf("failed to parse vec table dimension: %w", scanErr)
	}
	return dim, true, nil
}

// extractBetween returns the substring strictly between the first
// occurrences of start and end, or "" if either is absent.
func extractBetween(s, start, end string) string {
	i := indexOf(s, start)
	if i < 0 {
		return ""
	}
	i += len(start)
	j := indexOf(s[i:], end)
	if j < 0 {
		return ""
	}
	return s[i : i+j]
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
