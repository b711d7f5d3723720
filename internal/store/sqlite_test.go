package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabaseFile(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestOpenCreatesExpectedTables(t *testing.T) {
	s := setupTestStore(t)

	for _, table := range []string{"content", "collections", "documents", "path_contexts", "content_vectors", "ollama_cache", "documents_fts"} {
		assert.True(t, tableExists(s.DB(), table), "expected table %s to exist", table)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s1, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	assert.True(t, tableExists(s2.DB(), "documents"))
}

func TestEnsureVecTableCreatesOnFirstUse(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.EnsureVecTable(8))
	assert.True(t, tableExists(s.DB(), "vectors_vec"))

	dim, ok, err := vecTableDimensions(s.DB())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, dim)
}

func TestEnsureVecTableRecreatesOnDimensionChange(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.EnsureVecTable(8))
	require.NoError(t, s.EnsureVecTable(16))

	dim, ok, err := vecTableDimensions(s.DB())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 16, dim)
}

func TestFTSTriggersMirrorDocuments(t *testing.T) {
	s := setupTestStore(t)
	db := s.DB()

	_, err := db.Exec(`INSERT INTO content (hash, doc) VALUES ('h1', 'hello world')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO collections (name, pwd, glob_pattern) VALUES ('c', '/repo', '**/*.md')`)
	require.NoError(t, err)

	res, err := db.Exec(`INSERT INTO documents (collection_id, path, title, hash) VALUES (1, 'a.md', 'A', 'h1')`)
	require.NoError(t, err)
	docID, err := res.LastInsertId()
	require.NoError(t, err)

	var body string
	err = db.QueryRow(`SELECT body FROM documents_fts WHERE rowid = ?`, docID).Scan(&body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", body)

	_, err = db.Exec(`DELETE FROM documents WHERE id = ?`, docID)
	require.NoError(t, err)

	err = db.QueryRow(`SELECT body FROM documents_fts WHERE rowid = ?`, docID).Scan(&body)
	assert.Error(t, err)
}
