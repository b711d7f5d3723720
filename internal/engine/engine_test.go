package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmd-project/qmd/internal/config"
)

func TestNewWiresEveryService(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IndexPath = filepath.Join(t.TempDir(), "test.db")

	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	assert.NotNil(t, e.Indexer)
	assert.NotNil(t, e.Embedder)
	assert.NotNil(t, e.Search)
	assert.NotNil(t, e.Provider)
}
