package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.NotNil(t, c)

	assert.Equal(t, DefaultLLMBaseURL, c.LLM.BaseURL)
	assert.Equal(t, DefaultEmbedModel, c.LLM.EmbedModel)
	assert.Equal(t, DefaultQueryModel, c.LLM.QueryModel)
	assert.Equal(t, DefaultRerankModel, c.LLM.RerankModel)

	assert.Equal(t, DefaultChunkByteSize, c.Index.ChunkByteSize)
	assert.Equal(t, DefaultMultiGetMaxBytes, c.Index.MultiGetMaxBytes)
	assert.Equal(t, DefaultCacheMaxEntries, c.Index.CacheMaxEntries)

	assert.NotEmpty(t, c.ExcludeDirs)
	assert.Contains(t, c.ExcludeDirs, "node_modules")
	assert.Contains(t, c.ExcludeDirs, ".git")
}

func TestDefaultExcludeDirs(t *testing.T) {
	dirs := DefaultExcludeDirs()

	assert.NotEmpty(t, dirs)

	expected := []string{"node_modules", ".git", "vendor", "dist", "build"}
	for _, want := range expected {
		assert.Contains(t, dirs, want, "expected %s to be in default exclude dirs", want)
	}
}

func TestDefaultPaths(t *testing.T) {
	configDir := DefaultConfigDir()
	cacheHome := DefaultCacheHome()
	dbPath := DefaultDatabasePath()

	assert.NotEmpty(t, configDir)
	assert.NotEmpty(t, cacheHome)
	assert.NotEmpty(t, dbPath)

	assert.Contains(t, configDir, "qmd")
	assert.Contains(t, cacheHome, "qmd")
	assert.Contains(t, dbPath, "qmd.db")
}

func TestLoadWithConfigFile(t *testing.T) {
	viper.Reset()
	cfg = nil

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
index_path: /custom/path/qmd.db
llm:
  base_url: http://custom:11434/v1
  embed_model: custom-embed
  query_model: custom-query
  rerank_model: custom-rerank
index:
  chunk_byte_size: 2048
  multi_get_max_bytes: 65536
  cache_max_entries: 50
exclude_dirs:
  - "custom-ignore"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	err = Load(configPath)
	require.NoError(t, err)

	loaded := Get()

	assert.Equal(t, "/custom/path/qmd.db", loaded.IndexPath)
	assert.Equal(t, "http://custom:11434/v1", loaded.LLM.BaseURL)
	assert.Equal(t, "custom-embed", loaded.LLM.EmbedModel)
	assert.Equal(t, "custom-query", loaded.LLM.QueryModel)
	assert.Equal(t, "custom-rerank", loaded.LLM.RerankModel)
	assert.Equal(t, 2048, loaded.Index.ChunkByteSize)
	assert.Equal(t, 65536, loaded.Index.MultiGetMaxBytes)
	assert.Equal(t, 50, loaded.Index.CacheMaxEntries)
	assert.Contains(t, loaded.ExcludeDirs, "custom-ignore")
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	viper.Reset()
	cfg = nil

	t.Setenv("QMD_LLM_BASE_URL", "http://env-host:11434/v1")
	t.Setenv("QMD_LLM_QUERY_MODEL", "env-query-model")
	t.Setenv("OPENAI_API_KEY", "test-api-key")

	err := Load("")
	require.NoError(t, err)

	loaded := Get()

	assert.Equal(t, "http://env-host:11434/v1", loaded.LLM.BaseURL)
	assert.Equal(t, "env-query-model", loaded.LLM.QueryModel)
	assert.Equal(t, "test-api-key", loaded.LLM.APIKey)
}

func TestLoadMissingConfigFile(t *testing.T) {
	viper.Reset()
	cfg = nil

	err := Load("")
	require.NoError(t, err)

	loaded := Get()

	assert.Equal(t, DefaultLLMBaseURL, loaded.LLM.BaseURL)
	assert.Equal(t, DefaultEmbedModel, loaded.LLM.EmbedModel)
}

func TestGet(t *testing.T) {
	cfg = nil

	c1 := Get()
	assert.NotNil(t, c1)

	c2 := Get()
	assert.Same(t, c1, c2)
}

func TestGlobalConfigPath(t *testing.T) {
	path := GlobalConfigPath()
	assert.Contains(t, path, "qmd")
	assert.Contains(t, path, "config.yaml")
}
