package config

import (
	"os"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultLLMBaseURL       = "http://localhost:11434/v1"
	DefaultEmbedModel       = "nomic-embed-text"
	DefaultQueryModel       = "llama3"
	DefaultRerankModel      = "llama3"
	DefaultChunkByteSize    = 6144
	DefaultMultiGetMaxBytes = 1 << 20 // 1MB
	DefaultCacheMaxEntries  = 1000

	DefaultDBFileName = "qmd.db"
)

// DefaultExcludeDirs returns the directory names skipped while walking
// a collection, unless the caller overrides them.
func DefaultExcludeDirs() []string {
	return []string{
		"node_modules",
		".git",
		".cache",
		"vendor",
		"dist",
		"build",
	}
}

// DefaultConfigDir returns the default configuration directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/qmd"
	}
	return filepath.Join(home, ".config", "qmd")
}

// DefaultCacheHome returns the root directory under which the default
// database path resides, honoring $XDG_CACHE_HOME when set.
func DefaultCacheHome() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "qmd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cache/qmd"
	}
	return filepath.Join(home, ".cache", "qmd")
}

// DefaultDatabasePath returns the default database file path.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultCacheHome(), DefaultDBFileName)
}
