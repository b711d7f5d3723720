// Package config handles configuration loading and validation for qmd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete qmd configuration.
type Config struct {
	// IndexPath is the SQLite database file backing the store.
	IndexPath string `mapstructure:"index_path"`

	// CacheHome is the directory used for the default database location
	// and any on-disk scratch state.
	CacheHome string `mapstructure:"cache_home"`

	LLM   LLMConfig   `mapstructure:"llm"`
	Index IndexConfig `mapstructure:"index"`

	// ExcludeDirs names directories skipped while walking a collection,
	// in addition to dotfile-prefixed directories.
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
}

// LLMConfig configures the LLMProvider client.
type LLMConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	EmbedModel  string `mapstructure:"embed_model"`
	QueryModel  string `mapstructure:"query_model"`
	RerankModel string `mapstructure:"rerank_model"`
}

// IndexConfig configures chunking and retrieval limits.
type IndexConfig struct {
	ChunkByteSize    int `mapstructure:"chunk_byte_size"`
	MultiGetMaxBytes int `mapstructure:"multi_get_max_bytes"`
	CacheMaxEntries  int `mapstructure:"cache_max_entries"`
}

// Global configuration instance.
var cfg *Config

// Get returns the current configuration, initializing defaults on first use.
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		IndexPath: DefaultDatabasePath(),
		CacheHome: DefaultCacheHome(),
		LLM: LLMConfig{
			BaseURL:     DefaultLLMBaseURL,
			EmbedModel:  DefaultEmbedModel,
			QueryModel:  DefaultQueryModel,
			RerankModel: DefaultRerankModel,
		},
		Index: IndexConfig{
			ChunkByteSize:    DefaultChunkByteSize,
			MultiGetMaxBytes: DefaultMultiGetMaxBytes,
			CacheMaxEntries:  DefaultCacheMaxEntries,
		},
		ExcludeDirs: DefaultExcludeDirs(),
	}
}

// Load reads configuration from a .env file, a YAML config file, and
// environment variables, in that order of increasing precedence.
func Load(configFile string) error {
	if envPath := findEnvFile(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			log.Debug("failed to load .env file", "path", envPath, "error", err)
		} else {
			log.Debug("loaded .env file", "path", envPath)
		}
	}

	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(DefaultConfigDir())
		viper.AddConfigPath(".")

		if rcPath := findRCFile(); rcPath != "" {
			viper.SetConfigFile(rcPath)
		}
	}

	viper.SetEnvPrefix("QMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("no config file found, using defaults")
	} else {
		log.Debug("loaded config", "file", viper.ConfigFileUsed())
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	// A relocated cache_home moves the default database with it; an
	// explicitly configured index_path is left as given.
	if cfg.IndexPath == DefaultDatabasePath() && cfg.CacheHome != DefaultCacheHome() {
		cfg.IndexPath = filepath.Join(cfg.CacheHome, DefaultDBFileName)
	}

	loadAPIKeyFromEnv()

	return nil
}

// setDefaults sets default values in viper.
func setDefaults() {
	viper.SetDefault("index_path", DefaultDatabasePath())
	viper.SetDefault("cache_home", DefaultCacheHome())

	viper.SetDefault("llm.base_url", DefaultLLMBaseURL)
	viper.SetDefault("llm.embed_model", DefaultEmbedModel)
	viper.SetDefault("llm.query_model", DefaultQueryModel)
	viper.SetDefault("llm.rerank_model", DefaultRerankModel)

	viper.SetDefault("index.chunk_byte_size", DefaultChunkByteSize)
	viper.SetDefault("index.multi_get_max_bytes", DefaultMultiGetMaxBytes)
	viper.SetDefault("index.cache_max_entries", DefaultCacheMaxEntries)

	viper.SetDefault("exclude_dirs", DefaultExcludeDirs())
}

// findRCFile searches for .qmdrc.yaml starting from the current directory
// and walking up to the filesystem root.
func findRCFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		rcPath := filepath.Join(dir, ".qmdrc.yaml")
		if _, err := os.Stat(rcPath); err == nil {
			return rcPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// findEnvFile searches for .env starting from the current directory and
// walking up to the filesystem root.
func findEnvFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// loadAPIKeyFromEnv loads the LLM API key from the environment if it
// wasn't set via config file or viper env binding (the key name doesn't
// follow the QMD_ prefix convention since it's shared with other tools).
func loadAPIKeyFromEnv() {
	if cfg.LLM.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
	}
}

// ConfigFilePath returns the path of the loaded config file, or empty string if none.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
