// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default config file name, looked up in the
// working directory when no explicit path is given.
const DefaultConfigFile = "codex.yaml"

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Storage  StorageConfig  `yaml:"storage,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Ingest   IngestConfig   `yaml:"ingest,omitempty"`
	Watch    WatchConfig    `yaml:"watch,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// StorageConfig holds paths for the catalog database and document files.
type StorageConfig struct {
	// DataDir is the root under which per-collection document directories
	// and the catalog database live.
	DataDir     string `yaml:"data_dir,omitempty"`
	CatalogPath string `yaml:"catalog_path,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host   string `yaml:"host,omitempty"`
	Port   int    `yaml:"port,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Model  string `yaml:"model,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	// BaseURL points at any OpenAI-compatible embeddings endpoint; empty
	// means api.openai.com.
	BaseURL    string `yaml:"base_url,omitempty"`
	VectorSize uint64 `yaml:"vector_size,omitempty"`
}

// LLMConfig holds configuration for the chat completion provider.
type LLMConfig struct {
	Model  string `yaml:"model,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	// BaseURL points at any OpenAI-compatible chat endpoint, e.g. a local
	// Ollama instance (http://localhost:11434/v1); empty means api.openai.com.
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float32 `yaml:"temperature,omitempty"`
}

// IngestConfig holds chunking and collection defaults.
type IngestConfig struct {
	ChunkSize         int    `yaml:"chunk_size,omitempty"`
	ChunkOverlap      int    `yaml:"chunk_overlap,omitempty"`
	DefaultCollection string `yaml:"default_collection,omitempty"`
}

// WatchConfig holds directory watch settings for auto-ingest.
type WatchConfig struct {
	Directory  string `yaml:"directory,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Embedder: EmbedderConfig{
			Model:      "text-embedding-3-small",
			VectorSize: 1536,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
		},
		Ingest: IngestConfig{
			ChunkSize:         512,
			ChunkOverlap:      50,
			DefaultCollection: "default",
		},
	}
}

// Load loads configuration from the given file, applying defaults and
// environment variable overrides. A missing file is not an error: defaults
// plus environment are returned, so the service can run configured entirely
// through the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyDerivedDefaults()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = key
	}
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		c.Qdrant.Host = host
	}
	if dir := os.Getenv("CODEX_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if url := os.Getenv("CODEX_LLM_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if url := os.Getenv("CODEX_EMBEDDER_BASE_URL"); url != "" {
		c.Embedder.BaseURL = url
	}
}

// applyDerivedDefaults fills in values computed from other settings.
func (c *Config) applyDerivedDefaults() {
	if c.Storage.CatalogPath == "" {
		c.Storage.CatalogPath = filepath.Join(c.Storage.DataDir, "catalog.db")
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		c.Ingest.ChunkOverlap = c.Ingest.ChunkSize / 10
	}
}
