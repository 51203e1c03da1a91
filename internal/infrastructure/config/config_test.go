package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, "localhost", cfg.Qdrant.Host)
		assert.Equal(t, 6334, cfg.Qdrant.Port)
		assert.Equal(t, 512, cfg.Ingest.ChunkSize)
		assert.Equal(t, 50, cfg.Ingest.ChunkOverlap)
		assert.Equal(t, "default", cfg.Ingest.DefaultCollection)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "codex.yaml")
		content := `
server:
  port: 9999
qdrant:
  host: qdrant.internal
ingest:
  chunk_size: 128
  chunk_overlap: 16
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
		assert.Equal(t, 128, cfg.Ingest.ChunkSize)
		assert.Equal(t, 16, cfg.Ingest.ChunkOverlap)
		// Untouched sections keep their defaults.
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "codex.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))

		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("catalog path derived from data dir", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "codex.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage:\n  data_dir: /var/codex\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/var/codex", "catalog.db"), cfg.Storage.CatalogPath)
	})

	t.Run("explicit catalog path wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "codex.yaml")
		content := "storage:\n  data_dir: /var/codex\n  catalog_path: /elsewhere/cat.db\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/elsewhere/cat.db", cfg.Storage.CatalogPath)
	})

	t.Run("overlap clamped below chunk size", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "codex.yaml")
		content := "ingest:\n  chunk_size: 100\n  chunk_overlap: 100\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Ingest.ChunkOverlap)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Run("openai key fills llm and embedder", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "sk-test", cfg.LLM.APIKey)
		assert.Equal(t, "sk-test", cfg.Embedder.APIKey)
	})

	t.Run("file key beats env key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")

		path := filepath.Join(t.TempDir(), "codex.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: sk-file\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-file", cfg.LLM.APIKey)
		// Embedder had no file key, so env fills it.
		assert.Equal(t, "sk-env", cfg.Embedder.APIKey)
	})

	t.Run("host and url overrides", func(t *testing.T) {
		t.Setenv("QDRANT_HOST", "qdrant.remote")
		t.Setenv("CODEX_DATA_DIR", "/data/codex")
		t.Setenv("CODEX_LLM_BASE_URL", "http://localhost:11434/v1")

		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "qdrant.remote", cfg.Qdrant.Host)
		assert.Equal(t, "/data/codex", cfg.Storage.DataDir)
		assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
		assert.Equal(t, filepath.Join("/data/codex", "catalog.db"), cfg.Storage.CatalogPath)
	})
}
