package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/codex-core/internal/infrastructure/config"
)

func TestNewEmbedder(t *testing.T) {
	t.Run("requires key or base url", func(t *testing.T) {
		_, err := NewEmbedder(config.EmbedderConfig{})
		require.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		e, err := NewEmbedder(config.EmbedderConfig{APIKey: "sk-test"})
		require.NoError(t, err)
		assert.Equal(t, uint64(DefaultVectorSize), e.VectorSize())
	})

	t.Run("explicit vector size", func(t *testing.T) {
		e, err := NewEmbedder(config.EmbedderConfig{BaseURL: "http://localhost:8080/v1", VectorSize: 768})
		require.NoError(t, err)
		assert.Equal(t, uint64(768), e.VectorSize())
	})
}

func TestEmbedBatch_Empty(t *testing.T) {
	e, err := NewEmbedder(config.EmbedderConfig{APIKey: "sk-test"})
	require.NoError(t, err)

	// No texts means no API call and no embeddings.
	embeddings, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}
