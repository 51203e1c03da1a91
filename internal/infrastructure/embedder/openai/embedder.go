// Package openai provides an Embedder implementation using any
// OpenAI-compatible embeddings endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/codex-core/internal/infrastructure/config"
)

// DefaultVectorSize is the dimension of text-embedding-3-small vectors.
const DefaultVectorSize = 1536

// Embedder implements the Embedder interface using the OpenAI API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	vectorSize uint64
}

// NewEmbedder creates a new OpenAI embedder. When cfg.BaseURL is set, the
// client talks to that endpoint instead of api.openai.com, which covers
// self-hosted embedding servers exposing the OpenAI API shape.
func NewEmbedder(cfg config.EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("embedder API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	vectorSize := cfg.VectorSize
	if vectorSize == 0 {
		vectorSize = DefaultVectorSize
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		vectorSize: vectorSize,
	}, nil
}

// VectorSize returns the dimension of the vectors this embedder produces.
func (e *Embedder) VectorSize() uint64 {
	return e.vectorSize
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	return embeddings[0], nil
}

// EmbedBatch generates vector embeddings for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}
