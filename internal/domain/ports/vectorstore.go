// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/codex-core/internal/domain/entities"
)

// ScoredChunk is a chunk returned from a similarity search.
type ScoredChunk struct {
	Chunk entities.Chunk
	Score float32
}

// VectorStore defines the interface for vector database operations. All
// operations are scoped to a named collection because the service manages
// many collections over one connection.
type VectorStore interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error

	// DeleteCollection removes the collection and all its data.
	DeleteCollection(ctx context.Context, collection string) error

	// ListCollections returns the names of all existing collections.
	ListCollections(ctx context.Context) ([]string, error)

	// UpsertChunks stores document chunks with their embeddings.
	UpsertChunks(ctx context.Context, collection string, chunks []entities.Chunk) error

	// DeleteByDocument removes every chunk belonging to the given ref doc id.
	DeleteByDocument(ctx context.Context, collection string, documentID string) error

	// Search performs a similarity search and returns the closest chunks.
	Search(ctx context.Context, collection string, embedding []float32, limit int) ([]ScoredChunk, error)

	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (uint64, error)

	// Ping checks that the vector database is reachable.
	Ping(ctx context.Context) error
}
