// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/codex-core/internal/domain/entities"
	"github.com/ersonp/codex-core/internal/domain/ports"
)

// VectorStore is an in-memory implementation of ports.VectorStore.
type VectorStore struct {
	mu          sync.Mutex
	Collections map[string][]entities.Chunk
	Err         error
	// SearchScores overrides the score of returned chunks (default 1.0).
	SearchScores []float32
}

// NewVectorStore returns an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{Collections: make(map[string][]entities.Chunk)}
}

// EnsureCollection creates the collection if it doesn't exist.
func (m *VectorStore) EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Collections[collection]; !ok {
		m.Collections[collection] = nil
	}
	return nil
}

// DeleteCollection removes the collection.
func (m *VectorStore) DeleteCollection(ctx context.Context, collection string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Collections, collection)
	return nil
}

// ListCollections returns the names of all collections.
func (m *VectorStore) ListCollections(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.Collections))
	for name := range m.Collections {
		names = append(names, name)
	}
	return names, nil
}

// UpsertChunks stores chunks in the collection.
func (m *VectorStore) UpsertChunks(ctx context.Context, collection string, chunks []entities.Chunk) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Collections[collection] = append(m.Collections[collection], chunks...)
	return nil
}

// DeleteByDocument removes every chunk with the given document id.
func (m *VectorStore) DeleteByDocument(ctx context.Context, collection string, documentID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []entities.Chunk
	for _, c := range m.Collections[collection] {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	m.Collections[collection] = kept
	return nil
}

// Search returns up to limit chunks in insertion order.
func (m *VectorStore) Search(ctx context.Context, collection string, embedding []float32, limit int) ([]ports.ScoredChunk, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	chunks := m.Collections[collection]
	if limit < len(chunks) {
		chunks = chunks[:limit]
	}
	scored := make([]ports.ScoredChunk, len(chunks))
	for i, c := range chunks {
		score := float32(1.0)
		if i < len(m.SearchScores) {
			score = m.SearchScores[i]
		}
		scored[i] = ports.ScoredChunk{Chunk: c, Score: score}
	}
	return scored, nil
}

// Count returns the number of chunks in the collection.
func (m *VectorStore) Count(ctx context.Context, collection string) (uint64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.Collections[collection])), nil
}

// Ping returns the configured error.
func (m *VectorStore) Ping(ctx context.Context) error {
	return m.Err
}
