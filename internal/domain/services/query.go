package services

import (
	"context"
	"fmt"

	"github.com/ersonp/codex-core/internal/domain/entities"
	"github.com/ersonp/codex-core/internal/domain/ports"
)

// DefaultSearchLimit is the default number of chunks retrieved per query.
const DefaultSearchLimit = 5

// QueryService answers questions against a collection: retrieve the closest
// chunks, then condition the LLM's answer on them.
type QueryService struct {
	collections *CollectionService
	vectors     ports.VectorStore
	embedder    ports.Embedder
	llm         ports.LLM
}

// NewQueryService creates a new query service.
func NewQueryService(collections *CollectionService, vectors ports.VectorStore, embedder ports.Embedder, llm ports.LLM) *QueryService {
	return &QueryService{
		collections: collections,
		vectors:     vectors,
		embedder:    embedder,
		llm:         llm,
	}
}

// Query answers a question against the named collection.
func (s *QueryService) Query(ctx context.Context, collection, question string, limit int) (*entities.Answer, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	coll, err := s.collections.Get(ctx, collection)
	if err != nil {
		return nil, err
	}

	// Check the upstream before doing any retrieval work, so a down LLM
	// surfaces as 503 rather than a late failure.
	if err := s.llm.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrLLMUnavailable, err)
	}

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	scored, err := s.vectors.Search(ctx, coll.VectorName, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	contexts := make([]string, len(scored))
	nodes := make([]entities.SourceNode, len(scored))
	seen := make(map[string]bool)
	var sourceFiles []string

	for i, sc := range scored {
		contexts[i] = sc.Chunk.Text
		nodes[i] = entities.SourceNode{
			Text:  sc.Chunk.Text,
			Score: sc.Score,
			Metadata: map[string]string{
				"file_name":   sc.Chunk.FileName,
				"document_id": sc.Chunk.DocumentID,
			},
		}
		if !seen[sc.Chunk.FileName] {
			seen[sc.Chunk.FileName] = true
			sourceFiles = append(sourceFiles, sc.Chunk.FileName)
		}
	}

	answer, err := s.llm.Answer(ctx, question, contexts)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &entities.Answer{
		Question:    question,
		Answer:      answer,
		SourceFiles: sourceFiles,
		SourceNodes: nodes,
	}, nil
}
