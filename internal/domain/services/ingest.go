package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/codex-core/internal/domain/entities"
	"github.com/ersonp/codex-core/internal/domain/ports"
)

// timeNow returns the current time (can be swapped in tests).
var timeNow = time.Now

// IngestService turns uploaded files into embedded chunks in the vector
// store and rows in the catalog.
type IngestService struct {
	collections  *CollectionService
	catalog      ports.Catalog
	vectors      ports.VectorStore
	embedder     ports.Embedder
	extractor    ports.Extractor
	chunkSize    int
	chunkOverlap int
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	collections *CollectionService,
	catalog ports.Catalog,
	vectors ports.VectorStore,
	embedder ports.Embedder,
	extractor ports.Extractor,
	chunkSize, chunkOverlap int,
) *IngestService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &IngestService{
		collections:  collections,
		catalog:      catalog,
		vectors:      vectors,
		embedder:     embedder,
		extractor:    extractor,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// UploadResult reports the outcome of an upload.
type UploadResult struct {
	Added []string `json:"added"`
	// Conflicts lists file names that already exist in the collection. When
	// non-empty nothing was ingested; the caller decides whether to update.
	Conflicts []string `json:"files_to_update,omitempty"`
}

// Upload ingests the files at the given paths into a collection. File names
// that already exist in the collection are reported as conflicts and nothing
// at all is ingested, mirroring the two-step confirm flow of the API.
func (s *IngestService) Upload(ctx context.Context, collection string, paths []string) (*UploadResult, error) {
	if _, err := s.collections.Get(ctx, collection); err != nil {
		return nil, err
	}

	release := s.collections.Guard(collection)
	defer release()

	result := &UploadResult{}
	for _, path := range paths {
		existing, err := s.catalog.FindDocumentByName(ctx, collection, filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("checking existing documents: %w", err)
		}
		if existing != nil {
			result.Conflicts = append(result.Conflicts, filepath.Base(path))
		}
	}
	if len(result.Conflicts) > 0 {
		return result, nil
	}

	for _, path := range paths {
		doc, err := s.ingestFile(ctx, collection, path)
		if err != nil {
			return nil, fmt.Errorf("ingesting %s: %w", filepath.Base(path), err)
		}
		result.Added = append(result.Added, doc.FileName)
	}

	return result, nil
}

// Update replaces documents whose file names match the uploads: the old
// chunks are removed from the vector store and the file is re-ingested.
// Files not previously present are ingested as new.
func (s *IngestService) Update(ctx context.Context, collection string, paths []string) (*UploadResult, error) {
	coll, err := s.collections.Get(ctx, collection)
	if err != nil {
		return nil, err
	}

	release := s.collections.Guard(collection)
	defer release()

	result := &UploadResult{}
	for _, path := range paths {
		fileName := filepath.Base(path)

		existing, err := s.catalog.FindDocumentByName(ctx, collection, fileName)
		if err != nil {
			return nil, fmt.Errorf("checking existing documents: %w", err)
		}
		if existing != nil {
			if err := s.vectors.DeleteByDocument(ctx, coll.VectorName, existing.ID); err != nil {
				return nil, fmt.Errorf("removing old chunks for %s: %w", fileName, err)
			}
			if err := s.catalog.DeleteDocument(ctx, collection, existing.ID); err != nil {
				return nil, fmt.Errorf("removing old catalog row for %s: %w", fileName, err)
			}
		}

		doc, err := s.ingestFile(ctx, collection, path)
		if err != nil {
			return nil, fmt.Errorf("ingesting %s: %w", fileName, err)
		}
		result.Added = append(result.Added, doc.FileName)
	}

	return result, nil
}

// ListDocuments returns all documents in a collection.
func (s *IngestService) ListDocuments(ctx context.Context, collection string) ([]entities.Document, error) {
	if _, err := s.collections.Get(ctx, collection); err != nil {
		return nil, err
	}

	docs, err := s.catalog.ListDocuments(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// CountDocuments returns the number of documents in a collection.
func (s *IngestService) CountDocuments(ctx context.Context, collection string) (int, error) {
	if _, err := s.collections.Get(ctx, collection); err != nil {
		return 0, err
	}

	count, err := s.catalog.CountDocuments(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// DeleteDocuments removes the documents with the given ref doc ids and
// returns how many were deleted. Unknown ids are skipped; when nothing
// matched, ErrNoDocumentsDeleted is returned.
func (s *IngestService) DeleteDocuments(ctx context.Context, collection string, ids []string) (int, error) {
	coll, err := s.collections.Get(ctx, collection)
	if err != nil {
		return 0, err
	}

	release := s.collections.Guard(collection)
	defer release()

	deleted := 0
	for _, id := range ids {
		doc, err := s.catalog.FindDocumentByID(ctx, collection, id)
		if err != nil {
			return deleted, fmt.Errorf("looking up document %s: %w", id, err)
		}
		if doc == nil {
			continue
		}

		if err := s.vectors.DeleteByDocument(ctx, coll.VectorName, id); err != nil {
			return deleted, fmt.Errorf("deleting chunks for %s: %w", id, err)
		}
		if err := s.catalog.DeleteDocument(ctx, collection, id); err != nil {
			return deleted, fmt.Errorf("deleting catalog row for %s: %w", id, err)
		}

		// Best effort: the stored source file may already be gone.
		_ = os.Remove(filepath.Join(s.collections.Dir(collection), doc.FileName))

		deleted++
	}

	if deleted == 0 {
		return 0, entities.ErrNoDocumentsDeleted
	}

	return deleted, nil
}

// Supported reports whether the extractor understands the file extension.
func (s *IngestService) Supported(ext string) bool {
	return s.extractor.Supported(ext)
}

// ingestFile extracts, chunks, embeds and stores one file. The caller holds
// the collection guard.
func (s *IngestService) ingestFile(ctx context.Context, collection, path string) (*entities.Document, error) {
	coll, err := s.collections.Get(ctx, collection)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading file info: %w", err)
	}

	now := timeNow().UTC()
	doc := &entities.Document{
		ID:         uuid.New().String(),
		Collection: collection,
		FileName:   filepath.Base(path),
		SizeBytes:  info.Size(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	texts := ChunkText(text, s.chunkSize, s.chunkOverlap)
	if len(texts) > 0 {
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("generating embeddings: %w", err)
		}
		if len(embeddings) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(texts))
		}

		chunks := make([]entities.Chunk, len(texts))
		for i := range texts {
			chunks[i] = entities.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				FileName:   doc.FileName,
				Index:      i,
				Text:       texts[i],
				Embedding:  embeddings[i],
			}
		}

		if err := s.vectors.UpsertChunks(ctx, coll.VectorName, chunks); err != nil {
			return nil, fmt.Errorf("upserting chunks: %w", err)
		}
	}
	doc.ChunkCount = len(texts)

	if err := s.keepSourceFile(path, collection, doc.FileName); err != nil {
		return nil, err
	}

	if err := s.catalog.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	return doc, nil
}

// keepSourceFile copies the uploaded file into the collection directory so
// the original can be re-ingested or served later.
func (s *IngestService) keepSourceFile(path, collection, fileName string) error {
	dst := filepath.Join(s.collections.Dir(collection), fileName)
	if dst == path {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("storing source file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("copying source file: %w", err)
	}

	return out.Close()
}
