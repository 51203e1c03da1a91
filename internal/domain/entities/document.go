// Package entities contains the core domain types.
package entities

import "time"

// Document represents one ingested file within a collection.
type Document struct {
	// ID is the ref doc id shared by every chunk of this document.
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Chunk is one overlapping slice of a document's extracted text.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	FileName   string    `json:"file_name"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}
