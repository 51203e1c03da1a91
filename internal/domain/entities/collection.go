package entities

import "time"

// Collection is a named, independently indexed set of documents.
type Collection struct {
	Name string `json:"name"`
	// VectorName is the stable name of the backing vector store collection.
	// It is derived from a UUID at creation so renaming a collection never
	// touches the vector store.
	VectorName    string    `json:"-"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}
