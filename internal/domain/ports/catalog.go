package ports

import (
	"context"

	"github.com/ersonp/codex-core/internal/domain/entities"
)

// Catalog defines the interface for the relational document catalog. The
// catalog mirrors what is in the vector store and is the source of truth for
// listings; the ingest service keeps the two in sync.
type Catalog interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Collection operations

	// SaveCollection records a collection.
	SaveCollection(ctx context.Context, collection *entities.Collection) error

	// ListCollections lists all recorded collections with document counts.
	ListCollections(ctx context.Context) ([]entities.Collection, error)

	// DeleteCollection removes a collection and its document rows.
	DeleteCollection(ctx context.Context, name string) error

	// RenameCollection moves all rows from oldName to newName.
	RenameCollection(ctx context.Context, oldName, newName string) error

	// Document operations

	// SaveDocument saves or updates a document row.
	SaveDocument(ctx context.Context, doc *entities.Document) error

	// FindDocumentByName finds a document by file name within a collection.
	// Returns nil when no such document exists.
	FindDocumentByName(ctx context.Context, collection, fileName string) (*entities.Document, error)

	// FindDocumentByID finds a document by its ref doc id.
	FindDocumentByID(ctx context.Context, collection, id string) (*entities.Document, error)

	// ListDocuments lists all documents in a collection.
	ListDocuments(ctx context.Context, collection string) ([]entities.Document, error)

	// DeleteDocument removes a document row by id.
	DeleteDocument(ctx context.Context, collection, id string) error

	// CountDocuments returns the number of documents in a collection.
	CountDocuments(ctx context.Context, collection string) (int, error)
}
