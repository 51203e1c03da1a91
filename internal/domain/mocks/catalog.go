// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/codex-core/internal/domain/entities"
)

// Catalog is an in-memory implementation of ports.Catalog.
type Catalog struct {
	mu          sync.Mutex
	Collections map[string]entities.Collection
	Documents   map[string][]entities.Document
	Err         error
}

// NewCatalog returns an empty in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Collections: make(map[string]entities.Collection),
		Documents:   make(map[string][]entities.Document),
	}
}

// EnsureSchema is a no-op.
func (m *Catalog) EnsureSchema(ctx context.Context) error { return m.Err }

// Close is a no-op.
func (m *Catalog) Close() error { return nil }

// SaveCollection records a collection.
func (m *Catalog) SaveCollection(ctx context.Context, collection *entities.Collection) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Collections[collection.Name] = *collection
	return nil
}

// ListCollections lists all recorded collections with document counts.
func (m *Catalog) ListCollections(ctx context.Context) ([]entities.Collection, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	colls := make([]entities.Collection, 0, len(m.Collections))
	for _, c := range m.Collections {
		c.DocumentCount = len(m.Documents[c.Name])
		colls = append(colls, c)
	}
	return colls, nil
}

// DeleteCollection removes a collection and its documents.
func (m *Catalog) DeleteCollection(ctx context.Context, name string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Collections, name)
	delete(m.Documents, name)
	return nil
}

// RenameCollection moves all rows from oldName to newName.
func (m *Catalog) RenameCollection(ctx context.Context, oldName, newName string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.Collections[oldName]
	coll.Name = newName
	delete(m.Collections, oldName)
	m.Collections[newName] = coll
	docs := m.Documents[oldName]
	delete(m.Documents, oldName)
	for i := range docs {
		docs[i].Collection = newName
	}
	m.Documents[newName] = docs
	return nil
}

// SaveDocument saves or updates a document row.
func (m *Catalog) SaveDocument(ctx context.Context, doc *entities.Document) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.Documents[doc.Collection]
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = *doc
			return nil
		}
	}
	m.Documents[doc.Collection] = append(docs, *doc)
	return nil
}

// FindDocumentByName finds a document by file name.
func (m *Catalog) FindDocumentByName(ctx context.Context, collection, fileName string) (*entities.Document, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.Documents[collection] {
		if d.FileName == fileName {
			doc := d
			return &doc, nil
		}
	}
	return nil, nil
}

// FindDocumentByID finds a document by its ref doc id.
func (m *Catalog) FindDocumentByID(ctx context.Context, collection, id string) (*entities.Document, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.Documents[collection] {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, nil
}

// ListDocuments lists all documents in a collection.
func (m *Catalog) ListDocuments(ctx context.Context, collection string) ([]entities.Document, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Document(nil), m.Documents[collection]...), nil
}

// DeleteDocument removes a document row by id.
func (m *Catalog) DeleteDocument(ctx context.Context, collection, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.Documents[collection]
	for i := range docs {
		if docs[i].ID == id {
			m.Documents[collection] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return nil
}

// CountDocuments returns the number of documents in a collection.
func (m *Catalog) CountDocuments(ctx context.Context, collection string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Documents[collection]), nil
}
