// Package sqlite provides a SQLite implementation of the Catalog interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/codex-core/internal/domain/entities"
)

// Repository implements ports.Catalog using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite catalog at the given path, creating
// parent directories as needed.
func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("catalog path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{db: db, path: path}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name        TEXT PRIMARY KEY,
		vector_name TEXT NOT NULL UNIQUE,
		created_at  TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		collection  TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE ON UPDATE CASCADE,
		file_name   TEXT NOT NULL,
		size_bytes  INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL,
		UNIQUE(collection, file_name)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// SaveCollection records a collection.
func (r *Repository) SaveCollection(ctx context.Context, collection *entities.Collection) error {
	query := `
	INSERT INTO collections (name, vector_name, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET vector_name = excluded.vector_name
	`

	createdAt := collection.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, query, collection.Name, collection.VectorName, createdAt); err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}

	return nil
}

// ListCollections lists all recorded collections with document counts.
func (r *Repository) ListCollections(ctx context.Context) ([]entities.Collection, error) {
	query := `
	SELECT c.name, c.vector_name, c.created_at, COUNT(d.id)
	FROM collections c
	LEFT JOIN documents d ON d.collection = c.name
	GROUP BY c.name
	ORDER BY c.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var colls []entities.Collection
	for rows.Next() {
		var c entities.Collection
		if err := rows.Scan(&c.Name, &c.VectorName, &c.CreatedAt, &c.DocumentCount); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		colls = append(colls, c)
	}

	return colls, rows.Err()
}

// DeleteCollection removes a collection; document rows cascade.
func (r *Repository) DeleteCollection(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// RenameCollection moves all rows from oldName to newName; document rows
// follow through ON UPDATE CASCADE.
func (r *Repository) RenameCollection(ctx context.Context, oldName, newName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE collections SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		return fmt.Errorf("renaming collection: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("collection %q: %w", oldName, entities.ErrCollectionNotFound)
	}

	return nil
}

// SaveDocument saves or updates a document row.
func (r *Repository) SaveDocument(ctx context.Context, doc *entities.Document) error {
	query := `
	INSERT INTO documents (id, collection, file_name, size_bytes, chunk_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		file_name = excluded.file_name,
		size_bytes = excluded.size_bytes,
		chunk_count = excluded.chunk_count,
		updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Collection, doc.FileName, doc.SizeBytes, doc.ChunkCount,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	return nil
}

// FindDocumentByName finds a document by file name within a collection.
func (r *Repository) FindDocumentByName(ctx context.Context, collection, fileName string) (*entities.Document, error) {
	query := `
	SELECT id, collection, file_name, size_bytes, chunk_count, created_at, updated_at
	FROM documents WHERE collection = ? AND file_name = ?
	`
	return r.findDocument(ctx, query, collection, fileName)
}

// FindDocumentByID finds a document by its ref doc id.
func (r *Repository) FindDocumentByID(ctx context.Context, collection, id string) (*entities.Document, error) {
	query := `
	SELECT id, collection, file_name, size_bytes, chunk_count, created_at, updated_at
	FROM documents WHERE collection = ? AND id = ?
	`
	return r.findDocument(ctx, query, collection, id)
}

func (r *Repository) findDocument(ctx context.Context, query string, args ...any) (*entities.Document, error) {
	var doc entities.Document
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&doc.ID, &doc.Collection, &doc.FileName, &doc.SizeBytes, &doc.ChunkCount,
		&doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying document: %w", err)
	}
	return &doc, nil
}

// ListDocuments lists all documents in a collection.
func (r *Repository) ListDocuments(ctx context.Context, collection string) ([]entities.Document, error) {
	query := `
	SELECT id, collection, file_name, size_bytes, chunk_count, created_at, updated_at
	FROM documents WHERE collection = ? ORDER BY file_name
	`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []entities.Document
	for rows.Next() {
		var doc entities.Document
		if err := rows.Scan(&doc.ID, &doc.Collection, &doc.FileName, &doc.SizeBytes,
			&doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// DeleteDocument removes a document row by id.
func (r *Repository) DeleteDocument(ctx context.Context, collection, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// CountDocuments returns the number of documents in a collection.
func (r *Repository) CountDocuments(ctx context.Context, collection string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}
