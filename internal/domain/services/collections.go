package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/codex-core/internal/domain/entities"
	"github.com/ersonp/codex-core/internal/domain/ports"
)

// VectorNamePrefix prefixes every collection name in the vector store so that
// unrelated collections on a shared Qdrant instance are left alone.
const VectorNamePrefix = "codex_"

var reInvalidName = regexp.MustCompile(`[^a-z0-9_-]`)

// ValidateName reports whether a collection name is acceptable: lowercase
// alphanumerics, underscores and hyphens, non-empty.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", entities.ErrInvalidName)
	}
	if name != strings.ToLower(name) || reInvalidName.MatchString(name) {
		return fmt.Errorf("%w: %q may only contain lowercase letters, digits, '_' and '-'", entities.ErrInvalidName, name)
	}
	return nil
}

// CollectionService manages the collection registry: catalog rows, vector
// store collections, and on-disk document directories.
//
// Every collection gets a stable vector store name derived from a UUID rather
// than from the user-visible name, so renames never have to touch the vector
// store (Qdrant has no rename operation).
type CollectionService struct {
	catalog    ports.Catalog
	vectors    ports.VectorStore
	dataDir    string
	vectorSize uint64

	// reg serializes registry mutations: create, rename and delete hold it
	// across their existence checks so two concurrent calls cannot both pass
	// the check and provision duplicate vector collections.
	reg sync.Mutex

	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

// NewCollectionService creates a new collection service. dataDir is the root
// under which per-collection document directories live.
func NewCollectionService(catalog ports.Catalog, vectors ports.VectorStore, dataDir string, vectorSize uint64) *CollectionService {
	return &CollectionService{
		catalog:    catalog,
		vectors:    vectors,
		dataDir:    dataDir,
		vectorSize: vectorSize,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Guard acquires the per-collection write lock and returns its release
// function. Ingest, update and delete serialize through this so concurrent
// uploads to one collection cannot interleave.
func (s *CollectionService) Guard(name string) func() {
	s.mu.Lock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// LoadExisting registers collections already present in the vector store that
// the catalog does not know about (for instance after a catalog rebuild), and
// re-ensures vector collections for every catalog row.
func (s *CollectionService) LoadExisting(ctx context.Context) error {
	known, err := s.catalog.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("listing catalog collections: %w", err)
	}

	knownVectorNames := make(map[string]bool, len(known))
	for _, c := range known {
		knownVectorNames[c.VectorName] = true
		if err := s.vectors.EnsureCollection(ctx, c.VectorName, s.vectorSize); err != nil {
			return fmt.Errorf("ensuring vector collection %q: %w", c.Name, err)
		}
		if err := os.MkdirAll(s.Dir(c.Name), 0o750); err != nil {
			return fmt.Errorf("creating collection directory: %w", err)
		}
	}

	existing, err := s.vectors.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("listing vector collections: %w", err)
	}

	for _, vectorName := range existing {
		if !strings.HasPrefix(vectorName, VectorNamePrefix) || knownVectorNames[vectorName] {
			continue
		}
		// Orphan vector collection: adopt it under its suffix.
		name := strings.TrimPrefix(vectorName, VectorNamePrefix)
		coll := &entities.Collection{
			Name:       name,
			VectorName: vectorName,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.catalog.SaveCollection(ctx, coll); err != nil {
			return fmt.Errorf("adopting collection %q: %w", name, err)
		}
		if err := os.MkdirAll(s.Dir(name), 0o750); err != nil {
			return fmt.Errorf("creating collection directory: %w", err)
		}
	}

	return nil
}

// Create creates a new collection.
func (s *CollectionService) Create(ctx context.Context, name string) (*entities.Collection, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	s.reg.Lock()
	defer s.reg.Unlock()

	if _, err := s.Get(ctx, name); err == nil {
		return nil, fmt.Errorf("collection %q: %w", name, entities.ErrCollectionExists)
	}

	coll := &entities.Collection{
		Name:       name,
		VectorName: VectorNamePrefix + uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.vectors.EnsureCollection(ctx, coll.VectorName, s.vectorSize); err != nil {
		return nil, fmt.Errorf("creating vector collection: %w", err)
	}

	if err := os.MkdirAll(s.Dir(name), 0o750); err != nil {
		return nil, fmt.Errorf("creating collection directory: %w", err)
	}

	if err := s.catalog.SaveCollection(ctx, coll); err != nil {
		return nil, fmt.Errorf("saving collection: %w", err)
	}

	return coll, nil
}

// Delete removes a collection, its vectors, catalog rows and files.
func (s *CollectionService) Delete(ctx context.Context, name string) error {
	s.reg.Lock()
	defer s.reg.Unlock()

	coll, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	release := s.Guard(name)
	defer release()

	if err := s.vectors.DeleteCollection(ctx, coll.VectorName); err != nil {
		return fmt.Errorf("deleting vector collection: %w", err)
	}

	if err := s.catalog.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("deleting catalog rows: %w", err)
	}

	if err := os.RemoveAll(s.Dir(name)); err != nil {
		return fmt.Errorf("removing collection directory: %w", err)
	}

	s.mu.Lock()
	delete(s.locks, name)
	s.mu.Unlock()

	return nil
}

// Rename renames a collection. The vector store collection keeps its
// UUID-derived name, so only the catalog and the document directory move.
func (s *CollectionService) Rename(ctx context.Context, oldName, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}

	s.reg.Lock()
	defer s.reg.Unlock()

	if _, err := s.Get(ctx, oldName); err != nil {
		return err
	}
	if _, err := s.Get(ctx, newName); err == nil {
		return fmt.Errorf("collection %q: %w", newName, entities.ErrCollectionExists)
	}

	release := s.Guard(oldName)
	defer release()

	if err := s.catalog.RenameCollection(ctx, oldName, newName); err != nil {
		return fmt.Errorf("renaming catalog rows: %w", err)
	}

	if err := os.Rename(s.Dir(oldName), s.Dir(newName)); err != nil {
		return fmt.Errorf("renaming collection directory: %w", err)
	}

	s.mu.Lock()
	delete(s.locks, oldName)
	s.mu.Unlock()

	return nil
}

// List returns all collections with document counts.
func (s *CollectionService) List(ctx context.Context) ([]entities.Collection, error) {
	colls, err := s.catalog.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return colls, nil
}

// Get returns the collection with the given name, or ErrCollectionNotFound.
func (s *CollectionService) Get(ctx context.Context, name string) (*entities.Collection, error) {
	colls, err := s.catalog.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	for i := range colls {
		if colls[i].Name == name {
			return &colls[i], nil
		}
	}
	return nil, fmt.Errorf("collection %q: %w", name, entities.ErrCollectionNotFound)
}

// Dir returns the on-disk document directory for a collection.
func (s *CollectionService) Dir(name string) string {
	return filepath.Join(s.dataDir, "collections", name)
}
