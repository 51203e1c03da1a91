package services

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/codex-core/internal/domain/entities"
	"github.com/ersonp/codex-core/internal/domain/mocks"
)

func setupCollectionService(t *testing.T) (*CollectionService, *mocks.Catalog, *mocks.VectorStore) {
	t.Helper()
	catalog := mocks.NewCatalog()
	vectors := mocks.NewVectorStore()
	svc := NewCollectionService(catalog, vectors, t.TempDir(), 3)
	return svc, catalog, vectors
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple lowercase", input: "notes", wantErr: false},
		{name: "digits underscores hyphens", input: "my_notes-2024", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "uppercase", input: "Notes", wantErr: true},
		{name: "spaces", input: "my notes", wantErr: true},
		{name: "path separator", input: "a/b", wantErr: true},
		{name: "dots", input: "..", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, entities.ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCollectionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates catalog row, vector collection and directory", func(t *testing.T) {
		svc, catalog, vectors := setupCollectionService(t)

		coll, err := svc.Create(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, "notes", coll.Name)
		assert.True(t, strings.HasPrefix(coll.VectorName, VectorNamePrefix))

		_, ok := catalog.Collections["notes"]
		assert.True(t, ok)
		_, ok = vectors.Collections[coll.VectorName]
		assert.True(t, ok)

		info, err := os.Stat(svc.Dir("notes"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects invalid name", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		_, err := svc.Create(ctx, "Bad Name")
		assert.ErrorIs(t, err, entities.ErrInvalidName)
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		_, err := svc.Create(ctx, "notes")
		require.NoError(t, err)
		_, err = svc.Create(ctx, "notes")
		assert.ErrorIs(t, err, entities.ErrCollectionExists)
	})

	t.Run("vector names are unique per collection", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		a, err := svc.Create(ctx, "one")
		require.NoError(t, err)
		b, err := svc.Create(ctx, "two")
		require.NoError(t, err)
		assert.NotEqual(t, a.VectorName, b.VectorName)
	})
}

func TestCollectionService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes everything", func(t *testing.T) {
		svc, catalog, vectors := setupCollectionService(t)
		coll, err := svc.Create(ctx, "notes")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, "notes"))

		_, ok := catalog.Collections["notes"]
		assert.False(t, ok)
		_, ok = vectors.Collections[coll.VectorName]
		assert.False(t, ok)
		_, err = os.Stat(svc.Dir("notes"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("unknown collection", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		err := svc.Delete(ctx, "missing")
		assert.ErrorIs(t, err, entities.ErrCollectionNotFound)
	})
}

func TestCollectionService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("moves catalog row and directory, keeps vector name", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		created, err := svc.Create(ctx, "old")
		require.NoError(t, err)

		require.NoError(t, svc.Rename(ctx, "old", "new"))

		_, err = svc.Get(ctx, "old")
		assert.ErrorIs(t, err, entities.ErrCollectionNotFound)

		renamed, err := svc.Get(ctx, "new")
		require.NoError(t, err)
		assert.Equal(t, created.VectorName, renamed.VectorName)

		_, err = os.Stat(svc.Dir("new"))
		assert.NoError(t, err)
	})

	t.Run("source must exist", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		err := svc.Rename(ctx, "missing", "new")
		assert.ErrorIs(t, err, entities.ErrCollectionNotFound)
	})

	t.Run("target must not exist", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		_, err := svc.Create(ctx, "a")
		require.NoError(t, err)
		_, err = svc.Create(ctx, "b")
		require.NoError(t, err)

		err = svc.Rename(ctx, "a", "b")
		assert.ErrorIs(t, err, entities.ErrCollectionExists)
	})

	t.Run("invalid new name", func(t *testing.T) {
		svc, _, _ := setupCollectionService(t)
		_, err := svc.Create(ctx, "a")
		require.NoError(t, err)

		err = svc.Rename(ctx, "a", "Not Valid")
		assert.ErrorIs(t, err, entities.ErrInvalidName)
	})
}

func TestCollectionService_LoadExisting(t *testing.T) {
	ctx := context.Background()

	t.Run("adopts orphan vector collections", func(t *testing.T) {
		svc, catalog, vectors := setupCollectionService(t)
		vectors.Collections[VectorNamePrefix+"legacy"] = nil
		vectors.Collections["unrelated"] = nil

		require.NoError(t, svc.LoadExisting(ctx))

		coll, err := svc.Get(ctx, "legacy")
		require.NoError(t, err)
		assert.Equal(t, VectorNamePrefix+"legacy", coll.VectorName)

		// Collections without the prefix belong to someone else.
		_, ok := catalog.Collections["unrelated"]
		assert.False(t, ok)
	})

	t.Run("re-ensures known collections", func(t *testing.T) {
		svc, _, vectors := setupCollectionService(t)
		coll, err := svc.Create(ctx, "notes")
		require.NoError(t, err)

		// Simulate a wiped vector store.
		delete(vectors.Collections, coll.VectorName)

		require.NoError(t, svc.LoadExisting(ctx))
		_, ok := vectors.Collections[coll.VectorName]
		assert.True(t, ok)
	})
}

func TestCollectionService_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	svc, catalog, vectors := setupCollectionService(t)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, "notes")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, entities.ErrCollectionExists)
		}
	}
	assert.Equal(t, 1, created, "exactly one Create should win")
	assert.Len(t, catalog.Collections, 1)

	// The losers must not leave orphaned vector collections behind.
	prefixed := 0
	for name := range vectors.Collections {
		if strings.HasPrefix(name, VectorNamePrefix) {
			prefixed++
		}
	}
	assert.Equal(t, 1, prefixed)
}

func TestCollectionService_ConcurrentRename(t *testing.T) {
	ctx := context.Background()
	svc, catalog, _ := setupCollectionService(t)
	_, err := svc.Create(ctx, "src")
	require.NoError(t, err)

	targets := []string{"dst-a", "dst-b", "dst-c", "dst-d"}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			errs[i] = svc.Rename(ctx, "src", target)
		}(i, target)
	}
	wg.Wait()

	renamed := 0
	for _, err := range errs {
		if err == nil {
			renamed++
		} else {
			assert.ErrorIs(t, err, entities.ErrCollectionNotFound)
		}
	}
	assert.Equal(t, 1, renamed, "exactly one Rename should win")
	assert.Len(t, catalog.Collections, 1)
}

func TestCollectionService_Guard(t *testing.T) {
	svc, _, _ := setupCollectionService(t)

	release := svc.Guard("notes")

	acquired := make(chan struct{})
	go func() {
		r := svc.Guard("notes")
		r()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Guard acquired while first still held")
	default:
	}

	release()
	<-acquired
}
