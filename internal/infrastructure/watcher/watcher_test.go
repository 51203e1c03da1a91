package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type eventRecorder struct {
	mu       sync.Mutex
	ingested []string
	removed  []string
}

func (r *eventRecorder) onIngest(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested = append(r.ingested, filepath.Base(path))
}

func (r *eventRecorder) onRemove(fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, fileName)
}

func (r *eventRecorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ingested...), append([]string(nil), r.removed...)
}

func setupWatcher(t *testing.T) (string, *eventRecorder) {
	t.Helper()
	dir := t.TempDir()
	rec := &eventRecorder{}

	supported := func(ext string) bool { return ext == ".txt" }
	w := New(dir, supported, rec.onIngest, rec.onRemove, zap.NewNop())
	w.debounce = 50 * time.Millisecond

	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)

	return dir, rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWatcher_IngestOnCreate(t *testing.T) {
	dir, rec := setupWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o600))

	waitFor(t, func() bool {
		ingested, _ := rec.snapshot()
		return len(ingested) == 1 && ingested[0] == "a.txt"
	})
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir, rec := setupWatcher(t)
	path := filepath.Join(dir, "a.txt")

	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("more data\n")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	waitFor(t, func() bool {
		ingested, _ := rec.snapshot()
		return len(ingested) >= 1
	})

	// Let any stray timers fire, then confirm the burst collapsed.
	time.Sleep(200 * time.Millisecond)
	ingested, _ := rec.snapshot()
	assert.Len(t, ingested, 1)
}

func TestWatcher_RemoveCancelsPendingIngest(t *testing.T) {
	dir, rec := setupWatcher(t)
	path := filepath.Join(dir, "a.txt")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Remove(path))

	waitFor(t, func() bool {
		_, removed := rec.snapshot()
		return len(removed) == 1 && removed[0] == "a.txt"
	})
}

func TestWatcher_IgnoresUnsupportedExtensions(t *testing.T) {
	dir, rec := setupWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.png"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o600))

	waitFor(t, func() bool {
		ingested, _ := rec.snapshot()
		return len(ingested) == 1
	})

	ingested, _ := rec.snapshot()
	assert.Equal(t, []string{"keep.txt"}, ingested)
}

func TestWatcher_StartIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, func(string) bool { return true }, func(string) {}, func(string) {}, zap.NewNop())
	t.Cleanup(w.Stop)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
}
