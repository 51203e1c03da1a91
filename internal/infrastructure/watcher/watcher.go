// Package watcher provides directory watching with fsnotify and debouncing,
// feeding dropped files into a collection.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches one directory and invokes callbacks when document files
// appear, change or disappear. Writes are debounced so a file is only
// ingested once it has settled.
type Watcher struct {
	dir       string
	supported func(ext string) bool
	onIngest  func(path string)
	onRemove  func(fileName string)
	debounce  time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	timers   map[string]*time.Timer
	watcher  *fsnotify.Watcher
	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher over dir. supported filters by file extension;
// onIngest and onRemove receive settled create/write and remove events.
func New(dir string, supported func(ext string) bool, onIngest func(path string), onRemove func(fileName string), logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:       dir,
		supported: supported,
		onIngest:  onIngest,
		onRemove:  onRemove,
		debounce:  defaultDebounce,
		logger:    logger,
		timers:    make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}
}

// Start begins watching. It returns immediately; events are handled until
// ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !w.supported(filepath.Ext(ev.Name)) {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
			return
		}
		w.debounceIngest(ev.Name)
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.cancelPending(ev.Name)
		w.onRemove(filepath.Base(ev.Name))
	}
}

// debounceIngest resets the per-file timer so rapid write bursts result in a
// single ingest once the file has settled.
func (w *Watcher) debounceIngest(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		w.onIngest(path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
}
