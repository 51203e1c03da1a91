package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/codex-core/internal/application/server"
	"github.com/ersonp/codex-core/internal/infrastructure/watcher"
)

// shutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var (
		debug    bool
		watchDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Serves the collections, documents and query endpoints over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), debug, watchDir)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVarP(&watchDir, "watch", "w", "", "Directory to watch for documents to auto-ingest")

	return cmd
}

func runServe(ctx context.Context, debug bool, watchDir string) error {
	return withDeps(ctx, debug, func(d *deps) error {
		if watchDir != "" {
			d.Config.Watch.Directory = watchDir
		}
		// The bare /query endpoint needs its target to exist.
		defaultColl := d.Config.Ingest.DefaultCollection
		if _, err := d.Collections.Get(ctx, defaultColl); err != nil {
			if _, err := d.Collections.Create(ctx, defaultColl); err != nil {
				return fmt.Errorf("creating default collection: %w", err)
			}
		}

		srv := server.NewServer(
			d.Collections, d.Ingest, d.Query, d.Vectors, d.LLM,
			defaultColl, &d.Config.Server, d.Logger,
		)

		if d.Config.Watch.Directory != "" {
			w, err := startWatcher(ctx, d)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer w.Stop()
		}

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("serving: %w", err)
		case <-ctx.Done():
		}

		d.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
}

// startWatcher wires the configured watch directory into the ingest service:
// dropped files are upserted into the watch collection, removed files are
// deleted from it.
func startWatcher(ctx context.Context, d *deps) (*watcher.Watcher, error) {
	collName := d.Config.Watch.Collection
	if collName == "" {
		collName = d.Config.Ingest.DefaultCollection
	}
	if _, err := d.Collections.Get(ctx, collName); err != nil {
		if _, err := d.Collections.Create(ctx, collName); err != nil {
			return nil, fmt.Errorf("creating watch collection: %w", err)
		}
	}

	if err := os.MkdirAll(d.Config.Watch.Directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating watch directory: %w", err)
	}

	onIngest := func(path string) {
		if _, err := d.Ingest.Update(ctx, collName, []string{path}); err != nil {
			d.Logger.Error("watch ingest failed", zap.String("path", path), zap.Error(err))
			return
		}
		d.Logger.Info("watch ingested", zap.String("path", path))
	}

	onRemove := func(fileName string) {
		doc, err := d.Catalog.FindDocumentByName(ctx, collName, fileName)
		if err != nil || doc == nil {
			return
		}
		if _, err := d.Ingest.DeleteDocuments(ctx, collName, []string{doc.ID}); err != nil {
			d.Logger.Error("watch delete failed", zap.String("file", fileName), zap.Error(err))
			return
		}
		d.Logger.Info("watch removed", zap.String("file", fileName))
	}

	w := watcher.New(d.Config.Watch.Directory, func(ext string) bool {
		return ext != "" && d.Ingest.Supported(ext)
	}, onIngest, onRemove, d.Logger)

	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
