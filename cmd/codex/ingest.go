package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	var (
		collection string
		update     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest files into a collection",
		Long:  "Extracts, chunks and embeds the given files and stores them in the collection's index.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, collection, update)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "n", "default", "Target collection")
	cmd.Flags().BoolVarP(&update, "update", "u", false, "Replace files that already exist in the collection")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string, collection string, update bool) error {
	ctx := cmd.Context()

	var paths []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("accessing file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, not a file: %s", abs)
		}
		paths = append(paths, abs)
	}

	return withDeps(ctx, false, func(d *deps) error {
		run := d.Ingest.Upload
		if update {
			run = d.Ingest.Update
		}

		result, err := run(ctx, collection, paths)
		if err != nil {
			return fmt.Errorf("ingesting files: %w", err)
		}

		if len(result.Conflicts) > 0 {
			fmt.Printf("The following files already exist: %v\n", result.Conflicts)
			fmt.Println("Re-run with --update to replace them.")
			return nil
		}

		fmt.Printf("Added %d file(s) to collection %q\n", len(result.Added), collection)
		return nil
	})
}
