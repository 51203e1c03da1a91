// Package main provides the entry point for the codex service and CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version      = "0.1.0-dev"
	globalConfig string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "codex",
		Short:   "A RAG service over named document collections, powered by Qdrant and an OpenAI-compatible LLM",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalConfig, "config", "c", "", "Path to config file (default codex.yaml)")

	rootCmd.AddCommand(
		newServeCmd(),
		newQueryCmd(),
		newIngestCmd(),
		newCollectionsCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
