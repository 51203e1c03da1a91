package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		collection string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask a question against a collection",
		Long:  "Retrieves the most relevant chunks and asks the LLM to answer using them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], collection, limit)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "n", "default", "Collection to query")
	cmd.Flags().IntVarP(&limit, "limit", "l", 5, "Maximum number of retrieved chunks")

	return cmd
}

func runQuery(cmd *cobra.Command, question, collection string, limit int) error {
	ctx := cmd.Context()

	return withDeps(ctx, false, func(d *deps) error {
		answer, err := d.Query.Query(ctx, collection, question, limit)
		if err != nil {
			return fmt.Errorf("querying collection: %w", err)
		}

		fmt.Println(answer.Answer)

		if len(answer.SourceFiles) > 0 {
			fmt.Println("\nSources:")
			for _, f := range answer.SourceFiles {
				fmt.Printf("  - %s\n", f)
			}
		}

		return nil
	})
}
