package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage document collections",
	}

	cmd.AddCommand(
		newCollectionsListCmd(),
		newCollectionsCreateCmd(),
		newCollectionsDeleteCmd(),
		newCollectionsRenameCmd(),
	)

	return cmd
}

func newCollectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, false, func(d *deps) error {
				colls, err := d.Collections.List(ctx)
				if err != nil {
					return fmt.Errorf("listing collections: %w", err)
				}

				if len(colls) == 0 {
					fmt.Println("No collections.")
					return nil
				}

				for _, c := range colls {
					chunks, err := d.Vectors.Count(ctx, c.VectorName)
					if err != nil {
						return fmt.Errorf("counting chunks for %q: %w", c.Name, err)
					}
					fmt.Printf("%s\t%d document(s)\t%d chunk(s)\n", c.Name, c.DocumentCount, chunks)
				}
				return nil
			})
		},
	}
}

func newCollectionsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, false, func(d *deps) error {
				if _, err := d.Collections.Create(ctx, args[0]); err != nil {
					return fmt.Errorf("creating collection: %w", err)
				}
				fmt.Printf("Collection %q created\n", args[0])
				return nil
			})
		},
	}
}

func newCollectionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a collection and all its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, false, func(d *deps) error {
				if err := d.Collections.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("deleting collection: %w", err)
				}
				fmt.Printf("Collection %q deleted\n", args[0])
				return nil
			})
		},
	}
}

func newCollectionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, false, func(d *deps) error {
				if err := d.Collections.Rename(ctx, args[0], args[1]); err != nil {
					return fmt.Errorf("renaming collection: %w", err)
				}
				fmt.Printf("Collection %q renamed to %q\n", args[0], args[1])
				return nil
			})
		},
	}
}
