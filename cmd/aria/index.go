package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amirrezaskh/aria/internal/retrieval"
)

var indexCmd = &cobra.Command{
	Use:   "index [directory]",
	Short: "Index a directory of documents as retrieval context",
	Long: `Walks a directory of .md and .txt files, chunks them, and stores them in
the context store. Indexed documents ground future cover letters. Defaults
to the context_dir from configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var indexConfigPath string

func init() {
	indexCmd.Flags().StringVar(&indexConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	a, cleanup, err := buildApp(ctx, indexConfigPath, false)
	if err != nil {
		return err
	}
	defer cleanup()

	root := a.cfg.ContextDir
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		return fmt.Errorf("no directory given and context_dir is not configured")
	}
	if a.database == nil {
		return fmt.Errorf("indexing requires DATABASE_URL, an in-memory store does not outlive the process")
	}

	count, err := retrieval.IndexDirectory(ctx, a.store, root)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents from %s\n", count, root)
	return nil
}
