package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amirrezaskh/aria/internal/db"
	"github.com/amirrezaskh/aria/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Starts an HTTP server exposing document generation and similar-job lookup
endpoints. Generation runs synchronously; concurrent runs are capped by
max_active_runs in configuration.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveAddr       string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, cleanup, err := buildApp(ctx, serveConfigPath, false)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := a.cfg.ServerAddr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}

	var jobs server.JobFinder
	var embedder db.Embedder
	if a.database != nil {
		jobs = a.database
		embedder = a.llm
	}

	srv, err := server.New(server.Config{
		Addr:          addr,
		MaxActiveRuns: a.cfg.MaxActiveRuns,
	}, a.generator, jobs, embedder)
	if err != nil {
		return err
	}

	return srv.Start()
}
