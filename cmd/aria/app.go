package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/amirrezaskh/aria/internal/catalog"
	"github.com/amirrezaskh/aria/internal/config"
	"github.com/amirrezaskh/aria/internal/db"
	"github.com/amirrezaskh/aria/internal/latex"
	"github.com/amirrezaskh/aria/internal/llm"
	"github.com/amirrezaskh/aria/internal/observability"
	"github.com/amirrezaskh/aria/internal/pipeline"
	"github.com/amirrezaskh/aria/internal/retrieval"
)

// app bundles the wired collaborators shared by the CLI commands.
type app struct {
	cfg       *config.Config
	llm       llm.Client
	catalog   *catalog.Catalog
	store     retrieval.Store
	database  *db.DB
	generator *pipeline.Generator
	printer   *observability.Printer
}

// buildApp wires the application from configuration. The database is
// optional: without DATABASE_URL the context store lives in memory and job
// persistence is disabled. Callers must invoke close when done.
func buildApp(ctx context.Context, configPath string, verbose bool) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or api_key in the config file)")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	cat, err := catalog.Load(cfg.DataDir)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	a := &app{
		cfg:     cfg,
		llm:     client,
		catalog: cat,
		printer: observability.NewPrinter(os.Stdout),
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.database = database

		store, err := retrieval.NewPostgresStore(ctx, database.Pool(), client)
		if err != nil {
			database.Close()
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to prepare context store: %w", err)
		}
		a.store = store
	} else {
		log.Println("DATABASE_URL not set, using in-memory context store")
		a.store = retrieval.NewMemoryStore(client)
	}

	opts := pipeline.Options{
		LLM:      client,
		Catalog:  cat,
		Store:    a.store,
		Compiler: latex.NewPDFLaTeX(),
		Candidate: latex.Candidate{
			Name:     cfg.Name,
			Email:    cfg.Email,
			Phone:    cfg.Phone,
			LinkedIn: cfg.LinkedIn,
			GitHub:   cfg.GitHub,
		},
		OutputDir: cfg.OutputDir,
	}
	if a.database != nil {
		opts.Jobs = a.database
	}
	if cfg.Verbose {
		opts.Progress = a.printer.Progress
	}

	generator, err := pipeline.NewGenerator(opts)
	if err != nil {
		a.closeAll()
		return nil, nil, err
	}
	a.generator = generator

	return a, a.closeAll, nil
}

func (a *app) closeAll() {
	if a.database != nil {
		a.database.Close()
	}
	if a.llm != nil {
		_ = a.llm.Close()
	}
}
