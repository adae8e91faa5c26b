// Package server provides the HTTP REST API for document generation.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/semaphore"

	"github.com/amirrezaskh/aria/internal/db"
	"github.com/amirrezaskh/aria/internal/pipeline"
)

const shutdownTimeout = 30 * time.Second

// Generator runs the document workflows. Satisfied by *pipeline.Generator.
type Generator interface {
	GenerateDocuments(ctx context.Context, jobPosting, company, position string) (*pipeline.State, error)
	GenerateCoverLetter(ctx context.Context, jobPosting, company, position, resumePath string) (*pipeline.State, error)
}

// JobFinder looks up previously recorded applications. Satisfied by *db.DB.
type JobFinder interface {
	FindSimilar(ctx context.Context, embedder db.Embedder, company, position, description string, threshold float64, limit int) ([]db.SimilarJob, error)
}

// Config holds server configuration
type Config struct {
	Addr string
	// MaxActiveRuns caps concurrent generation runs; further requests are
	// rejected with 429 rather than queued.
	MaxActiveRuns int
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	generator  Generator
	jobs       JobFinder
	embedder   db.Embedder
	runs       *semaphore.Weighted
	validate   *validator.Validate
}

// New creates a new server instance. jobs and embedder may be nil, which
// disables the similar-jobs endpoint.
func New(cfg Config, generator Generator, jobs JobFinder, embedder db.Embedder) (*Server, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxActiveRuns <= 0 {
		cfg.MaxActiveRuns = 2
	}

	s := &Server{
		generator: generator,
		jobs:      jobs,
		embedder:  embedder,
		runs:      semaphore.NewWeighted(int64(cfg.MaxActiveRuns)),
		validate:  validator.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/generate/cover-letter", s.handleGenerateCoverLetter)
	mux.HandleFunc("GET /api/jobs/similar", s.handleSimilarJobs)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
	return s, nil
}

// Handler exposes the routing mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until an interrupt or
// termination signal, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
