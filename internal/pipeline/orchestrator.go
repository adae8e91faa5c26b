package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/amirrezaskh/aria/internal/catalog"
	"github.com/amirrezaskh/aria/internal/db"
	"github.com/amirrezaskh/aria/internal/latex"
	"github.com/amirrezaskh/aria/internal/llm"
	"github.com/amirrezaskh/aria/internal/retrieval"
)

// JobRecorder persists a completed application for later similarity
// lookups. *db.DB satisfies it.
type JobRecorder interface {
	SaveJobApplication(ctx context.Context, embedder db.Embedder, company, position, description string, resumeGenerated bool) (uuid.UUID, error)
}

// Options configures a Generator. LLM, Catalog, and Store are required;
// everything else has a working default.
type Options struct {
	LLM       llm.Client
	Catalog   *catalog.Catalog
	Store     retrieval.Store
	Compiler  latex.Compiler
	Candidate latex.Candidate
	OutputDir string
	// Jobs, when set, records each successful run. Persistence failures
	// are logged and never fail a run.
	Jobs JobRecorder
	// Progress, when set, is called before each stage runs.
	Progress ProgressFunc
}

// Generator runs the document workflows. It is safe for concurrent use:
// every run gets its own State and writes under company/position scoped
// output paths.
type Generator struct {
	deps     *deps
	jobs     JobRecorder
	progress ProgressFunc
}

// NewGenerator validates the options and builds a Generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.LLM == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("context store is required")
	}
	if opts.Compiler == nil {
		opts.Compiler = latex.NewPDFLaTeX()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "out"
	}
	return &Generator{
		deps: &deps{
			llm:       opts.LLM,
			catalog:   opts.Catalog,
			store:     opts.Store,
			compiler:  opts.Compiler,
			candidate: opts.Candidate,
			outputDir: opts.OutputDir,
		},
		jobs:     opts.Jobs,
		progress: opts.Progress,
	}, nil
}

// resumeGraph is the full résumé plus cover letter workflow.
func (g *Generator) resumeGraph() *Graph {
	d := g.deps
	return NewGraph([]Stage{
		&generateExperiences{d},
		&generateSkills{d},
		&selectProjects{d},
		&summarizeProjects{d},
		&generateHighlights{d},
		&compileResume{d},
		&retrieveContext{d},
		&generateCoverLetter{d},
		&compileCoverLetter{d},
		&indexCoverLetter{d},
	}, g.progress)
}

// coverLetterGraph writes a cover letter against an existing résumé.
func (g *Generator) coverLetterGraph() *Graph {
	d := g.deps
	return NewGraph([]Stage{
		&loadResume{d},
		&retrieveContext{d},
		&generateCoverLetterOnly{d},
		&compileCoverLetter{d},
		&indexCoverLetter{d},
	}, g.progress)
}

// GenerateDocuments runs the full workflow: a tailored résumé followed by a
// cover letter grounded in it. The returned state carries every artifact
// and any non-fatal issues; on error it carries everything produced before
// the failing stage.
func (g *Generator) GenerateDocuments(ctx context.Context, jobPosting, company, position string) (*State, error) {
	state, err := NewResumeState(jobPosting, company, position)
	if err != nil {
		return nil, err
	}
	if err := g.resumeGraph().Run(ctx, state); err != nil {
		return state, err
	}
	g.recordJob(ctx, state, true)
	return state, nil
}

// GenerateCoverLetter runs the shorter workflow that writes a cover letter
// for an existing résumé artifact.
func (g *Generator) GenerateCoverLetter(ctx context.Context, jobPosting, company, position, resumePath string) (*State, error) {
	state, err := NewCoverLetterState(jobPosting, company, position, resumePath)
	if err != nil {
		return nil, err
	}
	if err := g.coverLetterGraph().Run(ctx, state); err != nil {
		return state, err
	}
	g.recordJob(ctx, state, false)
	return state, nil
}

func (g *Generator) recordJob(ctx context.Context, state *State, resumeGenerated bool) {
	if g.jobs == nil {
		return
	}
	id, err := g.jobs.SaveJobApplication(ctx, g.deps.llm, state.Company, state.Position, state.JobPosting, resumeGenerated)
	if err != nil {
		log.Printf("warning: failed to record job application for %s/%s: %v", state.Company, state.Position, err)
		return
	}
	state.Metadata["job_application_id"] = id.String()
}
