// Package pipeline implements the document generation workflow: a fixed
// sequence of stages that each call one collaborator and thread their
// results through a shared state record.
package pipeline

import (
	"fmt"

	"github.com/amirrezaskh/aria/internal/types"
)

// State is the single mutable record threaded through one workflow run.
// Input fields are set at construction and never mutated; every other field
// is written by exactly one stage and read by later ones. A State must never
// be shared between runs: each run constructs its own.
type State struct {
	// Input
	JobPosting string
	Company    string
	Position   string
	// ResumePath points at an existing résumé artifact; only set for
	// cover-letter-only runs.
	ResumePath string

	// Stage-produced
	Experiences      string
	Skills           string
	ProjectNames     []string
	ProjectSummaries string
	Highlights       string
	CoverLetter      string
	// ResumeText is the loaded text of an existing résumé; only set for
	// cover-letter-only runs.
	ResumeText string

	// Derived artifacts. PDF paths are empty when typesetting failed,
	// which is a degraded outcome rather than a pipeline error.
	ResumeLaTeX        string
	ResumeTexFile      string
	ResumePDFFile      string
	CoverLetterLaTeX   string
	CoverLetterTexFile string
	CoverLetterPDFFile string

	// Side-channel
	Context  []types.Document
	Metadata map[string]any
	Issues   []Issue
}

// Issue records a non-fatal problem observed during a run, such as a
// selected project title that does not exist in the catalog.
type Issue struct {
	Stage   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Stage, i.Message)
}

// NewResumeState constructs the state for a résumé+cover-letter run.
func NewResumeState(jobPosting, company, position string) (*State, error) {
	if err := validateInput(jobPosting, company, position); err != nil {
		return nil, err
	}
	return &State{
		JobPosting: jobPosting,
		Company:    company,
		Position:   position,
		Metadata:   make(map[string]any),
	}, nil
}

// NewCoverLetterState constructs the state for a cover-letter-only run
// against an existing résumé artifact.
func NewCoverLetterState(jobPosting, company, position, resumePath string) (*State, error) {
	if err := validateInput(jobPosting, company, position); err != nil {
		return nil, err
	}
	if resumePath == "" {
		return nil, fmt.Errorf("resume path is required")
	}
	return &State{
		JobPosting: jobPosting,
		Company:    company,
		Position:   position,
		ResumePath: resumePath,
		Metadata:   make(map[string]any),
	}, nil
}

func validateInput(jobPosting, company, position string) error {
	if jobPosting == "" {
		return fmt.Errorf("job posting is required")
	}
	if company == "" {
		return fmt.Errorf("company is required")
	}
	if position == "" {
		return fmt.Errorf("position is required")
	}
	return nil
}

// AddIssue records a non-fatal problem on the state.
func (s *State) AddIssue(stage, format string, args ...any) {
	s.Issues = append(s.Issues, Issue{Stage: stage, Message: fmt.Sprintf(format, args...)})
}
