package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/amirrezaskh/aria/internal/db"
	"github.com/amirrezaskh/aria/internal/pipeline"
)

// GenerateRequest represents the request body for /api/generate
type GenerateRequest struct {
	JobPosting string `json:"job_posting" validate:"required"`
	Company    string `json:"company" validate:"required"`
	Position   string `json:"position" validate:"required"`
}

// CoverLetterRequest represents the request body for /api/generate/cover-letter
type CoverLetterRequest struct {
	JobPosting string `json:"job_posting" validate:"required"`
	Company    string `json:"company" validate:"required"`
	Position   string `json:"position" validate:"required"`
	ResumePath string `json:"resume_path" validate:"required"`
}

// GenerateResponse represents the result of a generation run
type GenerateResponse struct {
	Company        string   `json:"company"`
	Position       string   `json:"position"`
	ResumeTex      string   `json:"resume_tex,omitempty"`
	ResumePDF      string   `json:"resume_pdf,omitempty"`
	CoverLetterTex string   `json:"cover_letter_tex,omitempty"`
	CoverLetterPDF string   `json:"cover_letter_pdf,omitempty"`
	Issues         []string `json:"issues,omitempty"`
}

// SimilarJobsResponse represents the response for /api/jobs/similar
type SimilarJobsResponse struct {
	Jobs []db.SimilarJob `json:"jobs"`
}

// handleGenerate runs the full résumé plus cover letter workflow.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg, ok := s.validateRequest(req); !ok {
		s.errorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if !s.runs.TryAcquire(1) {
		s.errorResponse(w, http.StatusTooManyRequests, "Too many active generation runs")
		return
	}
	defer s.runs.Release(1)

	state, err := s.generator.GenerateDocuments(r.Context(), req.JobPosting, req.Company, req.Position)
	if err != nil {
		log.Printf("Generation failed for %s/%s: %v", req.Company, req.Position, err)
		s.errorResponse(w, http.StatusInternalServerError, "Generation failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, stateResponse(state))
}

// handleGenerateCoverLetter runs the cover-letter-only workflow.
func (s *Server) handleGenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req CoverLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg, ok := s.validateRequest(req); !ok {
		s.errorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if !s.runs.TryAcquire(1) {
		s.errorResponse(w, http.StatusTooManyRequests, "Too many active generation runs")
		return
	}
	defer s.runs.Release(1)

	state, err := s.generator.GenerateCoverLetter(r.Context(), req.JobPosting, req.Company, req.Position, req.ResumePath)
	if err != nil {
		log.Printf("Cover letter generation failed for %s/%s: %v", req.Company, req.Position, err)
		s.errorResponse(w, http.StatusInternalServerError, "Generation failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, stateResponse(state))
}

// handleSimilarJobs returns previously recorded applications similar to the
// query. Requires the job database.
func (s *Server) handleSimilarJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Job database is not configured")
		return
	}

	q := r.URL.Query()
	company := q.Get("company")
	position := q.Get("position")
	if company == "" && position == "" {
		s.errorResponse(w, http.StatusBadRequest, "Either company or position is required")
		return
	}

	threshold := db.DefaultSimilarityThreshold
	if raw := q.Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			s.errorResponse(w, http.StatusBadRequest, "threshold must be a number greater than 0 and at most 1")
			return
		}
		threshold = parsed
	}

	jobs, err := s.jobs.FindSimilar(r.Context(), s.embedder, company, position, q.Get("description"), threshold, 10)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if jobs == nil {
		jobs = []db.SimilarJob{}
	}

	s.jsonResponse(w, http.StatusOK, SimilarJobsResponse{Jobs: jobs})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateRequest runs struct validation and renders the first failure as a
// client-friendly message.
func (s *Server) validateRequest(req any) (string, bool) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return verrs[0].Field() + " is required", false
		}
		return "Invalid request", false
	}
	return "", true
}

func stateResponse(state *pipeline.State) GenerateResponse {
	resp := GenerateResponse{
		Company:        state.Company,
		Position:       state.Position,
		ResumeTex:      state.ResumeTexFile,
		ResumePDF:      state.ResumePDFFile,
		CoverLetterTex: state.CoverLetterTexFile,
		CoverLetterPDF: state.CoverLetterPDFFile,
	}
	for _, issue := range state.Issues {
		resp.Issues = append(resp.Issues, issue.String())
	}
	return resp
}
