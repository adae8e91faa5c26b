package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/amirrezaskh/aria/internal/catalog"
	"github.com/amirrezaskh/aria/internal/extract"
	"github.com/amirrezaskh/aria/internal/latex"
	"github.com/amirrezaskh/aria/internal/llm"
	"github.com/amirrezaskh/aria/internal/prompts"
	"github.com/amirrezaskh/aria/internal/retrieval"
	"github.com/amirrezaskh/aria/internal/types"
)

// deps holds the collaborators shared by every stage. Stages receive it at
// construction so a graph never reaches for globals.
type deps struct {
	llm       llm.Client
	catalog   *catalog.Catalog
	store     retrieval.Store
	compiler  latex.Compiler
	candidate latex.Candidate
	outputDir string
}

// generateExperiences asks the model to tailor the catalog experiences to
// the job posting and keeps only the LaTeX subheading blocks.
type generateExperiences struct{ *deps }

func (s *generateExperiences) Name() string { return "generate-experiences" }

func (s *generateExperiences) Run(ctx context.Context, state *State) error {
	prompt, err := prompts.Render("experiences", map[string]string{
		"Job":         state.JobPosting,
		"Experiences": s.catalog.ExperiencesJSON(),
	})
	if err != nil {
		return err
	}
	resp, err := s.llm.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return fmt.Errorf("generating experiences: %w", err)
	}
	state.Experiences = extract.Experiences(resp)
	state.Metadata["experiences_length"] = len(state.Experiences)
	return nil
}

// generateSkills tailors the technical skills section to the posting.
type generateSkills struct{ *deps }

func (s *generateSkills) Name() string { return "generate-skills" }

func (s *generateSkills) Run(ctx context.Context, state *State) error {
	prompt, err := prompts.Render("skills", map[string]string{
		"Job":    state.JobPosting,
		"Skills": s.catalog.SkillsJSON(),
	})
	if err != nil {
		return err
	}
	resp, err := s.llm.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return fmt.Errorf("generating skills: %w", err)
	}
	state.Skills = extract.Skills(resp)
	state.Metadata["skills_length"] = len(state.Skills)
	return nil
}

// selectProjects asks the model which catalog projects best match the
// posting. Titles are validated later, when summaries are generated.
type selectProjects struct{ *deps }

func (s *selectProjects) Name() string { return "select-projects" }

func (s *selectProjects) Run(ctx context.Context, state *State) error {
	prompt, err := prompts.Render("project_selection", map[string]string{
		"Job":      state.JobPosting,
		"Projects": s.catalog.ProjectsJSON(),
	})
	if err != nil {
		return err
	}
	resp, err := s.llm.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return fmt.Errorf("selecting projects: %w", err)
	}
	state.ProjectNames = extract.ProjectList(resp)
	state.Metadata["projects_selected"] = len(state.ProjectNames)
	return nil
}

// summarizeProjects writes one résumé entry per selected project. Titles
// that do not resolve in the catalog are skipped and recorded as issues
// rather than failing the run.
type summarizeProjects struct{ *deps }

func (s *summarizeProjects) Name() string { return "summarize-projects" }

func (s *summarizeProjects) Run(ctx context.Context, state *State) error {
	var blocks []string
	for _, name := range state.ProjectNames {
		project, ok := s.catalog.LookupProject(name)
		if !ok {
			state.AddIssue(s.Name(), "project %q not found in catalog, skipped", name)
			continue
		}
		prompt, err := prompts.Render("project_summary", map[string]string{
			"Job":         state.JobPosting,
			"Title":       project.Title,
			"Description": project.Description,
			"Stack":       strings.Join(project.Stack, ", "),
			"Docs":        s.catalog.ProjectReadme(project),
			"GitHub":      project.GitHub,
		})
		if err != nil {
			return err
		}
		resp, err := s.llm.GenerateContent(ctx, prompt, llm.TierStandard)
		if err != nil {
			return fmt.Errorf("summarizing project %q: %w", project.Title, err)
		}
		if block := extract.Projects(resp); block != "" {
			blocks = append(blocks, block)
		}
	}
	state.ProjectSummaries = strings.Join(blocks, "\n\n")
	state.Metadata["projects_summarized"] = len(blocks)
	return nil
}

// generateHighlights writes the headline bullet list from everything
// generated so far.
type generateHighlights struct{ *deps }

func (s *generateHighlights) Name() string { return "generate-highlights" }

func (s *generateHighlights) Run(ctx context.Context, state *State) error {
	prompt, err := prompts.Render("highlights", map[string]string{
		"Job":         state.JobPosting,
		"Experiences": state.Experiences,
		"Skills":      state.Skills,
		"Projects":    state.ProjectSummaries,
	})
	if err != nil {
		return err
	}
	resp, err := s.llm.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return fmt.Errorf("generating highlights: %w", err)
	}
	state.Highlights = extract.Highlights(resp)
	return nil
}

// compileResume assembles the résumé LaTeX document and typesets it.
// A missing PDF is degraded output, not a failure.
type compileResume struct{ *deps }

func (s *compileResume) Name() string { return "compile-resume" }

func (s *compileResume) Run(ctx context.Context, state *State) error {
	source, err := latex.FormatResume(s.candidate, latex.ResumeSections{
		Highlights:  state.Highlights,
		Experiences: state.Experiences,
		Skills:      state.Skills,
		Projects:    state.ProjectSummaries,
	})
	if err != nil {
		return err
	}
	state.ResumeLaTeX = source

	dir := filepath.Join(s.outputDir, "resumes", pathSegment(state.Company))
	result, err := s.compiler.Compile(ctx, source, dir, pathSegment(state.Position)+".tex")
	if err != nil {
		return err
	}
	state.ResumeTexFile = result.TexPath
	state.ResumePDFFile = result.PDFPath
	if result.PDFPath == "" {
		state.AddIssue(s.Name(), "pdflatex produced no PDF, LaTeX source written to %s", result.TexPath)
	}
	return nil
}

// retrieveContext queries the context store for documents relevant to this
// application, such as previously written cover letters.
type retrieveContext struct{ *deps }

func (s *retrieveContext) Name() string { return "retrieve-context" }

func (s *retrieveContext) Run(ctx context.Context, state *State) error {
	docs, err := s.store.Search(ctx, contextQuery(state), retrieval.DefaultTopK)
	if err != nil {
		return fmt.Errorf("searching context store: %w", err)
	}
	state.Context = docs
	state.Metadata["context_documents"] = len(docs)
	return nil
}

// contextQuery composes the retrieval query from the posting, the target
// role, and whichever tailored material this run has produced.
func contextQuery(state *State) string {
	parts := []string{
		truncate(state.JobPosting, 500),
		"company: " + state.Company,
		"position: " + state.Position,
	}
	if state.Skills != "" || state.Experiences != "" {
		parts = append(parts, state.Skills, truncate(state.Experiences, 300))
	} else if state.ResumeText != "" {
		parts = append(parts, truncate(state.ResumeText, 500))
	}
	return strings.Join(parts, "\n")
}

// generateCoverLetter writes the cover letter body from the tailored résumé
// sections and the retrieved context.
type generateCoverLetter struct{ *deps }

func (s *generateCoverLetter) Name() string { return "generate-cover-letter" }

func (s *generateCoverLetter) Run(ctx context.Context, state *State) error {
	prompt, err := prompts.Render("cover_letter", map[string]string{
		"Position":    state.Position,
		"Company":     state.Company,
		"Job":         state.JobPosting,
		"Highlights":  state.Highlights,
		"Experiences": state.Experiences,
		"Skills":      state.Skills,
		"Projects":    state.ProjectSummaries,
		"Context":     renderContext(state.Context),
	})
	if err != nil {
		return err
	}
	resp, err := s.llm.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return fmt.Errorf("generating cover letter: %w", err)
	}
	state.CoverLetter = extract.CoverLetter(resp)
	state.Metadata["cover_letter_length"] = len(state.CoverLetter)
	return nil
}

// generateCoverLetterOnly writes a cover letter directly from an existing
// résumé without regenerating any résumé sections.
type generateCoverLetterOnly struct{ *deps }

func (s *generateCoverLetterOnly) Name() string { return "generate-cover-letter" }

func (s *generateCoverLetterOnly) Run(ctx context.Context, state *State) error {
	prompt, err := prompts.Render("cover_letter_only", map[string]string{
		"Position": state.Position,
		"Company":  state.Company,
		"Job":      state.JobPosting,
		"Resume":   state.ResumeText,
		"Context":  renderContext(state.Context),
	})
	if err != nil {
		return err
	}
	resp, err := s.llm.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return fmt.Errorf("generating cover letter: %w", err)
	}
	state.CoverLetter = extract.CoverLetter(resp)
	state.Metadata["cover_letter_length"] = len(state.CoverLetter)
	return nil
}

func renderContext(docs []types.Document) string {
	if len(docs) == 0 {
		return "No prior context available."
	}
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = doc.Content
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// compileCoverLetter assembles the cover letter document and typesets it.
type compileCoverLetter struct{ *deps }

func (s *compileCoverLetter) Name() string { return "compile-cover-letter" }

func (s *compileCoverLetter) Run(ctx context.Context, state *State) error {
	source, err := latex.FormatCoverLetter(s.candidate, state.Company, state.Position, state.CoverLetter)
	if err != nil {
		return err
	}
	state.CoverLetterLaTeX = source

	dir := filepath.Join(s.outputDir, "cover_letters", pathSegment(state.Company))
	result, err := s.compiler.Compile(ctx, source, dir, pathSegment(state.Position)+".tex")
	if err != nil {
		return err
	}
	state.CoverLetterTexFile = result.TexPath
	state.CoverLetterPDFFile = result.PDFPath
	if result.PDFPath == "" {
		state.AddIssue(s.Name(), "pdflatex produced no PDF, LaTeX source written to %s", result.TexPath)
	}
	return nil
}

// indexCoverLetter stores the finished cover letter back into the context
// store so later applications can draw on it.
type indexCoverLetter struct{ *deps }

func (s *indexCoverLetter) Name() string { return "index-cover-letter" }

func (s *indexCoverLetter) Run(ctx context.Context, state *State) error {
	if state.CoverLetter == "" {
		return nil
	}
	doc := types.Document{
		Content: state.CoverLetter,
		Metadata: map[string]string{
			"source":   "cover_letter",
			"company":  state.Company,
			"position": state.Position,
		},
	}
	if err := s.store.Add(ctx, []types.Document{doc}); err != nil {
		return fmt.Errorf("indexing cover letter: %w", err)
	}
	return nil
}

// loadResume reads the text of an existing résumé for a cover-letter-only
// run. PDF artifacts are read through their sibling .tex source, which the
// generator always writes alongside the PDF.
type loadResume struct{ *deps }

func (s *loadResume) Name() string { return "load-resume" }

func (s *loadResume) Run(ctx context.Context, state *State) error {
	path := state.ResumePath
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".tex"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading resume %s: %w", path, err)
	}
	state.ResumeText = string(data)
	state.Metadata["resume_length"] = len(state.ResumeText)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// pathSegment makes a company or position name safe to use as one path
// element of the output tree.
func pathSegment(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer("/", "-", "\\", "-", "..", "-")
	s = replacer.Replace(s)
	if s == "" {
		return "unnamed"
	}
	return s
}
