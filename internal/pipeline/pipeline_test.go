package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirrezaskh/aria/internal/catalog"
	"github.com/amirrezaskh/aria/internal/latex"
	"github.com/amirrezaskh/aria/internal/llm"
	"github.com/amirrezaskh/aria/internal/retrieval"
	"github.com/amirrezaskh/aria/internal/types"
)

const (
	experiencesBlock = "\\resumeSubheading{Acme Corp}{01/2022 -- Present}\n{Software Engineer}{Winnipeg, MB}\n\\resumeItemListStart\n\\resumeItem{Shipped a Go service handling 10k rps}\n\\resumeItemListEnd"

	skillsBlock = "\\begin{itemize}[leftmargin=0.15in, label={}]\n\\small{\\item{\\textbf{Languages}: Go, Python}}\n\\end{itemize}"

	projectBlock = "\\resumeProjectHeading{\\textbf{Aria}}{Go, PostgreSQL}\n\\resumeItemListStart\n\\resumeItem{Automated document generation end to end}\n\\resumeItemListEnd"

	highlightsBlock = "\\resumeItem{Four years building backend services in Go}\n\\resumeItem{Deep experience with PostgreSQL and LLM pipelines}"

	coverLetterBody = "I am writing to express my strong interest in this position. Over the past four years I have designed and operated backend services in Go, built retrieval pipelines over PostgreSQL, and shipped document automation used daily by my team. I would welcome the chance to bring that experience to your team."
)

// scriptedLLM routes prompts to canned responses by the instruction text
// each prompt opens with, and records every prompt it sees.
type scriptedLLM struct {
	mu      sync.Mutex
	prompts []string
	// failOn, when non-empty, fails any prompt containing it.
	failOn string
}

func (s *scriptedLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.failOn != "" && strings.Contains(prompt, s.failOn) {
		return "", errors.New("model unavailable")
	}
	switch {
	case strings.Contains(prompt, "tailoring professional experiences"):
		return "```latex\n" + experiencesBlock + "\n```", nil
	case strings.Contains(prompt, "tailoring technical skills"):
		return skillsBlock, nil
	case strings.Contains(prompt, "project selection"):
		return `["Aria", "Phantom Project"]`, nil
	case strings.Contains(prompt, "compelling project descriptions"):
		return projectBlock, nil
	case strings.Contains(prompt, "Highlight of Qualifications"):
		return highlightsBlock, nil
	case strings.Contains(prompt, "cover letter writer"):
		return coverLetterBody, nil
	}
	return "", fmt.Errorf("unexpected prompt: %.60s", prompt)
}

func (s *scriptedLLM) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 4)
	for i, word := range []string{"go", "resume", "cover", "engineer"} {
		if strings.Contains(strings.ToLower(text), word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (s *scriptedLLM) Close() error { return nil }

// stubCompiler records compile calls and writes the .tex source without
// invoking pdflatex. producePDF controls whether a PDF path is reported.
type stubCompiler struct {
	mu         sync.Mutex
	calls      []string
	producePDF bool
}

func (c *stubCompiler) Compile(_ context.Context, source, outputDir, filename string) (*latex.Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	texPath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(texPath, []byte(source), 0644); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.calls = append(c.calls, texPath)
	c.mu.Unlock()

	result := &latex.Result{TexPath: texPath}
	if c.producePDF {
		result.PDFPath = strings.TrimSuffix(texPath, ".tex") + ".pdf"
	}
	return result, nil
}

func newTestGenerator(t *testing.T, model *scriptedLLM, compiler *stubCompiler) (*Generator, *retrieval.MemoryStore, string) {
	t.Helper()
	cat, err := catalog.Load(writeCatalogDir(t))
	require.NoError(t, err)

	store := retrieval.NewMemoryStore(model)
	outDir := t.TempDir()

	gen, err := NewGenerator(Options{
		LLM:       model,
		Catalog:   cat,
		Store:     store,
		Compiler:  compiler,
		Candidate: latex.Candidate{Name: "Amirreza Sokhankhosh", Email: "a@example.com"},
		OutputDir: outDir,
	})
	require.NoError(t, err)
	return gen, store, outDir
}

func writeCatalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		catalog.ExperiencesFile: `[
			{"organization": "Acme Corp", "title": "Software Engineer", "location": "Winnipeg, MB",
			 "start_date": "01/2022", "end_date": "Present",
			 "achievements": ["Built a Go service handling 10k rps"]}
		]`,
		catalog.SkillsFile: `[
			{"category": "Languages", "skills": [{"name": "Go", "score": 8}]}
		]`,
		catalog.ProjectsFile: `[
			{"title": "Aria", "description": "Resume generation agent", "stack": ["Go", "PostgreSQL"],
			 "github": "https://github.com/x/aria"}
		]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestNewGenerator_RequiredOptions(t *testing.T) {
	_, err := NewGenerator(Options{})
	assert.ErrorContains(t, err, "llm client")
}

func TestResumeGraph_StageOrder(t *testing.T) {
	gen, _, _ := newTestGenerator(t, &scriptedLLM{}, &stubCompiler{})

	assert.Equal(t, []string{
		"generate-experiences",
		"generate-skills",
		"select-projects",
		"summarize-projects",
		"generate-highlights",
		"compile-resume",
		"retrieve-context",
		"generate-cover-letter",
		"compile-cover-letter",
		"index-cover-letter",
	}, gen.resumeGraph().Stages())

	assert.Equal(t, []string{
		"load-resume",
		"retrieve-context",
		"generate-cover-letter",
		"compile-cover-letter",
		"index-cover-letter",
	}, gen.coverLetterGraph().Stages())
}

func TestGenerateDocuments_FullRun(t *testing.T) {
	model := &scriptedLLM{}
	compiler := &stubCompiler{producePDF: true}
	gen, store, outDir := newTestGenerator(t, model, compiler)

	state, err := gen.GenerateDocuments(context.Background(), "Backend engineer role building Go services.", "Initech", "Backend Engineer")
	require.NoError(t, err)

	assert.Equal(t, experiencesBlock, state.Experiences)
	assert.Equal(t, skillsBlock, state.Skills)
	assert.Equal(t, []string{"Aria", "Phantom Project"}, state.ProjectNames)
	assert.Equal(t, projectBlock, state.ProjectSummaries)
	assert.Equal(t, highlightsBlock, state.Highlights)
	assert.Equal(t, coverLetterBody, state.CoverLetter)

	// Unknown project title is skipped and surfaced, never fatal.
	require.Len(t, state.Issues, 1)
	assert.Equal(t, "summarize-projects", state.Issues[0].Stage)
	assert.Contains(t, state.Issues[0].Message, "Phantom Project")

	// Artifacts land under company/position scoped paths.
	assert.Equal(t, filepath.Join(outDir, "resumes", "Initech", "Backend Engineer.tex"), state.ResumeTexFile)
	assert.Equal(t, filepath.Join(outDir, "cover_letters", "Initech", "Backend Engineer.tex"), state.CoverLetterTexFile)
	assert.NotEmpty(t, state.ResumePDFFile)
	assert.NotEmpty(t, state.CoverLetterPDFFile)

	// The finished cover letter is indexed for future retrieval.
	assert.Equal(t, 1, store.Len())
}

func TestGenerateDocuments_NoPDFIsDegradedNotFatal(t *testing.T) {
	gen, _, _ := newTestGenerator(t, &scriptedLLM{}, &stubCompiler{producePDF: false})

	state, err := gen.GenerateDocuments(context.Background(), "Go role.", "Initech", "Engineer")
	require.NoError(t, err)

	assert.Empty(t, state.ResumePDFFile)
	assert.Empty(t, state.CoverLetterPDFFile)
	assert.NotEmpty(t, state.ResumeTexFile)

	var stages []string
	for _, issue := range state.Issues {
		stages = append(stages, issue.Stage)
	}
	assert.Contains(t, stages, "compile-resume")
	assert.Contains(t, stages, "compile-cover-letter")
}

func TestGenerateDocuments_StageFailureHaltsRun(t *testing.T) {
	model := &scriptedLLM{failOn: "Highlight of Qualifications"}
	gen, _, _ := newTestGenerator(t, model, &stubCompiler{})

	state, err := gen.GenerateDocuments(context.Background(), "Go role.", "Initech", "Engineer")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "generate-highlights", stageErr.Stage)

	// Everything produced before the failure survives on the state.
	assert.Equal(t, experiencesBlock, state.Experiences)
	assert.Equal(t, skillsBlock, state.Skills)
	assert.Empty(t, state.Highlights)
	assert.Empty(t, state.ResumeTexFile)
}

func TestGenerateDocuments_InputValidation(t *testing.T) {
	gen, _, _ := newTestGenerator(t, &scriptedLLM{}, &stubCompiler{})

	_, err := gen.GenerateDocuments(context.Background(), "", "Initech", "Engineer")
	assert.ErrorContains(t, err, "job posting")

	_, err = gen.GenerateDocuments(context.Background(), "Go role.", "", "Engineer")
	assert.ErrorContains(t, err, "company")
}

func TestGenerateCoverLetter_UsesExistingResume(t *testing.T) {
	model := &scriptedLLM{}
	gen, store, _ := newTestGenerator(t, model, &stubCompiler{producePDF: true})

	resumePath := filepath.Join(t.TempDir(), "resume.tex")
	require.NoError(t, os.WriteFile(resumePath, []byte("\\resumeItem{Built Go services}"), 0644))

	state, err := gen.GenerateCoverLetter(context.Background(), "Go role.", "Initech", "Engineer", resumePath)
	require.NoError(t, err)

	assert.Equal(t, "\\resumeItem{Built Go services}", state.ResumeText)
	assert.Equal(t, coverLetterBody, state.CoverLetter)
	assert.Empty(t, state.Experiences)
	assert.Equal(t, 1, store.Len())

	// The résumé text reaches the prompt.
	var found bool
	for _, p := range model.prompts {
		if strings.Contains(p, "Built Go services") && strings.Contains(p, "cover letter") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateCoverLetter_PDFPathResolvesToTexSibling(t *testing.T) {
	gen, _, _ := newTestGenerator(t, &scriptedLLM{}, &stubCompiler{})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resume.tex"), []byte("resume body"), 0644))

	state, err := gen.GenerateCoverLetter(context.Background(), "Go role.", "Initech", "Engineer", filepath.Join(dir, "resume.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "resume body", state.ResumeText)
}

func TestGenerateCoverLetter_MissingResumeFails(t *testing.T) {
	gen, _, _ := newTestGenerator(t, &scriptedLLM{}, &stubCompiler{})

	_, err := gen.GenerateCoverLetter(context.Background(), "Go role.", "Initech", "Engineer", filepath.Join(t.TempDir(), "absent.tex"))
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "load-resume", stageErr.Stage)
}

func TestGenerateDocuments_ConcurrentRunsDoNotCollide(t *testing.T) {
	gen, _, outDir := newTestGenerator(t, &scriptedLLM{}, &stubCompiler{producePDF: true})

	companies := []string{"Initech", "Hooli", "Globex"}
	states := make([]*State, len(companies))
	var wg sync.WaitGroup
	for i, company := range companies {
		wg.Add(1)
		go func(i int, company string) {
			defer wg.Done()
			state, err := gen.GenerateDocuments(context.Background(), "Go role.", company, "Engineer")
			assert.NoError(t, err)
			states[i] = state
		}(i, company)
	}
	wg.Wait()

	for i, company := range companies {
		require.NotNil(t, states[i])
		assert.Equal(t, filepath.Join(outDir, "resumes", company, "Engineer.tex"), states[i].ResumeTexFile)
	}
}

func TestGenerateDocuments_CancelledContext(t *testing.T) {
	gen, _, _ := newTestGenerator(t, &scriptedLLM{}, &stubCompiler{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.GenerateDocuments(ctx, "Go role.", "Initech", "Engineer")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPathSegment(t *testing.T) {
	assert.Equal(t, "Initech", pathSegment("Initech"))
	assert.Equal(t, "a-b", pathSegment("a/b"))
	assert.Equal(t, "unnamed", pathSegment("  "))
}

func TestContextQuery_PrefersTailoredSections(t *testing.T) {
	state := &State{JobPosting: "posting", Company: "Initech", Position: "Engineer", Skills: "go skills"}
	q := contextQuery(state)
	assert.Contains(t, q, "company: Initech")
	assert.Contains(t, q, "go skills")

	state = &State{JobPosting: "posting", Company: "Initech", Position: "Engineer", ResumeText: "resume text"}
	assert.Contains(t, contextQuery(state), "resume text")
}

func TestTruncate_CutsOnRuneBoundary(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	// "é" is two bytes; a cut inside it must back up to the rune start.
	got := truncate("café au lait", 4)
	assert.Equal(t, "caf", got)
	assert.True(t, utf8.ValidString(got))

	got = truncate("café au lait", 5)
	assert.Equal(t, "café", got)
}

// failingStore simulates a retrieval backend that is down.
type failingStore struct {
	searchErr error
	addErr    error
}

func (s *failingStore) Add(_ context.Context, _ []types.Document) error { return s.addErr }

func (s *failingStore) Search(_ context.Context, _ string, _ int) ([]types.Document, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return nil, nil
}

func newGeneratorWithStore(t *testing.T, store retrieval.Store) *Generator {
	t.Helper()
	cat, err := catalog.Load(writeCatalogDir(t))
	require.NoError(t, err)

	gen, err := NewGenerator(Options{
		LLM:       &scriptedLLM{},
		Catalog:   cat,
		Store:     store,
		Compiler:  &stubCompiler{producePDF: true},
		Candidate: latex.Candidate{Name: "Amirreza Sokhankhosh", Email: "a@example.com"},
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)
	return gen
}

func TestGenerateDocuments_StoreSearchFailureIsFatal(t *testing.T) {
	gen := newGeneratorWithStore(t, &failingStore{searchErr: errors.New("store down")})

	state, err := gen.GenerateDocuments(context.Background(), "Go role.", "Initech", "Engineer")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "retrieve-context", stageErr.Stage)
	assert.ErrorContains(t, err, "store down")

	// The run halts before the cover letter is written.
	assert.Empty(t, state.CoverLetter)
	for _, issue := range state.Issues {
		assert.NotEqual(t, "retrieve-context", issue.Stage)
	}
}

func TestGenerateDocuments_StoreIndexFailureIsFatal(t *testing.T) {
	gen := newGeneratorWithStore(t, &failingStore{addErr: errors.New("store down")})

	state, err := gen.GenerateDocuments(context.Background(), "Go role.", "Initech", "Engineer")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "index-cover-letter", stageErr.Stage)

	// Everything produced before the indexing attempt survives on the state.
	assert.Equal(t, coverLetterBody, state.CoverLetter)
	assert.NotEmpty(t, state.CoverLetterPDFFile)
}
