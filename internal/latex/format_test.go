package latex

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCandidate = Candidate{
	Name:     "Amirreza Sokhankhosh",
	Email:    "amirreza@example.com",
	Phone:    "431-555-0100",
	LinkedIn: "https://www.linkedin.com/in/example/",
	GitHub:   "https://github.com/example",
}

func TestFormatResume(t *testing.T) {
	sections := ResumeSections{
		Highlights:  `\resumeItem{\textbf{Backend:} Go services at scale.}`,
		Experiences: `\resumeSubheading{Acme}{2022}{Engineer}{Remote}`,
		Skills:      `\begin{itemize}[leftmargin=0.15in, label={}]\small{\item{\textbf{Languages}{: Go}}}\end{itemize}`,
		Projects:    `\resumeProjectHeading{\textbf{Aria}}{}`,
	}

	source, err := FormatResume(testCandidate, sections)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(source), `\documentclass`))
	assert.Contains(t, source, `\begin{document}`)
	assert.Contains(t, source, `\end{document}`)
	assert.Contains(t, source, "Amirreza Sokhankhosh")
	assert.Contains(t, source, sections.Highlights)
	assert.Contains(t, source, sections.Experiences)
	assert.Contains(t, source, sections.Skills)
	assert.Contains(t, source, sections.Projects)
	// Section ordering matches the document layout.
	assert.Less(t, strings.Index(source, sections.Highlights), strings.Index(source, sections.Experiences))
	assert.Less(t, strings.Index(source, sections.Experiences), strings.Index(source, sections.Projects))
	// No unexpanded placeholders survive rendering.
	assert.NotContains(t, source, "<<")
}

func TestFormatCoverLetter(t *testing.T) {
	body := "Dear Hiring Manager,\n\nI am excited to apply.\n\nSincerely,\nAmirreza"

	source, err := FormatCoverLetter(testCandidate, "Acme", "Engineer", body)
	require.NoError(t, err)

	assert.Contains(t, source, `Re: Engineer at Acme`)
	assert.Contains(t, source, body)
	assert.NotContains(t, source, "<<")
}

func TestCompile_WritesSourceWithoutPdflatex(t *testing.T) {
	// Regardless of whether pdflatex exists, the source file must land on
	// disk and Compile must not return an error for typesetting problems.
	dir := t.TempDir()
	compiler := NewPDFLaTeX()

	result, err := compiler.Compile(context.Background(), "not valid latex at all", dir, "broken.tex")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "broken.tex"), result.TexPath)
	content, err := os.ReadFile(result.TexPath)
	require.NoError(t, err)
	assert.Equal(t, "not valid latex at all", string(content))
}

func TestCompile_UnwritableOutputDir(t *testing.T) {
	compiler := NewPDFLaTeX()

	_, err := compiler.Compile(context.Background(), "x", "/proc/definitely/not/writable", "a.tex")
	require.Error(t, err)
	var werr *WriteError
	assert.ErrorAs(t, err, &werr)
}
