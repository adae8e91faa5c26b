// Package latex assembles complete LaTeX documents from generated sections
// and compiles them to PDF via the system pdflatex toolchain.
package latex

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed templates/*.tex
var templateFiles embed.FS

// Candidate holds the static header fields rendered into every document.
type Candidate struct {
	Name     string
	Email    string
	Phone    string
	LinkedIn string
	GitHub   string
}

// ResumeSections holds the generated section bodies for a résumé.
type ResumeSections struct {
	Highlights  string
	Experiences string
	Skills      string
	Projects    string
}

// LaTeX braces collide with the default template delimiters, so the
// embedded templates use << >> instead.
var (
	resumeTmpl      = template.Must(template.New("resume.tex").Delims("<<", ">>").ParseFS(templateFiles, "templates/resume.tex"))
	coverLetterTmpl = template.Must(template.New("cover_letter.tex").Delims("<<", ">>").ParseFS(templateFiles, "templates/cover_letter.tex"))
)

// FormatResume renders the full résumé source from the generated sections.
func FormatResume(candidate Candidate, sections ResumeSections) (string, error) {
	data := struct {
		Candidate
		ResumeSections
	}{candidate, sections}

	var sb strings.Builder
	if err := resumeTmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{Message: "failed to render resume template", Cause: err}
	}
	return sb.String(), nil
}

// FormatCoverLetter renders the full cover-letter source around the cleaned
// narrative body.
func FormatCoverLetter(candidate Candidate, company, position, body string) (string, error) {
	data := struct {
		Candidate
		Company  string
		Position string
		Body     string
	}{candidate, company, position, body}

	var sb strings.Builder
	if err := coverLetterTmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{Message: "failed to render cover letter template", Cause: err}
	}
	return sb.String(), nil
}
