// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/amirrezaskh/aria/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxPreviewLines caps how much of a generated section is shown
	maxPreviewLines = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Progress reports a stage about to run. It satisfies pipeline.ProgressFunc.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Progress(stage string, index, total int) {
	fmt.Fprintf(p.out, "[%d/%d] %s\n", index+1, total, stage)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs a human-readable summary of a finished run.
func (p *Printer) PrintRunSummary(state *pipeline.State) {
	if state == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:   %s\n", state.Company))
	sb.WriteString(fmt.Sprintf("Position:  %s\n", state.Position))
	sb.WriteString("\n")

	if state.ResumeTexFile != "" {
		sb.WriteString(fmt.Sprintf("Resume:        %s\n", artifactLine(state.ResumeTexFile, state.ResumePDFFile)))
	}
	if state.CoverLetterTexFile != "" {
		sb.WriteString(fmt.Sprintf("Cover letter:  %s\n", artifactLine(state.CoverLetterTexFile, state.CoverLetterPDFFile)))
	}
	if n, ok := state.Metadata["context_documents"].(int); ok {
		sb.WriteString(fmt.Sprintf("Context docs:  %d\n", n))
	}

	p.printBox("GENERATED DOCUMENTS", strings.TrimSuffix(sb.String(), "\n"))
	p.PrintIssues(state)
}

// PrintIssues lists non-fatal problems recorded during a run.
func (p *Printer) PrintIssues(state *pipeline.State) {
	if state == nil || len(state.Issues) == 0 {
		return
	}

	var sb strings.Builder
	for _, issue := range state.Issues {
		sb.WriteString(fmt.Sprintf("• %s\n", issue))
	}
	p.printBox("ISSUES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSectionPreview shows the first lines of a generated section.
func (p *Printer) PrintSectionPreview(title, content string) {
	if content == "" {
		return
	}

	lines := strings.Split(content, "\n")
	shown := min(len(lines), maxPreviewLines)

	var sb strings.Builder
	for i := 0; i < shown; i++ {
		sb.WriteString(lines[i])
		sb.WriteString("\n")
	}
	if len(lines) > maxPreviewLines {
		sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-maxPreviewLines))
	}
	p.printBox(strings.ToUpper(title), strings.TrimSuffix(sb.String(), "\n"))
}

func artifactLine(texPath, pdfPath string) string {
	if pdfPath != "" {
		return pdfPath
	}
	return texPath + " (no PDF)"
}
