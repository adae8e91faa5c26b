package latex

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CompilationTimeout is the maximum time to wait for a pdflatex run.
const CompilationTimeout = 30 * time.Second

// Result reports where a document's artifacts landed. PDFPath is empty when
// pdflatex failed or is not installed; that is a degraded outcome, not an
// error, and the source file is always written.
type Result struct {
	TexPath string
	PDFPath string
}

// Compiler turns LaTeX source into a PDF on disk.
type Compiler interface {
	Compile(ctx context.Context, source, outputDir, filename string) (*Result, error)
}

// PDFLaTeX is a Compiler backed by the system pdflatex binary.
type PDFLaTeX struct{}

// NewPDFLaTeX returns a Compiler that shells out to pdflatex.
func NewPDFLaTeX() *PDFLaTeX {
	return &PDFLaTeX{}
}

// Compile writes source to outputDir/filename and runs pdflatex over it.
// The returned error covers only source persistence; compilation failure is
// reported through an empty PDFPath so callers can finish the run and let
// the user retry typesetting by hand.
func (p *PDFLaTeX) Compile(ctx context.Context, source, outputDir, filename string) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &WriteError{Path: outputDir, Cause: err}
	}

	texPath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(texPath, []byte(source), 0644); err != nil {
		return nil, &WriteError{Path: texPath, Cause: err}
	}

	result := &Result{TexPath: texPath}

	if _, err := exec.LookPath("pdflatex"); err != nil {
		return result, nil
	}

	compileCtx, cancel := context.WithTimeout(ctx, CompilationTimeout)
	defer cancel()

	// Run pdflatex twice so cross-references settle.
	for i := 0; i < 2; i++ {
		cmd := exec.CommandContext(compileCtx, "pdflatex",
			"-interaction=nonstopmode", "-output-directory", outputDir, texPath)
		if err := cmd.Run(); err != nil {
			return result, nil
		}
	}

	base := strings.TrimSuffix(filename, ".tex")
	cleanAuxFiles(outputDir, base)

	pdfPath := filepath.Join(outputDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err == nil {
		result.PDFPath = pdfPath
	}
	return result, nil
}

// cleanAuxFiles removes pdflatex byproducts next to the compiled document.
func cleanAuxFiles(dir, base string) {
	for _, ext := range []string{".aux", ".log", ".out", ".fdb_latexmk", ".fls"} {
		_ = os.Remove(filepath.Join(dir, base+ext))
	}
}
