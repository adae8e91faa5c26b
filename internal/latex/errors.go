package latex

import "fmt"

// TemplateError represents errors rendering a document template.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// WriteError represents a failure to persist the document source file.
// Unlike a pdflatex failure, this aborts the pipeline.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write LaTeX source %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
