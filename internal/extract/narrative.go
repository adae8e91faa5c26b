package extract

import (
	"regexp"
	"strings"
)

// minCoverLetterLength guards against over-aggressive cleanup. When the
// cleaned body falls below this floor the raw response is returned instead,
// on the theory that the denylist ate legitimate content.
const minCoverLetterLength = 200

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)

	// Conversational preamble and postamble phrases LLMs wrap around the
	// letter body despite instructions not to.
	preamblePrefixes = []string{
		"here is",
		"here's",
		"here are",
		"based on",
		"below is",
		"certainly",
		"sure,",
		"sure!",
		"of course",
		"i hope this",
		"let me know",
		"feel free to",
		"this cover letter",
		"note:",
		"i have tailored",
	}
)

// CoverLetter cleans the narrative body of a cover letter out of an LLM
// response: markdown fences and emphasis are converted to LaTeX, known
// conversational filler lines are dropped, and blank-line runs collapse to
// a single paragraph break. Cleanup is idempotent except where the length
// floor triggers, in which case every run returns the same raw fallback.
func CoverLetter(text string) string {
	cleaned := StripMarkdownFences(text)
	cleaned = boldRe.ReplaceAllString(cleaned, `\textbf{$1}`)
	cleaned = italicRe.ReplaceAllString(cleaned, `\textit{$1}`)

	var kept []string
	blank := false
	for _, line := range strings.Split(cleaned, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			// Collapse runs of blank lines to one.
			if !blank && len(kept) > 0 {
				kept = append(kept, "")
			}
			blank = true
			continue
		}
		blank = false

		if isPreamble(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}

	// Drop a trailing paragraph break.
	for len(kept) > 0 && kept[len(kept)-1] == "" {
		kept = kept[:len(kept)-1]
	}

	result := strings.Join(kept, "\n")
	if len(result) < minCoverLetterLength {
		return strings.TrimSpace(text)
	}
	return result
}

func isPreamble(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range preamblePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
