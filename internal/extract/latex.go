// Package extract recovers structured LaTeX fragments from free-form LLM
// responses. Every extractor is a cascade of strategies with a terminal
// fallback; extraction never fails, it degrades.
package extract

import (
	"regexp"
	"strings"
)

var (
	fenceLatexRe = regexp.MustCompile("```latex\n?")
	fenceRe      = regexp.MustCompile("```\n?")

	// Full \resumeSubheading block: four brace groups followed by an item list.
	experienceRe = regexp.MustCompile(`(?s)(\\resumeSubheading\s*\{[^}]*\}\{[^}]*\}\s*\{[^}]*\}\{[^}]*\}\s*\\resumeItemListStart.*?\\resumeItemListEnd)`)

	// Full \resumeProjectHeading block: two brace groups followed by an item list.
	projectRe = regexp.MustCompile(`(?s)(\\resumeProjectHeading\s*\{[^}]*\}\s*\{[^}]*\}\s*\\resumeItemListStart.*?\\resumeItemListEnd)`)

	skillsItemizeRe = regexp.MustCompile(`(?s)(\\begin\{itemize\}\[leftmargin=[^\]]*\].*?\\end\{itemize\})`)
	skillsItemRe    = regexp.MustCompile(`(?s)(\\small\{\\item\{.*?\}\})`)
)

// StripMarkdownFences removes markdown code fence markers. Stripping is
// idempotent and preserves the fenced payload byte-for-byte.
func StripMarkdownFences(text string) string {
	text = fenceLatexRe.ReplaceAllString(text, "")
	return fenceRe.ReplaceAllString(text, "")
}

// Experiences pulls \resumeSubheading blocks out of an LLM response.
// Falls back to splitting on the opening marker when the strict pattern
// misses, and to the cleaned input when no marker is present at all.
func Experiences(text string) string {
	text = StripMarkdownFences(text)

	if matches := experienceRe.FindAllString(text, -1); len(matches) > 0 {
		return strings.Join(matches, "\n\n")
	}

	if blocks := splitOnMarker(text, `\resumeSubheading`); len(blocks) > 0 {
		return strings.Join(blocks, "\n\n")
	}

	return strings.TrimSpace(text)
}

// Projects pulls \resumeProjectHeading blocks out of an LLM response with
// the same fallback cascade as Experiences.
func Projects(text string) string {
	text = StripMarkdownFences(text)

	if matches := projectRe.FindAllString(text, -1); len(matches) > 0 {
		return strings.Join(matches, "\n\n")
	}

	if blocks := splitOnMarker(text, `\resumeProjectHeading`); len(blocks) > 0 {
		return strings.Join(blocks, "\n\n")
	}

	return strings.TrimSpace(text)
}

// Skills pulls the technical-skills itemize environment out of an LLM
// response. When only the inner \small{\item{...}} body survives, it is
// rewrapped in the expected itemize shell.
func Skills(text string) string {
	text = StripMarkdownFences(text)

	if m := skillsItemizeRe.FindString(text); m != "" {
		return m
	}

	if m := skillsItemRe.FindString(text); m != "" {
		return "\\begin{itemize}[leftmargin=0.15in, label={}]\n" + m + "\n\\end{itemize}"
	}

	return strings.TrimSpace(text)
}

// splitOnMarker returns the substrings that start at each occurrence of
// marker and run up to the next occurrence or end of text.
func splitOnMarker(text, marker string) []string {
	var blocks []string
	idx := strings.Index(text, marker)
	for idx >= 0 {
		rest := text[idx:]
		next := strings.Index(rest[len(marker):], marker)
		if next >= 0 {
			blocks = append(blocks, strings.TrimSpace(rest[:len(marker)+next]))
			text = rest[len(marker)+next:]
			idx = 0
		} else {
			blocks = append(blocks, strings.TrimSpace(rest))
			break
		}
	}
	return blocks
}
