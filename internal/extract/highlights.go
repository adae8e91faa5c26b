package extract

import (
	"regexp"
	"strings"
)

// simpleItemRe matches single-line \resumeItem entries with at most one
// level of nesting. Used only as a fallback when the line scanner finds
// nothing.
var simpleItemRe = regexp.MustCompile(`\\resumeItem\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

// Highlights pulls \resumeItem{...} entries out of an LLM response.
// Items routinely contain nested braces (\textbf{...} inside the item), so
// a naive regex would truncate at the first inner closing brace. The primary
// strategy scans line by line tracking brace depth: an item is complete
// exactly when the depth returns to zero after going positive.
func Highlights(text string) string {
	text = StripMarkdownFences(text)

	if items := scanResumeItems(text); len(items) > 0 {
		return strings.Join(items, "\n")
	}

	if matches := simpleItemRe.FindAllString(text, -1); len(matches) > 0 {
		return strings.Join(matches, "\n")
	}

	return strings.TrimSpace(text)
}

// scanResumeItems collects complete \resumeItem blocks in source order.
func scanResumeItems(text string) []string {
	var items []string
	var current string
	braceCount := 0
	inItem := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, `\resumeItem{`) {
			if current != "" && inItem {
				items = append(items, strings.TrimSpace(current))
			}
			current = line
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")
			inItem = true
		} else if inItem {
			current += " " + line
			braceCount += strings.Count(line, "{") - strings.Count(line, "}")
		}

		if inItem && braceCount <= 0 {
			items = append(items, strings.TrimSpace(current))
			current = ""
			inItem = false
			braceCount = 0
		}
	}

	// Unterminated trailing item: keep it rather than drop content.
	if current != "" && inItem {
		items = append(items, strings.TrimSpace(current))
	}

	return items
}
