package extract

import (
	"encoding/json"
	"regexp"
)

// MaxProjectNames caps the fallback extraction of project titles. Matches
// the selection prompt, which asks for at most four projects.
const MaxProjectNames = 4

var (
	bracketRe = regexp.MustCompile(`(?s)\[(.*?)\]`)
	quotedRe  = regexp.MustCompile(`"([^"]+)"`)
)

// ProjectList parses a ranked list of project titles out of an LLM response.
// The primary strategy decodes the first bracketed substring as a JSON array
// of strings. The fallback collects every double-quoted substring, capped at
// MaxProjectNames. An empty slice is a legitimate result, not an error:
// downstream stages must tolerate a run with no selected projects.
func ProjectList(text string) []string {
	if m := bracketRe.FindStringSubmatch(text); m != nil {
		var names []string
		if err := json.Unmarshal([]byte("["+m[1]+"]"), &names); err == nil {
			return names
		}
	}

	matches := quotedRe.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
		if len(names) == MaxProjectNames {
			break
		}
	}
	return names
}
