package retrieval

import "strings"

// Chunking defaults, tuned for prose documents fed to the embedder.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// SplitText splits text into chunks of at most size bytes with the given
// overlap between consecutive chunks. Splits prefer paragraph breaks, then
// line breaks, then spaces, falling back to a hard cut for unbroken runs.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findBreak(text[start:end])
		if cut <= 0 {
			cut = size
		}

		chunk := strings.TrimSpace(text[start : start+cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}
	return chunks
}

// findBreak returns the index just past the best split point in window,
// preferring paragraph breaks over line breaks over word breaks.
func findBreak(window string) int {
	for _, sep := range []string{"\n\n", "\n", " "} {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return idx + len(sep)
		}
	}
	return -1
}
