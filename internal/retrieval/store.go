// Package retrieval provides the context document store consumed by the
// cover-letter stages: chunked text documents indexed by embedding vectors
// and searched by cosine similarity.
package retrieval

import (
	"context"

	"github.com/amirrezaskh/aria/internal/types"
)

// DefaultTopK is the number of documents returned by a context search.
const DefaultTopK = 8

// Embedder produces embedding vectors for text. Satisfied by llm.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store indexes context documents and retrieves the closest matches for a
// query. Implementations must return results in descending similarity order.
type Store interface {
	// Add chunks, embeds, and indexes the given documents.
	Add(ctx context.Context, docs []types.Document) error
	// Search returns the top-k documents most similar to the query.
	Search(ctx context.Context, query string, k int) ([]types.Document, error)
}
