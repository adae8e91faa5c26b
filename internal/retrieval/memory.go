package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/amirrezaskh/aria/internal/types"
)

// MemoryStore is an in-process Store. It backs tests and single-run CLI
// invocations where no database is configured.
type MemoryStore struct {
	embedder Embedder

	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	doc       types.Document
	embedding []float32
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(embedder Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder}
}

// Add chunks, embeds, and indexes the given documents.
func (s *MemoryStore) Add(ctx context.Context, docs []types.Document) error {
	for _, doc := range docs {
		for _, chunk := range SplitText(doc.Content, DefaultChunkSize, DefaultChunkOverlap) {
			embedding, err := s.embedder.Embed(ctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed document chunk: %w", err)
			}
			s.mu.Lock()
			s.entries = append(s.entries, memoryEntry{
				doc:       types.Document{Content: chunk, Metadata: doc.Metadata},
				embedding: embedding,
			})
			s.mu.Unlock()
		}
	}
	return nil
}

// Search returns the top-k documents most similar to the query.
func (s *MemoryStore) Search(ctx context.Context, query string, k int) ([]types.Document, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	type scored struct {
		doc   types.Document
		score float64
	}
	results := make([]scored, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, scored{
			doc:   e.doc,
			score: cosineSimilarity(queryEmbedding, e.embedding),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if len(results) > k {
		results = results[:k]
	}
	docs := make([]types.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, r.doc)
	}
	return docs, nil
}

// Len reports the number of indexed chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
