package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirrezaskh/aria/internal/types"
)

// PostgresStore persists context documents and their embeddings in
// PostgreSQL. Similarity is computed client-side over the candidate rows,
// which keeps the schema free of extension requirements; the corpus here is
// a personal document set, small enough for that to be cheap.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// NewPostgresStore creates a store over an existing connection pool and
// ensures its table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, embedder Embedder) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool, embedder: embedder}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS context_documents (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB,
			embedding REAL[],
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create context_documents table: %w", err)
	}
	return nil
}

// Add chunks, embeds, and indexes the given documents.
func (s *PostgresStore) Add(ctx context.Context, docs []types.Document) error {
	for _, doc := range docs {
		for _, chunk := range SplitText(doc.Content, DefaultChunkSize, DefaultChunkOverlap) {
			embedding, err := s.embedder.Embed(ctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed document chunk: %w", err)
			}

			_, err = s.pool.Exec(ctx,
				`INSERT INTO context_documents (id, content, metadata, embedding)
				 VALUES ($1, $2, $3, $4)`,
				uuid.New(), chunk, doc.Metadata, embedding,
			)
			if err != nil {
				return fmt.Errorf("failed to insert context document: %w", err)
			}
		}
	}
	return nil
}

// Search returns the top-k documents most similar to the query.
func (s *PostgresStore) Search(ctx context.Context, query string, k int) ([]types.Document, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content, metadata, embedding FROM context_documents WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query context documents: %w", err)
	}
	defer rows.Close()

	type scored struct {
		doc   types.Document
		score float64
	}
	var results []scored

	for rows.Next() {
		var content string
		var metadata map[string]string
		var embedding []float32
		if err := rows.Scan(&content, &metadata, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan context document: %w", err)
		}
		results = append(results, scored{
			doc:   types.Document{Content: content, Metadata: metadata},
			score: cosineSimilarity(queryEmbedding, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read context documents: %w", err)
	}

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
