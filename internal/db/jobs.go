package db

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a stored
// job to count as similar to a query job.
const DefaultSimilarityThreshold = 0.75

// maxEmbeddingChars bounds the job description excerpt used for embedding.
const maxEmbeddingChars = 2000

// JobApplication is a persisted record of one generation request.
type JobApplication struct {
	ID              uuid.UUID `json:"id"`
	CompanyName     string    `json:"company_name"`
	PositionTitle   string    `json:"position_title"`
	JobDescription  string    `json:"job_description"`
	ResumeGenerated bool      `json:"resume_generated"`
	CreatedAt       time.Time `json:"created_at"`
}

// SimilarJob pairs a stored application with its similarity to the query.
type SimilarJob struct {
	JobApplication
	SimilarityScore float64 `json:"similarity_score"`
}

// Embedder produces embedding vectors for text. Satisfied by llm.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BuildEmbeddingText composes the text embedded for a job application.
// Company and position are included so that near-identical postings at
// different companies still separate.
func BuildEmbeddingText(company, position, description string) string {
	if len(description) > maxEmbeddingChars {
		description = description[:maxEmbeddingChars]
	}
	return fmt.Sprintf("Company: %s\nPosition: %s\nDescription: %s", company, position, description)
}

// SaveJobApplication inserts a job application record. The embedding is
// computed from the embedder when available; embedding failure degrades the
// row (it will only be found via the text fallback), it does not fail the
// save.
func (db *DB) SaveJobApplication(ctx context.Context, embedder Embedder, company, position, description string, resumeGenerated bool) (uuid.UUID, error) {
	id := uuid.New()

	var embedding []float32
	if embedder != nil {
		if vec, err := embedder.Embed(ctx, BuildEmbeddingText(company, position, description)); err == nil {
			embedding = vec
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_applications (id, company_name, position_title, job_description, embedding, resume_generated)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, company, position, description, embedding, resumeGenerated,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job application: %w", err)
	}
	return id, nil
}

// FindSimilar returns stored applications whose embeddings score at or above
// threshold against the query job, ordered by descending similarity. Only
// jobs with a generated résumé are considered, since the caller's purpose is
// reusing past artifacts. When the query embedding cannot be produced, a
// basic text match over company and position is used instead.
func (db *DB) FindSimilar(ctx context.Context, embedder Embedder, company, position, description string, threshold float64, limit int) ([]SimilarJob, error) {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if limit <= 0 {
		limit = 10
	}

	var queryEmbedding []float32
	if embedder != nil {
		if vec, err := embedder.Embed(ctx, BuildEmbeddingText(company, position, description)); err == nil {
			queryEmbedding = vec
		}
	}
	if len(queryEmbedding) == 0 {
		return db.findSimilarBasic(ctx, company, position, limit)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, company_name, position_title, job_description, embedding, resume_generated, created_at
		 FROM job_applications
		 WHERE embedding IS NOT NULL AND resume_generated = TRUE
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query job applications: %w", err)
	}
	defer rows.Close()

	var similar []SimilarJob
	for rows.Next() {
		var job JobApplication
		var embedding []float32
		if err := rows.Scan(&job.ID, &job.CompanyName, &job.PositionTitle, &job.JobDescription,
			&embedding, &job.ResumeGenerated, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job application: %w", err)
		}
		score := cosineSimilarity(queryEmbedding, embedding)
		if score >= threshold {
			similar = append(similar, SimilarJob{JobApplication: job, SimilarityScore: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job applications: %w", err)
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].SimilarityScore > similar[j].SimilarityScore
	})
	if len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}

// findSimilarBasic is the embedding-free fallback: case-insensitive matching
// on company or position.
func (db *DB) findSimilarBasic(ctx context.Context, company, position string, limit int) ([]SimilarJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, company_name, position_title, job_description, resume_generated, created_at
		 FROM job_applications
		 WHERE resume_generated = TRUE AND (company_name ILIKE $1 OR position_title ILIKE $2)
		 ORDER BY created_at DESC
		 LIMIT $3`,
		"%"+company+"%", "%"+position+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query job applications: %w", err)
	}
	defer rows.Close()

	var similar []SimilarJob
	for rows.Next() {
		var job JobApplication
		if err := rows.Scan(&job.ID, &job.CompanyName, &job.PositionTitle, &job.JobDescription,
			&job.ResumeGenerated, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job application: %w", err)
		}
		similar = append(similar, SimilarJob{JobApplication: job})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job applications: %w", err)
	}
	return similar, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
