package contract

import (
	"context"

	"contract-redline-be/internal/entity"
)

// ScoredClauseEmbedding wraps a library clause with its similarity score.
type ScoredClauseEmbedding struct {
	Clause     *entity.ClauseEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// ClauseLibraryRepository persists the organization's standard clause
// library with precomputed embeddings.
type ClauseLibraryRepository interface {
	Upsert(ctx context.Context, clause *entity.ClauseEmbedding) error
	FindAll(ctx context.Context) ([]*entity.ClauseEmbedding, error)
	FindByCategory(ctx context.Context, category string) (*entity.ClauseEmbedding, error)
	// SearchSimilar returns the library clauses nearest to the query
	// vector by cosine similarity, best first.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*ScoredClauseEmbedding, error)
}
