package service

import (
	"context"

	"contract-redline-be/internal/repository/contract"
	"contract-redline-be/pkg/playbook"
	"contract-redline-be/pkg/redline"
)

type clauseLibrarySearcher struct {
	repo contract.ClauseLibraryRepository
}

// NewClauseLibrarySearcher adapts the clause-library repository to the
// classifier's semantic fallback, so nearest-clause lookups run against
// the stored library instead of re-embedding every standard clause per
// request.
func NewClauseLibrarySearcher(repo contract.ClauseLibraryRepository) redline.LibrarySearcher {
	return &clauseLibrarySearcher{repo: repo}
}

func (s *clauseLibrarySearcher) Nearest(ctx context.Context, vector []float32) (string, float64, error) {
	scored, err := s.repo.SearchSimilar(ctx, vector, 1)
	if err != nil {
		return playbook.CategoryUnknown, 0, err
	}
	if len(scored) == 0 {
		return playbook.CategoryUnknown, 0, nil
	}
	return scored[0].Clause.Category, scored[0].Similarity, nil
}
