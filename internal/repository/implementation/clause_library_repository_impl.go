package implementation

import (
	"context"
	"errors"

	"contract-redline-be/internal/entity"
	"contract-redline-be/internal/mapper"
	"contract-redline-be/internal/model"
	"contract-redline-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClauseLibraryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ClauseEmbeddingMapper
}

func NewClauseLibraryRepository(db *gorm.DB) contract.ClauseLibraryRepository {
	return &ClauseLibraryRepositoryImpl{
		db:     db,
		mapper: mapper.NewClauseEmbeddingMapper(),
	}
}

func (r *ClauseLibraryRepositoryImpl) Upsert(ctx context.Context, c *entity.ClauseEmbedding) error {
	m := r.mapper.ToModel(c)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"standard_text", "keywords", "embedding_value", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*c = *r.mapper.ToEntity(m)
	return nil
}

func (r *ClauseLibraryRepositoryImpl) FindAll(ctx context.Context) ([]*entity.ClauseEmbedding, error) {
	var models []*model.ClauseEmbedding
	if err := r.db.WithContext(ctx).Order("category asc").Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ClauseEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ClauseLibraryRepositoryImpl) FindByCategory(ctx context.Context, category string) (*entity.ClauseEmbedding, error) {
	var m model.ClauseEmbedding
	err := r.db.WithContext(ctx).Where("category = ?", category).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ClauseLibraryRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredClauseEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// pgvector cosine distance: 1 - (a <=> b) is the similarity.
	type row struct {
		model.ClauseEmbedding
		Distance float64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.ClauseEmbedding{}).
		Select("*, (embedding_value <=> ?) AS distance", pgvector.NewVector(embedding)).
		Where("deleted_at IS NULL").
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredClauseEmbedding, len(rows))
	for i, rw := range rows {
		m := rw.ClauseEmbedding
		scored[i] = &contract.ScoredClauseEmbedding{
			Clause:     r.mapper.ToEntity(&m),
			Similarity: 1 - rw.Distance,
		}
	}
	return scored, nil
}
