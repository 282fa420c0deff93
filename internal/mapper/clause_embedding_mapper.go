package mapper

import (
	"encoding/json"

	"contract-redline-be/internal/entity"
	"contract-redline-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ClauseEmbeddingMapper struct{}

func NewClauseEmbeddingMapper() *ClauseEmbeddingMapper {
	return &ClauseEmbeddingMapper{}
}

func (m *ClauseEmbeddingMapper) ToModel(e *entity.ClauseEmbedding) *model.ClauseEmbedding {
	keywords, _ := json.Marshal(e.Keywords)
	return &model.ClauseEmbedding{
		Id:             e.Id,
		Category:       e.Category,
		StandardText:   e.StandardText,
		Keywords:       datatypes.JSON(keywords),
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (m *ClauseEmbeddingMapper) ToEntity(mod *model.ClauseEmbedding) *entity.ClauseEmbedding {
	var keywords []string
	_ = json.Unmarshal(mod.Keywords, &keywords)
	return &entity.ClauseEmbedding{
		Id:             mod.Id,
		Category:       mod.Category,
		StandardText:   mod.StandardText,
		Keywords:       keywords,
		EmbeddingValue: mod.EmbeddingValue.Slice(),
		CreatedAt:      mod.CreatedAt,
		UpdatedAt:      mod.UpdatedAt,
	}
}
