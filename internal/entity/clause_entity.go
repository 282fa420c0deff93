package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClauseEmbedding is a canonical standard clause with its precomputed
// embedding vector, as stored in the clause library.
type ClauseEmbedding struct {
	Id             uuid.UUID
	Category       string
	StandardText   string
	Keywords       []string
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Persona is a named negotiation strategy biasing the delta generator's
// prompt.
type Persona struct {
	Name         string
	Instructions string
}
