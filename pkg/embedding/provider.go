package embedding

import "context"

// EmbeddingResponse wraps a single embedding vector.
type EmbeddingResponse struct {
	Values []float32
}

// EmbeddingProvider defines the interface for generating text embeddings.
// The choice of model is pluggable; the matcher only requires that the
// provider produces comparable vectors for any pair of input strings.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) (*EmbeddingResponse, error)
	GenerateBatch(ctx context.Context, texts []string) ([]*EmbeddingResponse, error)
}
