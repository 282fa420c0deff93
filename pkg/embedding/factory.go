package embedding

import "fmt"

// NewProvider builds the configured embedding backend. Empty provider
// type defaults to ollama.
func NewProvider(providerType, baseURL, model string) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama", "":
		return NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
