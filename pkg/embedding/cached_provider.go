package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider decorates an EmbeddingProvider with a Redis cache keyed by
// a digest of the input text. Contract analyses re-embed the same canonical
// clauses on every request; caching turns those into O(1) lookups. Cache
// failures degrade to the inner provider, never to an error.
type CachedProvider struct {
	inner EmbeddingProvider
	rdb   *redis.Client
	ttl   time.Duration
}

var _ EmbeddingProvider = (*CachedProvider)(nil)

func NewCachedProvider(inner EmbeddingProvider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return "embedding:" + hex.EncodeToString(sum[:])[:16]
}

func (c *CachedProvider) Generate(ctx context.Context, text string) (*EmbeddingResponse, error) {
	key := cacheKey(text)

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var values []float32
		if err := json.Unmarshal(cached, &values); err == nil {
			return &EmbeddingResponse{Values: values}, nil
		}
	}

	res, err := c.inner.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(res.Values); err == nil {
		// Best effort: an unreachable cache must not fail the embedding.
		_ = c.rdb.Set(ctx, key, payload, c.ttl).Err()
	}
	return res, nil
}

func (c *CachedProvider) GenerateBatch(ctx context.Context, texts []string) ([]*EmbeddingResponse, error) {
	responses := make([]*EmbeddingResponse, len(texts))
	for i, text := range texts {
		res, err := c.Generate(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("batch embedding failed at item %d: %w", i, err)
		}
		responses[i] = res
	}
	return responses, nil
}
