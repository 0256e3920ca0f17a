package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// WithLRUCache wraps a provider with an in-process expirable LRU keyed on
// the model name and a content hash. Repeated queries (and re-uploads of
// identical documents) skip the backend entirely.
func WithLRUCache(next Provider, size int, ttl time.Duration) Provider {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &cachedProvider{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

type cachedProvider struct {
	next  Provider
	cache *expirable.LRU[string, []float32]
}

func (c *cachedProvider) ModelName() string {
	return c.next.ModelName()
}

func (c *cachedProvider) Dimension() int {
	return c.next.Dimension()
}

func (c *cachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.next.ModelName(), text)
	if cached, ok := c.cache.Get(key); ok {
		logutil.GetLogger(ctx).Debug("embedding cache hit")
		return cloneVector(cached), nil
	}
	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneVector(vec))
	return vec, nil
}

func (c *cachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	var missing []string
	var missingAt []int
	for i, text := range texts {
		if cached, ok := c.cache.Get(cacheKey(c.next.ModelName(), text)); ok {
			vecs[i] = cloneVector(cached)
			continue
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}
	if len(missing) == 0 {
		return vecs, nil
	}
	logutil.GetLogger(ctx).Debug("embedding batch",
		zap.Int("total", len(texts)),
		zap.Int("cache_hits", len(texts)-len(missing)),
	)
	fresh, err := c.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vec := range fresh {
		vecs[missingAt[j]] = vec
		c.cache.Add(cacheKey(c.next.ModelName(), missing[j]), cloneVector(vec))
	}
	return vecs, nil
}

func cacheKey(model, text string) string {
	hash := sha256.Sum256([]byte(text))
	return "embed:" + model + ":" + hex.EncodeToString(hash[:])
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
