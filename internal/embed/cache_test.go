package embed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls      int
	batchCalls int
	dim        int
}

func (f *countingProvider) ModelName() string { return "fake-model" }
func (f *countingProvider) Dimension() int    { return f.dim }

func (f *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	vec := make([]float32, f.dim)
	vec[0] = float32(len(text))
	return vec, nil
}

func (f *countingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = make([]float32, f.dim)
		vecs[i][0] = float32(len(t))
	}
	return vecs, nil
}

func TestCacheHitSkipsProvider(t *testing.T) {
	fake := &countingProvider{dim: 3}
	p := WithLRUCache(fake, 16, time.Minute)

	v1, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	v2, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Equal(t, 1, fake.calls)

	_, err = p.Embed(context.Background(), "other")
	require.NoError(t, err)
	require.Equal(t, 2, fake.calls)
}

func TestCacheBatchOnlyFetchesMissing(t *testing.T) {
	fake := &countingProvider{dim: 2}
	p := WithLRUCache(fake, 16, time.Minute)

	_, err := p.Embed(context.Background(), "aa")
	require.NoError(t, err)

	vecs, err := p.EmbedBatch(context.Background(), []string{"aa", "bbbb"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	require.Equal(t, float32(2), vecs[0][0])
	require.Equal(t, float32(4), vecs[1][0])
	require.Equal(t, 1, fake.batchCalls)

	// fully cached batch is served without touching the provider
	_, err = p.EmbedBatch(context.Background(), []string{"aa", "bbbb"})
	require.NoError(t, err)
	require.Equal(t, 1, fake.batchCalls)
}

func TestWithLRUCacheDisabled(t *testing.T) {
	fake := &countingProvider{dim: 2}
	require.Equal(t, Provider(fake), WithLRUCache(fake, 0, time.Minute))
	require.Nil(t, WithLRUCache(nil, 16, time.Minute))
}

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider(Config{Provider: "", Model: "m", Dimension: 3})
	require.Error(t, err)

	_, err = NewProvider(Config{Provider: "nope", Model: "m", Dimension: 3})
	require.Error(t, err)

	_, err = NewProvider(Config{Provider: "openai", Model: "m", Dimension: 0})
	require.Error(t, err)

	p, err := NewProvider(Config{Provider: "openai", Model: "m", Dimension: 3, APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, "m", p.ModelName())
	require.Equal(t, 3, p.Dimension())
}
