package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/pkg/errs"
)

func TestOpenAIEmbedBatchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "/embeddings", r.URL.Path)
		// reply out of order; client must restore input order by index
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{float32(len(req.Input[1])), 0}},
				{"index": 0, "embedding": []float32{float32(len(req.Input[0])), 0}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "openai", Model: "m", Dimension: 2, APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	vecs, err := p.EmbedBatch(context.Background(), []string{"ab", "defg"})
	require.NoError(t, err)
	require.Equal(t, float32(2), vecs[0][0])
	require.Equal(t, float32(4), vecs[1][0])
}

func TestOpenAIEmbedDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float32{1, 2, 3}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "openai", Model: "m", Dimension: 2, APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestOpenAIEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{Provider: "openai", Model: "m", Dimension: 2, APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestOpenAIEmbedNoKey(t *testing.T) {
	p, err := NewProvider(Config{Provider: "openai", Model: "m", Dimension: 2})
	require.NoError(t, err)
	_, err = p.Embed(context.Background(), "text")
	require.ErrorIs(t, err, errs.ErrUnavailable)
}
