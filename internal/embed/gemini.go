package embed

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiProvider struct {
	apiKey string
	model  string
	dim    int
}

func newGeminiProvider(cfg Config) (Provider, error) {
	return &geminiProvider{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  cfg.Model,
		dim:    cfg.Dimension,
	}, nil
}

func (p *geminiProvider) ModelName() string {
	return p.model
}

func (p *geminiProvider) Dimension() int {
	return p.dim
}

func (p *geminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *geminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: text}}}
	}
	dim := int32(p.dim)
	resp, err := client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		TaskType:             "RETRIEVAL_DOCUMENT",
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrUnavailable, len(resp.Embeddings), len(texts))
	}
	vecs := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if err := checkDimension(e.Values, p.dim, p.model); err != nil {
			return nil, err
		}
		vecs[i] = e.Values
	}
	return vecs, nil
}

func init() {
	register("gemini", newGeminiProvider)
}
