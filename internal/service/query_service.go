package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/docchat/docchat/internal/embed"
	"github.com/docchat/docchat/internal/pkg/errs"
	"github.com/docchat/docchat/internal/vectorindex"
)

type QueryOptions struct {
	DefaultTopK int
	MaxTopK     int
}

// QueryService embeds a question and ranks indexed chunks against it.
type QueryService struct {
	provider embed.Provider
	index    vectorindex.Index
	opts     QueryOptions
}

func NewQueryService(provider embed.Provider, index vectorindex.Index, opts QueryOptions) *QueryService {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = 50
	}
	return &QueryService{provider: provider, index: index, opts: opts}
}

// Retrieve returns the topK most similar chunks. topK <= 0 selects the
// configured default; a filename narrows candidates to one document.
func (s *QueryService) Retrieve(ctx context.Context, query string, topK int, filename string) ([]vectorindex.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", errs.ErrInvalid)
	}
	if topK <= 0 {
		topK = s.opts.DefaultTopK
	}
	if topK > s.opts.MaxTopK {
		return nil, fmt.Errorf("%w: top_k must not exceed %d", errs.ErrInvalid, s.opts.MaxTopK)
	}
	vector, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	var filter *vectorindex.Filter
	if filename != "" {
		filter = &vectorindex.Filter{Filename: filename}
	}
	matches, err := s.index.Query(ctx, vector, topK, filter)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Stats exposes the index size for health reporting.
func (s *QueryService) Stats(ctx context.Context) (vectorindex.Stats, error) {
	return s.index.Stats(ctx)
}
