package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docchat/docchat/internal/pkg/errs"
)

// ErrUnavailable reports that the embedding backend cannot be reached or
// is not configured.
var ErrUnavailable = fmt.Errorf("embedding provider: %w", errs.ErrUnavailable)

// Provider turns text into fixed-dimension vectors. Batch order must
// match input order, and every vector must have Dimension() entries.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
	Dimension() int
}

type Config struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
}

type factory func(cfg Config) (Provider, error)

var registry = map[string]factory{}

func register(name string, f factory) {
	registry[strings.ToLower(name)] = f
}

// NewProvider builds the configured embedding provider.
func NewProvider(cfg Config) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if key == "" {
		return nil, errors.New("embedding.provider is required")
	}
	f := registry[key]
	if f == nil {
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New("embedding.dimension must be positive")
	}
	return f(cfg)
}

// checkDimension guards the index against heterogeneous vectors, which
// silently corrupt similarity search.
func checkDimension(vec []float32, want int, model string) error {
	if len(vec) != want {
		return fmt.Errorf("%w: model %s returned dimension %d, configured %d", errs.ErrUnavailable, model, len(vec), want)
	}
	return nil
}
