package vectorindex

import (
	"context"
	"fmt"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/pkg/errs"
)

// Record is one embedded chunk as stored in the index. Text is duplicated
// next to the metadata because the index has no separate content store;
// retrieval must recover the chunk text from the record alone.
type Record struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata model.ChunkMetadata
}

// Match is a ranked retrieval result. Score is cosine similarity, higher
// meaning more similar.
type Match struct {
	ID       string              `json:"id"`
	Score    float32             `json:"score"`
	Text     string              `json:"text"`
	Metadata model.ChunkMetadata `json:"metadata"`
}

// Filter restricts query candidates before ranking. Zero value matches
// everything.
type Filter struct {
	Filename string
}

func (f *Filter) matches(md model.ChunkMetadata) bool {
	if f == nil {
		return true
	}
	if f.Filename != "" && md.Filename != f.Filename {
		return false
	}
	return true
}

type Stats struct {
	VectorCount int64 `json:"vector_count"`
	Dimension   int   `json:"dimension"`
}

// Index is the vector store consumed by ingestion and retrieval.
//
// Implementations must reject dimension mismatches and non-positive topK
// with errs.ErrInvalid, and report an unreachable backend with
// errs.ErrUnavailable instead of silently returning no matches.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error)
	DeleteAll(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

func validateQuery(vector []float32, topK, dim int) error {
	if topK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", errs.ErrInvalid, topK)
	}
	if len(vector) != dim {
		return fmt.Errorf("%w: query vector has dimension %d, index expects %d", errs.ErrInvalid, len(vector), dim)
	}
	return nil
}

func validateRecords(records []Record, dim int) error {
	for _, r := range records {
		if len(r.Vector) != dim {
			return fmt.Errorf("%w: record %s has dimension %d, index expects %d", errs.ErrInvalid, r.ID, len(r.Vector), dim)
		}
	}
	return nil
}
