package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/pkg/errs"
	"github.com/docchat/docchat/internal/vectorindex"
)

func seedIndex(t *testing.T, index vectorindex.Index) {
	t.Helper()
	records := []vectorindex.Record{
		{ID: "a", Vector: []float32{1, 0, 0, 0}, Text: "alpha", Metadata: model.ChunkMetadata{Filename: "a.pdf"}},
		{ID: "b", Vector: []float32{0, 1, 0, 0}, Text: "beta", Metadata: model.ChunkMetadata{Filename: "b.pdf"}},
	}
	require.NoError(t, index.Upsert(context.Background(), records))
}

func TestRetrieveValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewQueryService(&fakeProvider{dim: 4}, vectorindex.NewMemoryIndex(4),
		QueryOptions{DefaultTopK: 5, MaxTopK: 10})

	_, err := svc.Retrieve(ctx, "", 3, "")
	require.ErrorIs(t, err, errs.ErrInvalid)

	_, err = svc.Retrieve(ctx, "   ", 3, "")
	require.ErrorIs(t, err, errs.ErrInvalid)

	_, err = svc.Retrieve(ctx, "valid question", 11, "")
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestRetrieveDefaultTopK(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex(4)
	seedIndex(t, index)
	svc := NewQueryService(&fakeProvider{dim: 4}, index, QueryOptions{DefaultTopK: 1, MaxTopK: 10})

	matches, err := svc.Retrieve(ctx, "question", 0, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestRetrieveFilenameFilter(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex(4)
	seedIndex(t, index)
	svc := NewQueryService(&fakeProvider{dim: 4}, index, QueryOptions{DefaultTopK: 5, MaxTopK: 10})

	matches, err := svc.Retrieve(ctx, "question", 5, "b.pdf")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "beta", matches[0].Text)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	ctx := context.Background()
	svc := NewQueryService(&fakeProvider{dim: 4}, vectorindex.NewMemoryIndex(4),
		QueryOptions{DefaultTopK: 5, MaxTopK: 10})

	matches, err := svc.Retrieve(ctx, "question", 5, "")
	require.NoError(t, err)
	require.Empty(t, matches)
}
