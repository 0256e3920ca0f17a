package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docchat/docchat/internal/embed"
	"github.com/docchat/docchat/internal/filestore"
	"github.com/docchat/docchat/internal/pkg/errs"
	"github.com/docchat/docchat/internal/textproc"
	"github.com/docchat/docchat/internal/vectorindex"
)

type IngestOptions struct {
	ChunkSize     int
	ChunkOverlap  int
	MinChunkChars int
	MaxFileSize   int64
}

// IngestResult summarizes one processed upload.
type IngestResult struct {
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
	TotalTokens int    `json:"total_tokens"`
	StoreKey    string `json:"store_key,omitempty"`
}

// TextExtractor pulls raw text out of an uploaded document.
// *extract.Extractor satisfies it.
type TextExtractor interface {
	Text(ctx context.Context, data []byte) (string, error)
}

// IngestService runs the upload pipeline: validate, archive, extract,
// normalize, chunk, embed, index.
type IngestService struct {
	extractor TextExtractor
	provider  embed.Provider
	index     vectorindex.Index
	store     filestore.Store
	opts      IngestOptions
}

func NewIngestService(extractor TextExtractor, provider embed.Provider, index vectorindex.Index, store filestore.Store, opts IngestOptions) *IngestService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 500
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.MinChunkChars <= 0 {
		opts.MinChunkChars = textproc.DefaultMinChunkChars
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 50 << 20
	}
	return &IngestService{
		extractor: extractor,
		provider:  provider,
		index:     index,
		store:     store,
		opts:      opts,
	}
}

// IngestPDF processes one uploaded document end to end. The whole upload
// is rejected before any side effect when the filename or size is off;
// past validation, the original bytes are archived first so a failed
// pipeline run can be replayed.
func (s *IngestService) IngestPDF(ctx context.Context, filename string, data []byte) (*IngestResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename))
	if err := s.validateUpload(filename, int64(len(data))); err != nil {
		return nil, err
	}

	storeKey := ""
	if s.store != nil {
		storeKey = fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(filename))
		if err := s.store.Save(ctx, storeKey, data); err != nil {
			// archiving is best effort; the pipeline still runs
			logger.Warn("archive upload failed", zap.Error(err))
			storeKey = ""
		}
	}

	text, err := s.extractor.Text(ctx, data)
	if err != nil {
		return nil, err
	}
	normalized := textproc.Normalize(text)
	pieces := textproc.Chunk(normalized, s.opts.ChunkSize, s.opts.ChunkOverlap)
	chunks := textproc.Assemble(pieces, filepath.Base(filename), s.opts.MinChunkChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document produced no usable chunks", errs.ErrExtraction)
	}

	texts := make([]string, 0, len(chunks))
	totalTokens := 0
	for _, c := range chunks {
		texts = append(texts, c.Text)
		totalTokens += textproc.EstimateTokens(c.Text)
	}
	vectors, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", errs.ErrInternal, len(vectors), len(chunks))
	}

	records := make([]vectorindex.Record, 0, len(chunks))
	for i, c := range chunks {
		records = append(records, vectorindex.Record{
			ID:       uuid.NewString(),
			Vector:   vectors[i],
			Text:     c.Text,
			Metadata: c.Metadata,
		})
	}
	if err := s.index.Upsert(ctx, records); err != nil {
		return nil, err
	}

	logger.Info("pdf ingested",
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", totalTokens))
	return &IngestResult{
		Filename:    filepath.Base(filename),
		ChunksAdded: len(chunks),
		TotalTokens: totalTokens,
		StoreKey:    storeKey,
	}, nil
}

func (s *IngestService) validateUpload(filename string, size int64) error {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return fmt.Errorf("%w: only pdf files are accepted", errs.ErrInvalid)
	}
	if size == 0 {
		return fmt.Errorf("%w: empty file", errs.ErrInvalid)
	}
	if size > s.opts.MaxFileSize {
		return fmt.Errorf("%w: file exceeds %d bytes", errs.ErrInvalid, s.opts.MaxFileSize)
	}
	return nil
}
