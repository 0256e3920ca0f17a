package textproc

import (
	"strings"

	"github.com/docchat/docchat/internal/model"
)

// DefaultMinChunkChars is the minimum trimmed length a chunk must have to
// be worth embedding. Shorter fragments (page-break artifacts, stray
// numbers) would pollute the index with near-zero-information vectors.
const DefaultMinChunkChars = 10

// IsValid reports whether a chunk meets the minimum meaningful length.
// minLength <= 0 falls back to DefaultMinChunkChars.
func IsValid(chunk string, minLength int) bool {
	if minLength <= 0 {
		minLength = DefaultMinChunkChars
	}
	return len(strings.TrimSpace(chunk)) >= minLength
}

// Assemble drops invalid chunks and pairs the survivors with positional
// metadata. ChunkIndex values are contiguous 0..TotalChunks-1 over the
// valid chunks, and TotalChunks is the valid count, identical on every
// record of one ingestion.
func Assemble(chunks []string, filename string, minLength int) []model.Chunk {
	valid := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if IsValid(chunk, minLength) {
			valid = append(valid, chunk)
		}
	}
	out := make([]model.Chunk, 0, len(valid))
	for i, chunk := range valid {
		out = append(out, model.Chunk{
			Text: chunk,
			Metadata: model.ChunkMetadata{
				Filename:    filename,
				ChunkIndex:  i,
				TotalChunks: len(valid),
				Source:      model.SourcePDF,
			},
		})
	}
	return out
}
