package model

// SourcePDF is the source tag attached to every chunk produced by PDF ingestion.
const SourcePDF = "pdf"

// ChunkMetadata carries the positional and provenance information for a chunk.
// Extra holds provider-specific additions that flow through the pipeline opaquely.
type ChunkMetadata struct {
	Filename    string            `json:"filename"`
	ChunkIndex  int               `json:"chunk_index"`
	TotalChunks int               `json:"total_chunks"`
	Source      string            `json:"source"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Chunk is the atomic unit of document text handed to embedding and indexing.
// Immutable once assembled.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}
