package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is the in-process matcher. It keeps records in insertion
// order and ranks the filtered candidate set by cosine similarity.
// Safe for concurrent use.
type MemoryIndex struct {
	mu      sync.RWMutex
	dim     int
	records []Record
	byID    map[string]int
}

func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dim:  dimension,
		byID: make(map[string]int),
	}
}

func (m *MemoryIndex) Upsert(ctx context.Context, records []Record) error {
	if err := validateRecords(records, m.dim); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if pos, ok := m.byID[r.ID]; ok {
			m.records[pos] = r
			continue
		}
		m.byID[r.ID] = len(m.records)
		m.records = append(m.records, r)
	}
	return nil
}

// Query ranks all records passing the filter by descending cosine
// similarity and returns at most topK of them. Filtering happens before
// ranking, so the result is the best topK among matching records, never a
// truncation of the global ranking. Equal scores keep insertion order.
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error) {
	if err := validateQuery(vector, topK, m.dim); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.records))
	for _, r := range m.records {
		if !filter.matches(r.Metadata) {
			continue
		}
		matches = append(matches, Match{
			ID:       r.ID,
			Score:    cosineSimilarity(vector, r.Vector),
			Text:     r.Text,
			Metadata: r.Metadata,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MemoryIndex) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.byID = make(map[string]int)
	return nil
}

func (m *MemoryIndex) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{VectorCount: int64(len(m.records)), Dimension: m.dim}, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
