package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/pkg/errs"
)

// QdrantIndex is a minimal REST client to a qdrant collection using cosine
// distance. The collection is created on construction if missing.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	dim        int
	client     *http.Client
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewQdrantIndex(ctx context.Context, cfg QdrantConfig, dimension int) (*QdrantIndex, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	q := &QdrantIndex{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dim:        dimension,
		client:     &http.Client{Timeout: timeout},
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// 200 OK when the collection already exists with the same schema
	if err := q.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", q.url, q.collection), body, nil); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, records []Record) error {
	if err := validateRecords(records, q.dim); err != nil {
		return err
	}
	points := make([]map[string]any, len(records))
	for i, r := range records {
		points[i] = map[string]any{
			"id":     r.ID,
			"vector": r.Vector,
			"payload": map[string]any{
				"text":         r.Text,
				"filename":     r.Metadata.Filename,
				"chunk_index":  r.Metadata.ChunkIndex,
				"total_chunks": r.Metadata.TotalChunks,
				"source":       r.Metadata.Source,
			},
		}
	}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection)
	return q.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points}, nil)
}

func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error) {
	if err := validateQuery(vector, topK, q.dim); err != nil {
		return nil, err
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if filter != nil && filter.Filename != "" {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "filename", "match": map[string]any{"value": filter.Filename}},
			},
		}
	}
	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		m := Match{ID: r.ID, Score: r.Score}
		if v, ok := r.Payload["text"].(string); ok {
			m.Text = v
		}
		m.Metadata = payloadMetadata(r.Payload)
		matches = append(matches, m)
	}
	return matches, nil
}

func (q *QdrantIndex) DeleteAll(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", q.url, q.collection)
	body := map[string]any{"filter": map[string]any{}}
	return q.doJSON(ctx, http.MethodPost, url, body, nil)
}

func (q *QdrantIndex) Stats(ctx context.Context) (Stats, error) {
	var resp struct {
		Result struct {
			PointsCount int64 `json:"points_count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s", q.url, q.collection)
	if err := q.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return Stats{}, err
	}
	return Stats{VectorCount: resp.Result.PointsCount, Dimension: q.dim}, nil
}

func payloadMetadata(payload map[string]any) model.ChunkMetadata {
	md := model.ChunkMetadata{}
	if v, ok := payload["filename"].(string); ok {
		md.Filename = v
	}
	if v, ok := payload["chunk_index"].(float64); ok {
		md.ChunkIndex = int(v)
	}
	if v, ok := payload["total_chunks"].(float64); ok {
		md.TotalChunks = int(v)
	}
	if v, ok := payload["source"].(string); ok {
		md.Source = v
	}
	return md
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant %s %s: %v", errs.ErrUnavailable, method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: qdrant %s %s: %s", errs.ErrUnavailable, method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
