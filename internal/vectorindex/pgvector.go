package vectorindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/docchat/docchat/internal/pkg/errs"
)

// PGVectorIndex stores records in postgres using the pgvector extension.
// Cosine distance is computed server-side; scores are reported as
// 1 - distance so that higher means more similar.
type PGVectorIndex struct {
	db  *sql.DB
	dim int
}

func NewPGVectorIndex(ctx context.Context, db *sql.DB, dimension int) (*PGVectorIndex, error) {
	idx := &PGVectorIndex{db: db, dim: dimension}
	if err := idx.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("%w: init pgvector schema: %v", errs.ErrUnavailable, err)
	}
	return idx, nil
}

func (p *PGVectorIndex) ensureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return err
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS chunk_vectors (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			content TEXT NOT NULL,
			filename TEXT NOT NULL,
			chunk_index INT NOT NULL,
			total_chunks INT NOT NULL,
			source TEXT NOT NULL,
			extra JSONB
		)`, p.dim)
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunk_vectors_filename ON chunk_vectors (filename)`)
	return err
}

func (p *PGVectorIndex) Upsert(ctx context.Context, records []Record) error {
	if err := validateRecords(records, p.dim); err != nil {
		return err
	}
	const query = `
		INSERT INTO chunk_vectors (id, embedding, content, filename, chunk_index, total_chunks, source, extra)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			content = EXCLUDED.content,
			filename = EXCLUDED.filename,
			chunk_index = EXCLUDED.chunk_index,
			total_chunks = EXCLUDED.total_chunks,
			source = EXCLUDED.source,
			extra = EXCLUDED.extra
	`
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %v", errs.ErrUnavailable, err)
	}
	defer tx.Rollback()
	for _, r := range records {
		var extra []byte
		if len(r.Metadata.Extra) > 0 {
			if extra, err = json.Marshal(r.Metadata.Extra); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, query,
			r.ID,
			pgvector.NewVector(r.Vector),
			r.Text,
			r.Metadata.Filename,
			r.Metadata.ChunkIndex,
			r.Metadata.TotalChunks,
			r.Metadata.Source,
			nullableBytes(extra),
		); err != nil {
			return fmt.Errorf("%w: upsert vector %s: %v", errs.ErrUnavailable, r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func (p *PGVectorIndex) Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error) {
	if err := validateQuery(vector, topK, p.dim); err != nil {
		return nil, err
	}
	query := `
		SELECT id, content, filename, chunk_index, total_chunks, source, extra,
			1 - (embedding <=> $1) AS score
		FROM chunk_vectors
	`
	args := []interface{}{pgvector.NewVector(vector)}
	if filter != nil && filter.Filename != "" {
		query += ` WHERE filename = $2`
		args = append(args, filter.Filename)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1, id LIMIT %d`, topK)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query vectors: %v", errs.ErrUnavailable, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var extra []byte
		if err := rows.Scan(&m.ID, &m.Text, &m.Metadata.Filename, &m.Metadata.ChunkIndex,
			&m.Metadata.TotalChunks, &m.Metadata.Source, &extra, &m.Score); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &m.Metadata.Extra); err != nil {
				return nil, err
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read vector rows: %v", errs.ErrUnavailable, err)
	}
	return matches, nil
}

func (p *PGVectorIndex) DeleteAll(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `TRUNCATE chunk_vectors`); err != nil {
		return fmt.Errorf("%w: truncate vectors: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func (p *PGVectorIndex) Stats(ctx context.Context) (Stats, error) {
	var count int64
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunk_vectors`).Scan(&count); err != nil {
		return Stats{}, fmt.Errorf("%w: count vectors: %v", errs.ErrUnavailable, err)
	}
	return Stats{VectorCount: count, Dimension: p.dim}, nil
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
