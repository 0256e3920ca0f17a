package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/docchat/docchat/internal/model"
)

var messageFields = []string{"id", "session_id", "message_type", "content", "timestamp", "metadata"}

type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores a message and fills in its generated id.
func (r *MessageRepo) Append(ctx context.Context, m *model.ChatMessage) error {
	var meta interface{}
	if m.Metadata != nil {
		raw, err := json.Marshal(m.Metadata)
		if err != nil {
			return fmt.Errorf("marshal message metadata: %w", err)
		}
		meta = string(raw)
	}
	data := map[string]interface{}{
		"session_id":   m.SessionID,
		"message_type": m.MessageType,
		"content":      m.Content,
		"timestamp":    m.Timestamp.UnixMilli(),
		"metadata":     meta,
	}
	query, args, err := builder.BuildInsert("chat_messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	if r.db.backend == BackendPostgres {
		query += " RETURNING id"
		query, args = r.db.finalize(query, args)
		return r.db.QueryRowContext(ctx, query, args...).Scan(&m.ID)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

// List returns messages for a session in chronological order, or the
// most recent messages across all sessions when sessionID is empty.
func (r *MessageRepo) List(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	where := map[string]interface{}{}
	if sessionID != "" {
		where["session_id"] = sessionID
		where["_orderby"] = "timestamp ASC, id ASC"
	} else {
		where["_orderby"] = "timestamp DESC, id DESC"
	}
	if limit > 0 {
		where["_limit"] = []uint{uint(limit)}
	}
	query, args, err := builder.BuildSelect("chat_messages", where, messageFields)
	if err != nil {
		return nil, err
	}
	query, args = r.db.finalize(query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []model.ChatMessage
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// DeleteBySession removes every message in the session and reports how
// many were deleted.
func (r *MessageRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	query, args, err := builder.BuildDelete("chat_messages", map[string]interface{}{"session_id": sessionID})
	if err != nil {
		return 0, err
	}
	query, args = r.db.finalize(query, args)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(scan func(dest ...interface{}) error) (*model.ChatMessage, error) {
	var m model.ChatMessage
	var ts int64
	var meta sql.NullString
	if err := scan(&m.ID, &m.SessionID, &m.MessageType, &m.Content, &ts, &meta); err != nil {
		return nil, err
	}
	m.Timestamp = time.UnixMilli(ts).UTC()
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &m.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal message metadata: %w", err)
		}
	}
	return &m, nil
}
