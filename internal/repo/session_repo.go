package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/pkg/errs"
)

var sessionFields = []string{"id", "name", "mode", "pdf_id", "created_at", "updated_at"}

type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	data := map[string]interface{}{
		"id":         s.ID,
		"name":       s.Name,
		"mode":       s.Mode,
		"pdf_id":     nullableString(s.PDFID),
		"created_at": s.CreatedAt.UnixMilli(),
		"updated_at": s.UpdatedAt.UnixMilli(),
	}
	query, args, err := builder.BuildInsert("sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	query, args = r.db.finalize(query, args)
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	query, args, err := builder.BuildSelect("sessions", map[string]interface{}{"id": id}, sessionFields)
	if err != nil {
		return nil, err
	}
	query, args = r.db.finalize(query, args)
	row := r.db.QueryRowContext(ctx, query, args...)
	s, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all sessions, most recently updated first.
func (r *SessionRepo) List(ctx context.Context) ([]model.Session, error) {
	query, args, err := builder.BuildSelect("sessions",
		map[string]interface{}{"_orderby": "updated_at DESC"}, sessionFields)
	if err != nil {
		return nil, err
	}
	query, args = r.db.finalize(query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Touch refreshes updated_at; called whenever a message lands in the
// session.
func (r *SessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	query, args, err := builder.BuildUpdate("sessions",
		map[string]interface{}{"id": id},
		map[string]interface{}{"updated_at": at.UnixMilli()})
	if err != nil {
		return err
	}
	query, args = r.db.finalize(query, args)
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	query, args, err := builder.BuildDelete("sessions", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	query, args = r.db.finalize(query, args)
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func scanSession(scan func(dest ...interface{}) error) (*model.Session, error) {
	var s model.Session
	var pdfID sql.NullString
	var created, updated int64
	if err := scan(&s.ID, &s.Name, &s.Mode, &pdfID, &created, &updated); err != nil {
		return nil, err
	}
	if pdfID.Valid {
		s.PDFID = &pdfID.String
	}
	s.CreatedAt = time.UnixMilli(created).UTC()
	s.UpdatedAt = time.UnixMilli(updated).UTC()
	return &s, nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
