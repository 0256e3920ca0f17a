package repo

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/docchat/docchat/internal/pkg/dbutil"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DB wraps the sql handle with the backend it talks to, so repos can
// rebind placeholders for postgres while sqlite takes them as-is.
type DB struct {
	*sql.DB
	backend string
}

type ConnectOptions struct {
	Backend  string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Open(opts ConnectOptions) (*DB, error) {
	switch opts.Backend {
	case BackendSQLite:
		db, err := sql.Open("sqlite", opts.Path)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY under concurrent handlers
		db.SetMaxOpenConns(1)
		return &DB{DB: db, backend: BackendSQLite}, nil
	case BackendPostgres:
		sslMode := opts.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			opts.Host, opts.Port, opts.User, opts.Password, opts.DBName, sslMode)
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		return &DB{DB: db, backend: BackendPostgres}, nil
	default:
		return nil, fmt.Errorf("unsupported database backend: %s", opts.Backend)
	}
}

func (d *DB) finalize(query string, args []interface{}) (string, []interface{}) {
	if d.backend == BackendPostgres {
		return dbutil.Finalize(query, args)
	}
	return query, args
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mode TEXT NOT NULL,
		pdf_id TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		message_type TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp BIGINT NOT NULL,
		metadata TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mode TEXT NOT NULL,
		pdf_id TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		message_type TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp BIGINT NOT NULL,
		metadata TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id)`,
}

func ApplyMigrations(db *DB) error {
	migrations := sqliteMigrations
	if db.backend == BackendPostgres {
		migrations = postgresMigrations
	}
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
