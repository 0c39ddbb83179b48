package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // SQLite driver.
)

// SQL stores blobs in a single two-column table. The same statements run on
// SQLite and Postgres apart from placeholder syntax.
type SQL struct {
	db       *sql.DB
	getQuery string
	putQuery string
}

const createBlobsTable = `CREATE TABLE IF NOT EXISTS blobs (
	blob_key TEXT PRIMARY KEY,
	blob_value BYTEA NOT NULL
);`

// OpenSQLite opens or creates the SQLite database at path. Writes go through a
// single connection so overlapping background puts queue instead of failing
// with SQLITE_BUSY.
func OpenSQLite(path string) (*SQL, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQL(context.Background(), db, "sqlite", "?", "?")
}

// OpenPostgres connects to dsn through pgx.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQL(ctx, db, "postgres", "$1", "$2")
}

func newSQL(ctx context.Context, db *sql.DB, tag, p1, p2 string) (*SQL, error) {
	s := &SQL{
		db:       db,
		getQuery: fmt.Sprintf(`SELECT blob_value FROM blobs WHERE blob_key = %s`, p1),
		putQuery: fmt.Sprintf(`INSERT INTO blobs (blob_key, blob_value) VALUES (%s, %s)
			ON CONFLICT (blob_key) DO UPDATE SET blob_value = excluded.blob_value`, p1, p2),
	}
	if _, err := db.ExecContext(ctx, createBlobsTable); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("migrate %s store: %w", tag, err)
	}
	return s, nil
}

// Get reads the blob for key.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select blob: %w", err)
	}
	return value, nil
}

// Put upserts the blob for key.
func (s *SQL) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, s.putQuery, key, value); err != nil {
		return fmt.Errorf("upsert blob: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.db.Close()
}
