// Package kv provides the opaque key-value blob stores that back persisted screens.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Store reads and writes whole blobs by key. Implementations are safe for
// concurrent use; concurrent writers to the same key race and the last write wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend string
	// Path is the SQLite database file or the file backend's directory.
	Path string
	// DSN is the Postgres connection string.
	DSN string
	S3  S3Config
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return OpenDir(cfg.Path)
	case "", BackendSQLite:
		return OpenSQLite(cfg.Path)
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	case BackendS3:
		return OpenS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
