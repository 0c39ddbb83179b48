package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var validFileKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Dir stores each key as one file in a directory. Writes go through a temp
// file and a rename, so a reader never sees a partial blob.
type Dir struct {
	root string
}

// OpenDir creates root if needed and returns a Dir store.
func OpenDir(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("file store directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) path(key string) (string, error) {
	if !validFileKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.root, key+".blob"), nil
}

// Get reads the blob for key.
func (d *Dir) Get(_ context.Context, key string) ([]byte, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

// Put replaces the blob for key.
func (d *Dir) Put(_ context.Context, key string, value []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(d.root, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp blob: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(value); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close blob: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		return fmt.Errorf("failed to replace blob: %w", err)
	}
	return nil
}

// Close implements Store.
func (d *Dir) Close() error { return nil }
