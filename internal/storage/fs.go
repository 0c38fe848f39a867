package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FSStore - objects as files under directory
type FSStore struct {
	dir string
}

// NewFSStore - directory is created when missing
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) path(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}

// Get ..
func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fpath, err := s.path(key)
	if err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(fpath) // #nosec G304 - key is cleaned
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return buf, nil
}

// Put - content type is not kept on disk, extension is enough
func (s *FSStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fpath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fpath), 0o750); err != nil {
		return fmt.Errorf("storage: create dir for %s: %w", key, err)
	}
	if err := os.WriteFile(fpath, data, 0o600); err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}
