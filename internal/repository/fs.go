package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FSBlobStore keeps the document in a single file on the local filesystem.
type FSBlobStore struct {
	path string
}

func NewFSBlobStore(path string) *FSBlobStore {
	return &FSBlobStore{path: path}
}

func (s *FSBlobStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (s *FSBlobStore) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *FSBlobStore) Close() error {
	return nil
}
