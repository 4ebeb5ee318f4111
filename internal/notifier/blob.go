package notifier

import (
	"fmt"
	"os"
	"path/filepath"
)

// BlobStore persists fetched submission archives. Put returns the path
// the blob ended up under.
type BlobStore interface {
	Put(key string, data []byte) (string, error)
}

type FSBlobStore struct {
	root string
}

func NewFSBlobStore(root string) *FSBlobStore {
	return &FSBlobStore{root: root}
}

func (s *FSBlobStore) Put(key string, data []byte) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return path, nil
}
