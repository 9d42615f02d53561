package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/ipk-calculator/pkg/storage"
)

type fileBackend interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
}

// FileStore keeps each key in its own JSON file under a directory.
type FileStore struct {
	files fileBackend
}

// NewFileStore wraps a local storage directory.
func NewFileStore(files fileBackend) *FileStore {
	return &FileStore{files: files}
}

// Get reads the file backing key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.files.Read(fileName(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, keyNotFound(key)
		}
		return nil, storageFailure(err, "read %s", key)
	}
	return data, nil
}

// Put replaces the file backing key.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.files.Save(fileName(key), value); err != nil {
		return storageFailure(err, "write %s", key)
	}
	return nil
}

func fileName(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return replacer.Replace(key) + ".json"
}
