package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"printsite_backend/internal/intake/transport"
)

// LocalStore implements ArtworkStore on the local filesystem.
type LocalStore struct {
	dir string
	now func() time.Time
}

// Compile-time check that LocalStore implements ArtworkStore.
var _ ArtworkStore = (*LocalStore)(nil)

// NewLocalStore stores artwork below dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("artwork directory not configured")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create artwork directory: %w", err)
	}
	return &LocalStore{dir: dir, now: time.Now}, nil
}

// Store copies the upload to a new file. A partially written file is removed.
func (s *LocalStore) Store(ctx context.Context, upload transport.ArtworkUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := ArtworkKey(s.now(), upload.FileName)
	if err != nil {
		return "", err
	}
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("create artwork folder: %w", err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create artwork file: %w", err)
	}
	if _, err := io.Copy(f, upload.Reader); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write artwork file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close artwork file: %w", err)
	}
	return key, nil
}

// Open reads a stored file.
func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("open artwork %s: %w", key, err)
	}
	return f, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}
