package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// ErrNotFound is returned when a document doesn't exist in a store.
var ErrNotFound = errors.New("export: document not found")

// ErrInvalidKey is returned for keys that would escape the store's root.
var ErrInvalidKey = errors.New("export: invalid key")

// Store is the interface for export storage backends.
type Store interface {
	// Put stores body under key, replacing any existing document.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// Get opens the document stored under key. It returns ErrNotFound if
	// no such document exists.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// checkKey validates a slash-separated, relative key.
func checkKey(key string) error {
	if key == "" || path.IsAbs(key) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// DiskStore stores documents on the local filesystem.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a new DiskStore rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Put writes body to a temp file and renames it into place, so readers
// never observe a partial document.
func (s *DiskStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Get opens the document stored under key.
func (s *DiskStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}
