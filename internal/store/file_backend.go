package store

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend stores each key as <dir>/<key>.json.
// Writes go to a temp file in the same directory followed by a rename.
type FileBackend struct {
	dir string

	mu      sync.Mutex
	written map[string][sha256.Size]byte // last content hash written per key
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("data directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{dir: dir, written: make(map[string][sha256.Size]byte)}, nil
}

// Dir returns the directory holding the documents.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Path returns the file backing key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Get implements Backend.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put implements Backend.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) error {
	target := b.Path(key)

	tmp, err := os.CreateTemp(b.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	b.written[key] = sha256.Sum256(data)
	return nil
}

// Delete implements Backend.
func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.written, key)
	if err := os.Remove(b.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// IsOwnWrite reports whether the file for key still holds exactly what this
// backend last wrote. The watcher uses it to ignore our own renames.
func (b *FileBackend) IsOwnWrite(key string) bool {
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)

	b.mu.Lock()
	defer b.mu.Unlock()
	last, ok := b.written[key]
	return ok && last == sum
}

// Close implements Backend. Files need no teardown.
func (b *FileBackend) Close() error {
	return nil
}
