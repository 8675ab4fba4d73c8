package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists view state as JSON files in a directory, one file per
// key. Filenames are derived from a SHA-256 hash of the key, so keys may
// contain any characters (topology file paths are common keys).
//
// A FileStore is safe to share between processes: writes go through a
// temporary file and rename, which is atomic on POSIX filesystems.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store in dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, key string) (ViewState, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return ViewState{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return ViewState{}, err
	}

	v := New()
	if err := json.Unmarshal(data, &v); err != nil {
		return ViewState{}, fmt.Errorf("decode state for %s: %w", key, err)
	}
	return v, nil
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, key string, v ViewState) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close implements Store. It is a no-op for files.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}
