package json

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/memorial"
)

// Interface compliance check.
var _ memorial.Persister = (*FileStore)(nil)

// FileStore persists the session collection as <Dir>/<Key>.json.
type FileStore struct {
	dir string
	key string

	mu sync.Mutex
}

// NewFileStore returns a FileStore writing under dir. key must be a plain
// file name without separators.
func NewFileStore(dir, key string) (*FileStore, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return nil, fmt.Errorf("invalid storage key %q: %w", key, memorial.ErrValidation)
	}
	return &FileStore{dir: dir, key: key}, nil
}

// Path returns the file the collection is stored in.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.key+".json")
}

// Load reads the stored collection. ok is false when the file does not exist.
func (s *FileStore) Load(ctx context.Context) ([]memorial.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	sessions, err := UnmarshalSessions(data)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", s.Path(), err)
	}
	return sessions, true, nil
}

// Save writes the collection, creating parent directories as needed. The
// file is replaced atomically.
func (s *FileStore) Save(ctx context.Context, sessions []memorial.Session) error {
	data, err := MarshalSessions(sessions)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
