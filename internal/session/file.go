package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the session as a JSON file so consecutive CLI
// invocations share one sign-in. The file is the moral equivalent of the
// browser's session storage and is removed on logout.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed session store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("session: file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: failed to create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Get reads the stored session.
func (f *FileStore) Get(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: failed to read store: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt session file is treated as signed out.
		_ = os.Remove(f.path)
		return nil, ErrNotFound
	}
	if s.Token == "" {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Put writes the session. The file is created 0600; it holds a bearer token.
func (f *FileStore) Put(ctx context.Context, s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session: failed to write store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("session: failed to replace store: %w", err)
	}
	return nil
}

// Clear removes the session file.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: failed to clear store: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error {
	return nil
}
