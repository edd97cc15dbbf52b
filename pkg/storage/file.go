package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists values as a JSON object in a single file, written
// through on every change. Processes sharing the file do not coordinate.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFileStore opens (or creates on first write) the store at path
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("failed to decode store file %s: %w", path, err)
		}
	}
	return s, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value for key
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key and flushes the file. The change is kept
// only when the flush succeeds.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.copyData()
	next[key] = value
	return s.commit(next)
}

// Remove deletes key and flushes the file
func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	next := s.copyData()
	delete(next, key)
	return s.commit(next)
}

func (s *FileStore) copyData() map[string]string {
	next := make(map[string]string, len(s.data)+1)
	for k, v := range s.data {
		next[k] = v
	}
	return next
}

// commit flushes next and makes it current. Caller holds s.mu.
func (s *FileStore) commit(next map[string]string) error {
	if err := flush(s.path, next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// flush writes through a temp file and renames it into place
func flush(path string, data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
