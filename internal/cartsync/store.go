package cartsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore persists the guest cart between sessions.
type LocalStore interface {
	// Load returns the persisted items, or an empty slice when nothing
	// usable is stored.
	Load() []LineItem
	Save(items []LineItem) error
	Clear() error
}

// FileStore keeps the guest cart as a JSON array in a single file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() []LineItem {
	items, err := s.read()
	if err != nil {
		return []LineItem{}
	}
	return items
}

// read distinguishes a missing slot (nil error, empty cart) from a corrupt
// one (*ParseError).
func (s *FileStore) read() ([]LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []LineItem{}, nil
		}
		return nil, &ParseError{Path: s.path, Err: err}
	}
	if len(data) == 0 {
		return []LineItem{}, nil
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

// Save overwrites the slot. The write goes to a temp file in the same
// directory and is renamed into place.
func (s *FileStore) Save(items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cart dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cart file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close cart file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cart file: %w", err)
	}
	return nil
}
