// Package layers keeps the history of produced composites: local export
// artifacts and their hosted counterparts. The newest entry is the active
// one; the list persists as a JSON file next to the user's other data.
package layers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one produced composite.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path,omitempty"`
	URL      string    `json:"url,omitempty"`
	PublicID string    `json:"public_id,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Created  time.Time `json:"created"`
}

// Store holds result entries, newest last.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// AddResult appends an entry, stamping Created if the caller left it zero.
func (s *Store) AddResult(e Entry) {
	if e.Created.IsZero() {
		e.Created = time.Now()
	}
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// Active returns the most recent entry, or nil when the store is empty.
func (s *Store) Active() *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil
	}
	e := s.entries[len(s.entries)-1]
	return &e
}

// Entries returns a copy of all entries, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// storeFile is the on-disk shape, versioned alongside the app's other
// JSON files.
type storeFile struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Save writes the entry list to path as indented JSON.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	file := storeFile{Version: 1, Entries: s.entries}
	data, err := json.MarshalIndent(file, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a store from path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, err
	}
	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Store{entries: file.Entries}, nil
}
