package media

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// ScratchStore spills byte sources to short-lived files in a private temp
// directory so decoders can reopen and seek them cheaply. Every ref handed
// out by Acquire must be released exactly once; Release is idempotent so
// replacement, failure cleanup, and teardown may all safely attempt it.
type ScratchStore struct {
	mu   sync.Mutex
	dir  string
	seq  int
	live map[*ScratchRef]struct{}
}

// ScratchRef is a short-lived local reference to a byte source. Either path
// points at a spilled temp file, or data holds the bytes in memory (the
// degraded path used when spilling fails).
type ScratchRef struct {
	name     string
	path     string
	data     []byte
	store    *ScratchStore
	released bool
}

// NewScratchStore creates a store backed by a fresh private temp directory.
// If the directory cannot be created the store still works, serving every
// ref from memory.
func NewScratchStore() *ScratchStore {
	dir, err := os.MkdirTemp("", "media-combiner-")
	if err != nil {
		log.Printf("scratch: temp dir unavailable, using memory refs: %v", err)
		dir = ""
	}
	return &ScratchStore{
		dir:  dir,
		live: make(map[*ScratchRef]struct{}),
	}
}

// Acquire copies the byte source into a scratch file and returns a ref to
// it. On spill failure it falls back to holding the bytes in memory; the
// error return is reserved for unreadable sources.
func (s *ScratchStore) Acquire(name string, r io.Reader) (*ScratchRef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scratch: read source %s: %w", name, err)
	}

	ref := &ScratchRef{name: name, store: s}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	dir := s.dir
	s.mu.Unlock()

	if dir != "" {
		path := filepath.Join(dir, fmt.Sprintf("%06d%s", seq, filepath.Ext(name)))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			log.Printf("scratch: spill failed for %s, keeping in memory: %v", name, err)
			ref.data = data
		} else {
			ref.path = path
		}
	} else {
		ref.data = data
	}

	s.mu.Lock()
	s.live[ref] = struct{}{}
	s.mu.Unlock()
	return ref, nil
}

// Release frees the ref's scratch file. Safe to call more than once and on
// a nil ref.
func (s *ScratchStore) Release(ref *ScratchRef) {
	if ref == nil {
		return
	}
	s.mu.Lock()
	if ref.released {
		s.mu.Unlock()
		return
	}
	ref.released = true
	delete(s.live, ref)
	s.mu.Unlock()

	if ref.path != "" {
		if err := os.Remove(ref.path); err != nil && !os.IsNotExist(err) {
			log.Printf("scratch: remove %s: %v", ref.path, err)
		}
	}
	ref.data = nil
}

// LiveCount returns the number of unreleased refs.
func (s *ScratchStore) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close releases all live refs and removes the scratch directory.
func (s *ScratchStore) Close() {
	s.mu.Lock()
	refs := make([]*ScratchRef, 0, len(s.live))
	for ref := range s.live {
		refs = append(refs, ref)
	}
	dir := s.dir
	s.dir = ""
	s.mu.Unlock()

	for _, ref := range refs {
		s.Release(ref)
	}
	if dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("scratch: remove dir %s: %v", dir, err)
		}
	}
}

// Name returns the original source name.
func (r *ScratchRef) Name() string {
	return r.name
}

// Open returns a reader over the referenced bytes.
func (r *ScratchRef) Open() (io.ReadCloser, error) {
	if r.released {
		return nil, fmt.Errorf("scratch: ref %s already released", r.name)
	}
	if r.path != "" {
		return os.Open(r.path)
	}
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

// Path returns the scratch file path, if the ref is file-backed.
func (r *ScratchRef) Path() (string, bool) {
	if r.released || r.path == "" {
		return "", false
	}
	return r.path, true
}
