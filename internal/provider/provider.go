// Package provider defines the interface to an external media service that
// can host exported composites and hand back transformation URLs. The rest
// of the application treats the service as opaque: it never inspects the
// URLs or derives behavior from them.
package provider

import (
	"context"
	"fmt"
	"sync"

	"media-combiner/internal/media"
)

// Asset describes a hosted media object as the service reports it.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Options parameterize a transformation URL. Zero values mean "leave
// unchanged"; the provider decides how (and whether) each option maps onto
// its own URL syntax.
type Options struct {
	Width   int
	Height  int
	Crop    string
	Quality int
}

// MediaProvider uploads media and builds transformation URLs.
type MediaProvider interface {
	// Upload stores the given bytes and returns the resulting asset.
	Upload(ctx context.Context, data []byte, kind media.Kind) (Asset, error)

	// TransformURL returns a URL serving the asset identified by publicID
	// with the given transformations applied.
	TransformURL(publicID string, opts Options) string
}

// Memory is an in-process MediaProvider that keeps uploads in a map. It
// backs tests and offline runs; nothing is actually hosted. Safe for
// concurrent use.
type Memory struct {
	mu      sync.Mutex
	uploads map[string][]byte
	seq     int
}

// NewMemory returns an empty in-process provider.
func NewMemory() *Memory {
	return &Memory{uploads: make(map[string][]byte)}
}

// Upload stores data under a generated public ID.
func (m *Memory) Upload(ctx context.Context, data []byte, kind media.Kind) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("upload: empty payload")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.seq++
	id := fmt.Sprintf("mem-%s-%d", kind, m.seq)
	m.uploads[id] = buf
	m.mu.Unlock()

	return Asset{URL: "memory://" + id, PublicID: id}, nil
}

// TransformURL encodes the options as a query string on the memory URL.
func (m *Memory) TransformURL(publicID string, opts Options) string {
	url := "memory://" + publicID
	if opts.Width > 0 || opts.Height > 0 {
		url += fmt.Sprintf("?w=%d&h=%d", opts.Width, opts.Height)
		if opts.Crop != "" {
			url += "&c=" + opts.Crop
		}
		if opts.Quality > 0 {
			url += fmt.Sprintf("&q=%d", opts.Quality)
		}
	}
	return url
}

// Bytes returns the stored payload for a public ID, if any.
func (m *Memory) Bytes(publicID string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.uploads[publicID]
	return data, ok
}
