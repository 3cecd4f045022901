// Package resource keeps finished audio artifacts in memory and hands out
// opaque handles for playback and release.
//
// Handles are caller-managed: Bind allocates one, the HTTP layer serves the
// bytes for its lifetime, and Release frees the storage. Nothing is released
// automatically, so every exit path (reset, error, replacement) must call
// Release or ReleaseAll.
package resource

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle is an opaque reference to a bound artifact.
type Handle struct {
	ID       string
	MimeType string
}

type entry struct {
	data     []byte
	mimeType string
	boundAt  time.Time
}

// Store is a concurrency-safe in-memory handle registry.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Bind registers the bytes under a fresh handle. It never fails for valid
// bytes; the caller owns the returned handle until Release.
func (s *Store) Bind(data []byte, mimeType string) Handle {
	h := Handle{ID: uuid.NewString(), MimeType: mimeType}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[h.ID] = entry{data: data, mimeType: mimeType, boundAt: time.Now()}

	return h
}

// Get returns the bytes and MIME type bound to id. The boolean reports
// whether the handle is live.
func (s *Store) Get(id string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, "", false
	}

	return e.data, e.mimeType, true
}

// Release frees the storage behind id and reports whether the handle was
// live. Releasing an unknown or already-released handle is a no-op.
func (s *Store) Release(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[id]
	delete(s.entries, id)

	return ok
}

// ReleaseAll frees every live handle.
func (s *Store) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Len reports the number of live handles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
