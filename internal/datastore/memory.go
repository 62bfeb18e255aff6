package datastore

import (
	"fmt"
	"sync"

	"github.com/soltixdb/modelviz/internal/dataset"
)

type memoryEntry struct {
	matrix  dataset.Matrix
	overlay *dataset.Overlay
}

// MemoryStore is an in-process Store, filled with Put.
type MemoryStore struct {
	mu      sync.RWMutex
	ns      *namespace
	entries map[string]memoryEntry
	closed  bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ns:      newNamespace(),
		entries: make(map[string]memoryEntry),
	}
}

func entryKey(group, item string) string {
	return group + "\x00" + item
}

// Put adds or replaces an item. Groups and items keep first-insertion order.
func (s *MemoryStore) Put(group, item string, m dataset.Matrix, overlay *dataset.Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ns.add(group, item)
	s.entries[entryKey(group, item)] = memoryEntry{matrix: m, overlay: overlay}
}

// Groups implements Store.
func (s *MemoryStore) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ns.Groups()
}

// Items implements Store.
func (s *MemoryStore) Items(group string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ns.Items(group)
}

// Read implements Store.
func (s *MemoryStore) Read(group, item string) (dataset.Matrix, *dataset.Overlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return dataset.Matrix{}, nil, fmt.Errorf("memory store is closed")
	}
	e, ok := s.entries[entryKey(group, item)]
	if !ok {
		return dataset.Matrix{}, nil, fmt.Errorf("%w: %s/%s", dataset.ErrNotFound, group, item)
	}
	var overlay *dataset.Overlay
	if e.overlay != nil {
		overlay = dataset.NewOverlay(e.overlay.Values)
	}
	return e.matrix, overlay, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
