package blob

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory. It backs the degraded
// in-memory-only mode when the database cannot be opened, and test doubles.
type MemoryStore struct {
	mu       sync.RWMutex
	payloads map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payloads: map[string]string{}}
}

// Put persists the payload under a fresh key and returns its reference.
func (s *MemoryStore) Put(ctx context.Context, payload string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := NewRef()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[ref] = payload
	return ref, nil
}

// Get returns the payload for a reference, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.payloads[ref]
	if !ok {
		return "", ErrNotFound
	}
	return payload, nil
}

// DeleteMany removes the referenced payloads; missing references are ignored.
func (s *MemoryStore) DeleteMany(ctx context.Context, refs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		delete(s.payloads, ref)
	}
	return nil
}

// Len returns the number of stored payloads.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads)
}

// Keys returns every stored blob reference.
func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]string, 0, len(s.payloads))
	for ref := range s.payloads {
		refs = append(refs, ref)
	}
	return refs, nil
}
