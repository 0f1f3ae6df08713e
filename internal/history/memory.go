package history

import (
	"context"
	"sync"

	"github.com/justestif/go-moodify/internal/mood"
)

// DefaultMemoryCapacity bounds the in-memory store.
const DefaultMemoryCapacity = 1000

// MemoryStore keeps the most recent analyses in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	items    []Analysis // oldest first
	capacity int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store that keeps at most capacity analyses,
// dropping the oldest first. A non-positive capacity uses
// DefaultMemoryCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Save appends a to the store.
func (s *MemoryStore) Save(_ context.Context, a Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == s.capacity {
		s.items = append(s.items[:0], s.items[1:]...)
	}
	s.items = append(s.items, a)
	return nil
}

// Recent returns up to limit analyses, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Analysis, error) {
	return s.newest(limit, func(Analysis) bool { return true }), nil
}

// VoiceSamples returns up to limit voice analyses, newest first.
func (s *MemoryStore) VoiceSamples(_ context.Context, limit int) ([]Analysis, error) {
	return s.newest(limit, func(a Analysis) bool { return a.Voice != nil }), nil
}

// Counts returns the number of stored analyses per mood.
func (s *MemoryStore) Counts(_ context.Context) (map[mood.Label]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[mood.Label]int)
	for _, a := range s.items {
		counts[a.Mood]++
	}
	return counts, nil
}

func (s *MemoryStore) newest(limit int, keep func(Analysis) bool) []Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Analysis{}
	for i := len(s.items) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(s.items[i]) {
			out = append(out, s.items[i])
		}
	}
	return out
}
