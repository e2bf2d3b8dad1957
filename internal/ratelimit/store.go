// Package ratelimit enforces per-operation sliding-window limits and a coarse
// per-address global limit.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store holds the sliding-window log of every (address, operation) key.
type Store interface {
	// Take drops hits at or before now-window, then records a hit at now
	// unless max hits remain inside the window.
	Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, error)
	// Sweep evicts keys without any hit inside their window.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type entry struct {
	hits   []time.Time
	window time.Duration
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry)}
}

func (s *MemoryStore) Take(_ context.Context, key string, now time.Time, window time.Duration, max int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if e == nil {
		e = &entry{}
		s.entries[key] = e
	}
	e.window = window
	e.hits = prune(e.hits, now.Add(-window))

	if len(e.hits) >= max {
		return false, nil
	}
	e.hits = append(e.hits, now)
	return true, nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, e := range s.entries {
		e.hits = prune(e.hits, now.Add(-e.window))
		if len(e.hits) == 0 {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted, nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// prune drops hits at or before cutoff. hits is ordered.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}
