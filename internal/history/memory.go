package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used when history is disabled and in tests
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make([]*Entry, 0),
	}
}

// Record stores a new entry
func (s *MemoryStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)
	s.entries = append(s.entries, entry)
	return nil
}

// List returns entries, newest first
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if filter.Source != "" && entry.Source != filter.Source {
			continue
		}
		if filter.OnlyErrors && entry.OK {
			continue
		}
		if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
			continue
		}
		results = append(results, entry)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(results) {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Stats summarizes the stored entries
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{BySource: make(map[Source]int64)}
	for _, entry := range s.entries {
		stats.Total++
		if !entry.OK {
			stats.Errors++
		}
		stats.BySource[entry.Source]++
		if stats.First.IsZero() || entry.Timestamp.Before(stats.First) {
			stats.First = entry.Timestamp
		}
		if entry.Timestamp.After(stats.Last) {
			stats.Last = entry.Timestamp
		}
	}

	return stats, nil
}

// Prune removes entries older than the given age
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept

	return deleted, nil
}

// Vacuum is a no-op for the memory store
func (s *MemoryStore) Vacuum(ctx context.Context) error {
	return nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
