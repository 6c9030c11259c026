package resultstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	answer   string
	storedAt time.Time
}

// MemoryStore is a process-local TTL cache with a size bound. When full, the
// oldest entry is evicted.
type MemoryStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryEntry
	now        func() time.Time
}

func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().Sub(e.storedAt) >= s.ttl {
		delete(s.entries, key)
		return "", false
	}
	return e.answer, true
}

func (s *MemoryStore) Put(_ context.Context, key, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists {
		s.purgeExpired(now)
		for len(s.entries) >= s.maxEntries {
			s.evictOldest()
		}
	}
	s.entries[key] = memoryEntry{answer: answer, storedAt: now}
}

// Len reports the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) purgeExpired(now time.Time) {
	for k, e := range s.entries {
		if now.Sub(e.storedAt) >= s.ttl {
			delete(s.entries, k)
		}
	}
}

func (s *MemoryStore) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range s.entries {
		if !found || e.storedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.storedAt, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}
