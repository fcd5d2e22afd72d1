package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryConfig holds configuration for the in-process store.
type MemoryConfig struct {
	// CleanupInterval is how often expired entries are swept (default: 5 minutes).
	CleanupInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// MemoryStore is an in-process Store. It is used when no Redis URL is
// configured and in tests.
type MemoryStore struct {
	now             func() time.Time
	cleanupInterval time.Duration

	mu          sync.RWMutex
	entries     map[string]entry
	lastCleanup time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &MemoryStore{
		now:             now,
		cleanupInterval: cleanupInterval,
		entries:         make(map[string]entry),
	}
}

// Get returns the value for key if it has not expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value under key until now+ttl.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: stored, expiresAt: now.Add(ttl)}
	s.cleanupIfNeeded(now)
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Enabled always returns true.
func (s *MemoryStore) Enabled() bool { return true }

// Name returns the backend name.
func (s *MemoryStore) Name() string { return "memory" }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cleanupIfNeeded drops expired entries. Caller holds the write lock.
func (s *MemoryStore) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
