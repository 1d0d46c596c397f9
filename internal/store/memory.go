package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/edubotswana/edubot/internal/domain"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore implements SessionStore in memory, for tests and local
// development. Safe for concurrent use. Sessions go through the same JSON
// round-trip as the redis store so both exercise identical serialization.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithMemoryTTL sets the sliding expiration for sessions.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemory creates a new in-memory store.
func NewMemory(opts ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     5 * time.Minute,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Get retrieves the session, honoring expiry lazily. Expired entries are
// dropped on read so the map does not grow with dead sessions.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		// A concurrent Save may have refreshed the entry meanwhile.
		if cur, ok := s.entries[sessionID]; ok && s.now().After(cur.expiresAt) {
			delete(s.entries, sessionID)
		}
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Save persists the session and refreshes its TTL.
func (s *MemoryStore) Save(ctx context.Context, session *domain.Session) error {
	session.LastActivity = s.now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.SessionID] = memoryEntry{
		data:      data,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
