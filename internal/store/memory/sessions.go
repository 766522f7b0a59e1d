package memory

import (
	"context"
	"sync"
	"time"

	"memberportal/web-service/internal/store"
)

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// SessionStore holds session payloads in a map. Expired entries are
// invisible to Load and dropped by PurgeExpired.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]storedSession
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]storedSession),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *SessionStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error {
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = storedSession{data: dataCopy, expiresAt: expiresAt}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[sessionID]
	if !ok || !s.now().Before(stored.expiresAt) {
		return nil, store.ErrSessionNotFound
	}
	dataCopy := make([]byte, len(stored.data))
	copy(dataCopy, stored.data)
	return dataCopy, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var purged int64
	for id, stored := range s.sessions {
		if !now.Before(stored.expiresAt) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}

// Count returns the number of stored entries, expired or not.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
