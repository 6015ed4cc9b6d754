package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. Used when Redis is not
// configured, and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	ttl      time.Duration
}

type memorySession struct {
	logname   string
	expiresAt time.Time
}

// NewMemory creates an in-memory session store
func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
	}
}

// Create mints a session token for logname
func (s *MemoryStore) Create(ctx context.Context, logname string) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = memorySession{
		logname:   logname,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return token, nil
}

// Logname returns the identity bound to token, "" if absent or expired
func (s *MemoryStore) Logname(ctx context.Context, token string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if time.Now().After(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", nil
	}
	return sess.logname, nil
}

// Destroy discards the session
func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
