package session

import "sync"

// Storage is a scoped key-value store. Two lifetimes exist in the client:
// the in-memory session scope (cleared when the process exits; holds unlock
// tokens and the unlocked set) and a durable scope backed by the local
// database (survives restarts; holds the active collection id and the
// fallback chat session id). Both are injected so tests can fake them.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Keys held in the durable scope.
const (
	ActiveCollectionKey = "active_collection_id"
	ChatSessionKey      = "chat_session_id"
)

// TokenKey returns the session-scope key holding a collection's bearer token.
func TokenKey(collectionID string) string {
	return "access_token_" + collectionID
}

// UnlockedKey returns the session-scope key marking a collection unlocked.
func UnlockedKey(collectionID string) string {
	return "unlocked_" + collectionID
}

// Memory is the process-lifetime Storage implementation.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *Memory) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *Memory) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}
