package store

import (
	"github.com/google/uuid"
	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/session"
)

// Loading reports whether an ask call is outstanding.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLoading flips the loading flag. The composer is expected to disable
// submission while it is set.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.bus.Emit(bus.KindLoadingChanged, v)
}

// AppendMessage appends a message to a collection's thread, recomputing
// the message count. Messages are never removed once appended.
func (s *Store) AppendMessage(collectionID string, m model.ChatMessage) {
	s.mu.Lock()
	existing := s.findLocked(collectionID)
	if existing == nil {
		s.mu.Unlock()
		return
	}
	updated := existing.Clone()
	updated.Messages = append(updated.Messages, m)
	updated.MessageCount = len(updated.Messages)
	s.swapLocked(updated)
	s.mu.Unlock()

	s.bus.Emit(bus.KindMessageAppended, bus.MessageAppended{CollectionID: collectionID, Message: m})
}

// AppendSessionMessage appends a message to the no-collection fallback chat.
func (s *Store) AppendSessionMessage(m model.ChatMessage) {
	s.mu.Lock()
	s.sessionMsgs = append(s.sessionMsgs, m)
	s.mu.Unlock()

	s.bus.Emit(bus.KindMessageAppended, bus.MessageAppended{Message: m})
}

// SessionMessages returns a snapshot of the fallback chat.
func (s *Store) SessionMessages() []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ChatMessage, len(s.sessionMsgs))
	copy(out, s.sessionMsgs)
	return out
}

// SessionID returns the durable chat session id for the fallback mode,
// minting and persisting one on first use.
func (s *Store) SessionID() string {
	if id, ok := s.durable.Get(session.ChatSessionKey); ok && id != "" {
		return id
	}
	id := uuid.New().String()
	s.durable.Set(session.ChatSessionKey, id)
	return id
}
