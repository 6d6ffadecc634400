package travel

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bububa/itinerary-agents/components"
)

// DefaultMaxSessions bounds how many sessions a SessionStore keeps
const DefaultMaxSessions = 1024

// Session is one user's conversation. Runs in a session are serialized.
type Session struct {
	ID     string
	mtx    sync.Mutex
	memory *components.Memory
}

// Memory returns the session history
func (s *Session) Memory() *components.Memory {
	return s.memory
}

// SessionStore owns the sessions, keyed by ID. When full, the least recently
// used session is evicted together with its history.
type SessionStore struct {
	mtx         sync.Mutex
	sessions    *lru.Cache[string, *Session]
	historyRuns int
}

// NewSessionStore returns a store whose sessions keep historyRuns exchanges.
// maxSessions <= 0 uses DefaultMaxSessions.
func NewSessionStore(historyRuns int, maxSessions int) *SessionStore {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	// only fails for a non-positive size
	sessions, _ := lru.New[string, *Session](maxSessions)
	return &SessionStore{
		sessions:    sessions,
		historyRuns: historyRuns,
	}
}

// Get returns the session for id, creating it on first use
func (s *SessionStore) Get(id string) *Session {
	if id == "" {
		id = DefaultSessionID
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if sess, ok := s.sessions.Get(id); ok {
		return sess
	}
	sess := &Session{ID: id, memory: components.NewMemory(s.historyRuns)}
	s.sessions.Add(id, sess)
	return sess
}

// Reset clears the history of a session
func (s *SessionStore) Reset(id string) {
	sess, ok := s.sessions.Peek(id)
	if !ok {
		return
	}
	sess.mtx.Lock()
	sess.memory.Reset()
	sess.mtx.Unlock()
}

// Remove forgets a session entirely
func (s *SessionStore) Remove(id string) {
	s.mtx.Lock()
	s.sessions.Remove(id)
	s.mtx.Unlock()
}

func (s *SessionStore) Len() int {
	return s.sessions.Len()
}
