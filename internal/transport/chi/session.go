package chi

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// SessionHeader carries the conversation id for /ask.
const SessionHeader = "X-Session-ID"

const maxSessionIDLen = 128

// sessionID returns the caller's session id, or a fresh one when absent or unusable.
func sessionID(r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" || len(id) > maxSessionIDLen {
		return uuid.NewString()
	}
	for _, c := range id {
		if c <= ' ' || c == 0x7f {
			return uuid.NewString()
		}
	}
	return id
}

// sessionLocks serializes requests that share a session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// lock blocks until id is free and returns its release func.
func (s *sessionLocks) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// size reports tracked sessions.
func (s *sessionLocks) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
