package transcript

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kailas-cloud/qacache/internal/domain/message"
)

type session struct {
	msgs     []message.Message
	expireAt time.Time
}

// MemoryStore keeps transcripts in process memory with the same trim and TTL rules as RedisStore.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*session
	maxMessages int
	ttl         time.Duration
	now         func() time.Time
}

// NewMemoryStore creates an in-process transcript store.
func NewMemoryStore(maxMessages int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*session),
		maxMessages: maxMessages,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Load returns a copy of the session history.
func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(sessionID)
	if sess == nil {
		return []message.Message{}, nil
	}
	return slices.Clone(sess.msgs), nil
}

// Append adds messages and refreshes the session TTL.
func (s *MemoryStore) Append(_ context.Context, sessionID string, msgs ...message.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(sessionID)
	if sess == nil {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.msgs = append(sess.msgs, msgs...)
	if s.maxMessages > 0 && len(sess.msgs) > s.maxMessages {
		sess.msgs = slices.Clone(sess.msgs[len(sess.msgs)-s.maxMessages:])
	}
	if s.ttl > 0 {
		sess.expireAt = s.now().Add(s.ttl)
	}
	return nil
}

// live returns the session or nil, evicting it when expired. Caller holds mu.
func (s *MemoryStore) live(sessionID string) *session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if !sess.expireAt.IsZero() && !s.now().Before(sess.expireAt) {
		delete(s.sessions, sessionID)
		return nil
	}
	return sess
}
