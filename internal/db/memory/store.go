// Package memory is an in-process db.Store for single-node runs and tests.
// Vector search is brute-force cosine over every hash under the index prefix.
package memory

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/qacache/internal/db"
	"github.com/kailas-cloud/qacache/internal/db/vector"
)

var _ db.Store = (*Store)(nil)

type kvEntry struct {
	value    []byte
	expireAt time.Time // zero means no expiry
}

// Store keeps hashes, strings and index definitions in maps guarded by one RWMutex.
type Store struct {
	mu      sync.RWMutex
	hashes  map[string]map[string]string
	order   []string // hash keys in insertion order, for stable ties
	kv      map[string]kvEntry
	indexes map[string]*db.IndexDefinition
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		hashes:  make(map[string]map[string]string),
		kv:      make(map[string]kvEntry),
		indexes: make(map[string]*db.IndexDefinition),
		now:     time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// HSet merges fields into the hash at key.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
		s.order = append(s.order, key)
	}
	maps.Copy(h, fields)
	return nil
}

// HGetAll returns a copy of the hash at key.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return maps.Clone(h), nil
}

// Exists reports whether key holds a hash or a live string.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.hashes[key]; ok {
		return true, nil
	}
	_, ok := s.liveKV(key)
	return ok, nil
}

// Get returns a live string value.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.liveKV(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// SetWithTTL stores value with an expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kv[key] = kvEntry{value: append([]byte(nil), value...), expireAt: s.now().Add(ttl)}
	return nil
}

// IncrBy increments the integer stored at key, creating it at zero.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _ := s.liveKV(key)
	var cur int64
	if len(e.value) > 0 {
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return &db.Error{Op: db.OpIncrBy, Err: err}
		}
		cur = n
	}
	e.value = []byte(strconv.FormatInt(cur+val, 10))
	s.kv[key] = e
	return nil
}

// Expire sets a TTL on a string key. With nx an existing TTL is kept.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveKV(key)
	if !ok || (nx && !e.expireAt.IsZero()) {
		return nil
	}
	e.expireAt = s.now().Add(ttl)
	s.kv[key] = e
	return nil
}

// liveKV returns the entry at key unless it expired. Callers hold the lock.
func (s *Store) liveKV(key string) (kvEntry, bool) {
	e, ok := s.kv[key]
	if !ok {
		return kvEntry{}, false
	}
	if !e.expireAt.IsZero() && !s.now().Before(e.expireAt) {
		return kvEntry{}, false
	}
	return e, true
}

// CreateIndex registers an index definition.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	s.indexes[def.Name] = &cp
	return nil
}

// IndexExists reports whether an index was created.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.indexes[name]
	return ok, nil
}

// SearchKNN scores every hash under the index prefix against q.Vector.
func (s *Store) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.K <= 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: errKPositive}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.indexes[q.IndexName]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	vf, _ := def.VectorField()

	type scored struct {
		key   string
		score float64
	}
	var hits []scored
	for _, key := range s.order {
		if !strings.HasPrefix(key, def.Prefix) {
			continue
		}
		stored := vector.Decode(s.hashes[key][vf.Name])
		if len(stored) == 0 {
			continue
		}
		hits = append(hits, scored{key: key, score: vector.Cosine(q.Vector, stored)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	res := &db.SearchResult{Total: len(hits)}
	for _, h := range hits[:min(q.K, len(hits))] {
		res.Entries = append(res.Entries, db.SearchEntry{
			Key:    h.key,
			Score:  h.score,
			Fields: project(s.hashes[h.key], q.ReturnFields),
		})
	}
	return res, nil
}

// SearchCount counts hashes under the index prefix.
func (s *Store) SearchCount(_ context.Context, index string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.indexes[index]
	if !ok {
		return 0, db.ErrIndexNotFound
	}
	n := 0
	for _, key := range s.order {
		if strings.HasPrefix(key, def.Prefix) {
			n++
		}
	}
	return n, nil
}

func project(h map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return maps.Clone(h)
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := h[f]; ok {
			out[f] = v
		}
	}
	return out
}
