package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-seo-web/internal/workflow"
)

// MemoryStore keeps sessions in process memory with a sliding TTL.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*Session
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore constructs a MemoryStore. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		items: make(map[string]*Session),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	_ = ctx
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Draft:     workflow.Draft{Mode: workflow.ModePaste},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.sweepLocked(now)
	s.items[sess.ID] = sess
	s.mu.Unlock()
	return clone(sess), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	return clone(sess), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	work := clone(sess)
	if err := fn(work); err != nil {
		return clone(sess), err
	}
	work.ID = sess.ID
	work.ExpiresAt = s.now().Add(s.ttl)
	s.items[id] = work
	return clone(work), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// liveLocked returns the session if present and unexpired, extending its TTL.
func (s *MemoryStore) liveLocked(id string) (*Session, error) {
	sess, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.After(sess.ExpiresAt) {
		delete(s.items, id)
		return nil, ErrNotFound
	}
	sess.ExpiresAt = now.Add(s.ttl)
	return sess, nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for id, sess := range s.items {
		if now.After(sess.ExpiresAt) {
			delete(s.items, id)
		}
	}
}

// clone deep-copies a session through its JSON form so callers never share
// mutable state with the store.
func clone(sess *Session) *Session {
	data, err := json.Marshal(sess)
	if err != nil {
		cp := *sess
		return &cp
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		cp := *sess
		return &cp
	}
	return &out
}
