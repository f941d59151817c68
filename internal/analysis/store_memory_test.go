package analysis

import (
	"context"
	"sync"
)

// MemoryStateStore keeps State snapshots in process memory. Sessions must be
// opened before use; Close tears one down so late completions are discarded.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]State
}

// NewMemoryStateStore constructs an empty store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]State)}
}

// Open registers a session in the idle phase. Opening an existing session is
// a no-op.
func (s *MemoryStateStore) Open(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[sessionID]; !ok {
		s.states[sessionID] = State{}
	}
}

// Close forgets a session.
func (s *MemoryStateStore) Close(sessionID string) {
	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()
}

// Get returns the current snapshot.
func (s *MemoryStateStore) Get(sessionID string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[sessionID]
	return st, ok
}

func (s *MemoryStateStore) UpdateState(ctx context.Context, sessionID string, fn func(State) (State, error)) (State, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.states[sessionID]
	if !ok {
		return State{}, ErrSessionGone
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	s.states[sessionID] = next
	return next, nil
}
