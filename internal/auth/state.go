package auth

import (
	"sync"
	"time"
)

// stateStore holds single-use OAuth state values. Each state may carry the
// principal that started the flow.
type stateStore struct {
	items map[string]stateEntry
	mu    sync.Mutex
}

type stateEntry struct {
	userID string
	exp    time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]stateEntry)}
}

func (s *stateStore) put(state, userID string, exp time.Time) {
	now := time.Now()
	s.mu.Lock()
	for k, v := range s.items {
		if now.After(v.exp) {
			delete(s.items, k)
		}
	}
	s.items[state] = stateEntry{userID: userID, exp: exp}
	s.mu.Unlock()
}

func (s *stateStore) consume(state string) (string, bool) {
	s.mu.Lock()
	entry, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.exp) {
		return "", false
	}
	return entry.userID, true
}
