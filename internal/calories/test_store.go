package calories

import (
	"context"
	"errors"
	"sync"
)

// TestStore is an in-memory Store used in unit and dev testing.
type TestStore struct {
	mutex  sync.Mutex
	states map[string]LedgerState

	// SetErr, when set, is returned by every Set call
	SetErr error
}

func NewTestStore() *TestStore {
	return &TestStore{
		states: make(map[string]LedgerState),
	}
}

func (s *TestStore) Get(_ context.Context, userID string) (*LedgerState, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *TestStore) Set(_ context.Context, userID string, state LedgerState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}

	s.states[userID] = state
	return nil
}

var errTestStoreSet = errors.New("test store: set failed")
