package runstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
)

// InMemoryStore is a volatile Store implementation keeping serialized
// snapshots in a process local map. It is safe for concurrent access and
// best suited for tests or single-process deployments. Snapshots are stored
// as JSON, so loaded states are always independent, undecided copies.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]storedState
}

type storedState struct {
	agentName string
	payload   []byte
}

// NewInMemoryStore constructs an empty in-memory run state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]storedState)}
}

// Save implements Store.
func (s *InMemoryStore) Save(_ context.Context, state *core.PausedRunState) (string, error) {
	if state == nil {
		return "", fmt.Errorf("run state must not be nil")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("serializing run state: %w", err)
	}

	id := core.NewID()
	s.mu.Lock()
	s.states[id] = storedState{agentName: state.AgentName, payload: payload}
	s.mu.Unlock()

	return id, nil
}

// Load implements Store.
func (s *InMemoryStore) Load(_ context.Context, id string) (*core.PausedRunState, error) {
	s.mu.RLock()
	stored, ok := s.states[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var state core.PausedRunState
	if err := json.Unmarshal(stored.payload, &state); err != nil {
		return nil, fmt.Errorf("deserializing run state %s: %w", id, err)
	}
	return &state, nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()
	return nil
}

// List implements Store.
func (s *InMemoryStore) List(_ context.Context, agentName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id, stored := range s.states {
		if agentName == "" || stored.agentName == agentName {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
