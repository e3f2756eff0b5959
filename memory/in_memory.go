package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// storedMemory is the internal representation persisted by InMemoryStore.
type storedMemory struct {
	id       string
	content  string
	metadata map[string]any
}

// InMemoryStore is a naive process-local Store. It offers:
//  1. Scope local key/value facts (PutFacts / Facts)
//  2. Append-only stored memories with substring Recall
//
// Concurrency: protected by RWMutex.
// Recall: linear scan with substring matching (case insensitive) assigning a
// constant score of 1.0 to every hit, preserving insertion order. Suitable for
// tests and demos; swap for a vector index for production retrieval.
type InMemoryStore struct {
	mu      sync.RWMutex
	facts   map[string]map[string]any // scope -> key -> value
	entries map[string][]storedMemory // scope -> stored memories in insertion order
	nextID  int
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		facts:   make(map[string]map[string]any),
		entries: make(map[string][]storedMemory),
	}
}

// Remember appends a memory entry and returns its generated id.
func (m *InMemoryStore) Remember(_ context.Context, scope, content string, metadata map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := fmt.Sprintf("mem_%d", m.nextID)
	m.nextID++

	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	m.entries[scope] = append(m.entries[scope], storedMemory{id: id, content: content, metadata: md})
	return id, nil
}

// Recall performs a case insensitive substring match over stored memories.
// Results keep insertion order up to the provided limit.
func (m *InMemoryStore) Recall(_ context.Context, scope, query string, limit int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	needle := strings.ToLower(query)
	results := make([]SearchResult, 0, limit)
	for _, stored := range m.entries[scope] {
		if len(results) >= limit {
			break
		}
		if query != "" && !strings.Contains(strings.ToLower(stored.content), needle) {
			continue
		}
		md := make(map[string]any, len(stored.metadata))
		for k, v := range stored.metadata {
			md[k] = v
		}
		results = append(results, SearchResult{ID: stored.id, Content: stored.content, Score: 1.0, Metadata: md})
	}
	return results, nil
}

// Forget removes a stored memory by id.
func (m *InMemoryStore) Forget(_ context.Context, scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.entries[scope]
	for i, stored := range entries {
		if stored.id == id {
			m.entries[scope] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("memory %q not found in scope %q", id, scope)
}

// PutFacts merges the provided facts into the scope.
func (m *InMemoryStore) PutFacts(_ context.Context, scope string, facts map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.facts[scope]; !exists {
		m.facts[scope] = make(map[string]any)
	}
	for k, v := range facts {
		m.facts[scope][k] = v
	}
	return nil
}

// Facts returns a shallow copy of the key/value facts for the scope.
func (m *InMemoryStore) Facts(_ context.Context, scope string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scoped, exists := m.facts[scope]
	if !exists {
		return make(map[string]any), nil
	}
	result := make(map[string]any, len(scoped))
	for k, v := range scoped {
		result[k] = v
	}
	return result, nil
}
