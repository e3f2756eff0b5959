// Package memory provides long-lived recall storage for agents. Memories are
// scoped by an arbitrary string key (usually a conversation trace id) so
// independent runs never see each other's entries. The package also exposes
// remember/recall function tools that give models direct access to a Store.
package memory

import "context"

// SearchResult is a single scored hit returned by Store.Recall.
type SearchResult struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Store persists memories and key/value facts per scope.
//
// Implementations must be safe for concurrent use; orchestration primitives
// share one store across parallel agent runs.
type Store interface {
	// Remember appends a memory entry and returns its id.
	Remember(ctx context.Context, scope, content string, metadata map[string]any) (string, error)

	// Recall searches stored memories, returning up to limit scored results.
	Recall(ctx context.Context, scope, query string, limit int) ([]SearchResult, error)

	// Forget removes a stored memory by id.
	Forget(ctx context.Context, scope, id string) error

	// PutFacts merges key/value facts into the scope.
	PutFacts(ctx context.Context, scope string, facts map[string]any) error

	// Facts returns a copy of the key/value facts for the scope.
	Facts(ctx context.Context, scope string) (map[string]any, error)
}
