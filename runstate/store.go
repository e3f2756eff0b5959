package runstate

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentkit/core"
)

// ErrNotFound is returned when no snapshot exists for the given id.
var ErrNotFound = fmt.Errorf("run state not found")

// Store persists paused run snapshots. Implementations must serialize the
// snapshot on Save so the stored copy is independent of the caller's state,
// and must return undecided states from Load regardless of any resolution
// applied before saving.
type Store interface {
	// Save persists the snapshot and returns its storage id.
	Save(ctx context.Context, state *core.PausedRunState) (string, error)

	// Load retrieves a snapshot by id, or ErrNotFound.
	Load(ctx context.Context, id string) (*core.PausedRunState, error)

	// Delete removes a snapshot. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored snapshots for the given agent
	// name; an empty name matches every agent.
	List(ctx context.Context, agentName string) ([]string, error)
}
