package agent

import (
	"context"

	"github.com/hupe1980/agentkit/core"
)

// Interactable is the minimal surface orchestration primitives require from
// an agent: a stable name and a synchronous run. Agent, Group, Network,
// Router and Supervisor-built agents all satisfy it, so every primitive can
// host every other one.
type Interactable interface {
	// Name returns the agent's unique name within its composition.
	Name() string

	// Interact runs the agent against the conversation until it produces a
	// final result, fails or pauses for tool approval.
	Interact(ctx context.Context, convo *core.Context) *core.RunResult
}

// Streamer is implemented by agents that can surface run progress as an
// ordered event channel in addition to the synchronous Interact.
type Streamer interface {
	Interactable

	// InteractStream runs the agent and emits events until a terminal event
	// (complete, paused or error) is sent, after which the channel is closed.
	InteractStream(ctx context.Context, convo *core.Context, optFns ...func(o *StreamOptions)) <-chan core.Event
}
