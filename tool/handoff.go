package tool

import (
	"fmt"

	"github.com/hupe1980/agentkit/core"
)

// HandoffMarker is implemented by tools whose invocation transfers control of
// the conversation to another agent. The run loop checks for it after each
// model response; the marked tool itself never executes.
type HandoffMarker interface {
	Tool

	// HandoffTarget returns the name of the agent that should take over.
	HandoffTarget() string
}

// handoffTool advertises a named peer to the model as transfer_to_<name>.
type handoffTool struct {
	target      string
	description string
}

// NewHandoffTool constructs a handoff declaration for the named target agent.
// The description defaults to a generic transfer hint when empty.
func NewHandoffTool(target, description string) Tool {
	if description == "" {
		description = fmt.Sprintf("Transfer the conversation to the %s agent when it is better suited to handle the request.", target)
	}
	return &handoffTool{target: target, description: description}
}

func (t *handoffTool) Name() string { return "transfer_to_" + t.target }

func (t *handoffTool) Description() string { return t.description }

func (t *handoffTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{"type": "string", "description": "Why the transfer is needed"},
		},
	}
}

func (t *handoffTool) RequiresConfirmation() bool { return false }

func (t *handoffTool) HandoffTarget() string { return t.target }

// Call is only reached when a run loop fails to intercept the handoff, which
// would be a wiring bug in the caller.
func (t *handoffTool) Call(_ *core.ToolContext, _ map[string]any) (any, error) {
	return nil, fmt.Errorf("handoff to %q must be handled by the run loop, not executed", t.target)
}
