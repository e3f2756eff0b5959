package agent

import (
	"fmt"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// SubAgentOptions configures how a sub-agent tool derives the child context.
type SubAgentOptions struct {
	// Description overrides the generated tool description.
	Description string

	// ShareState copies conversation state into the child and merges changes
	// back after the child run.
	ShareState bool

	// ShareHistory gives the child the full parent history instead of a
	// fresh conversation containing only the request.
	ShareHistory bool
}

// WithShareState propagates conversation state into and out of the child run.
func WithShareState() func(o *SubAgentOptions) {
	return func(o *SubAgentOptions) { o.ShareState = true }
}

// WithShareHistory lets the child see the full parent history.
func WithShareHistory() func(o *SubAgentOptions) {
	return func(o *SubAgentOptions) { o.ShareHistory = true }
}

// subAgentTool exposes a whole agent as a callable tool named ask_<agent>.
// This is the delegation building block: a supervisor's workers are plain
// sub-agent tools, and since workers can themselves be supervisors the
// pattern recurses into arbitrary trees.
type subAgentTool struct {
	member       Interactable
	description  string
	shareState   bool
	shareHistory bool
}

// NewSubAgentTool wraps an agent as a tool the hosting model can call with a
// request string. The child runs on a context derived from the conversation
// according to the sharing options.
func NewSubAgentTool(member Interactable, optFns ...func(o *SubAgentOptions)) tool.Tool {
	opts := SubAgentOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Delegate a task to the %s agent and return its answer.", member.Name())
		if d, ok := member.(interface{ Description() string }); ok && d.Description() != "" {
			description = fmt.Sprintf("Delegate a task to the %s agent. %s", member.Name(), d.Description())
		}
	}

	return &subAgentTool{
		member:       member,
		description:  description,
		shareState:   opts.ShareState,
		shareHistory: opts.ShareHistory,
	}
}

func (t *subAgentTool) Name() string { return "ask_" + t.member.Name() }

func (t *subAgentTool) Description() string { return t.description }

func (t *subAgentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"request": map[string]any{"type": "string", "description": "The task or question for the agent"},
		},
		"required": []string{"request"},
	}
}

func (t *subAgentTool) RequiresConfirmation() bool { return false }

func (t *subAgentTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	request, _ := args["request"].(string)
	if request == "" {
		return nil, tool.NewToolError(t.Name(), "request must not be empty", "VALIDATION_ERROR")
	}

	child := toolCtx.Conversation.Child(t.shareState, t.shareHistory, request)
	result := t.member.Interact(toolCtx.Context, child)

	switch {
	case result.IsPaused():
		return nil, tool.NewToolError(t.Name(), fmt.Sprintf("sub-agent %s paused for approval; nested pauses are not supported", t.member.Name()), "SUBAGENT_PAUSED")
	case result.IsError():
		return nil, tool.NewToolError(t.Name(), result.Err.Error(), "SUBAGENT_ERROR")
	}

	if t.shareState {
		for k, v := range child.StateSnapshot() {
			toolCtx.Conversation.SetState(k, v)
		}
	}

	return result.Output, nil
}
