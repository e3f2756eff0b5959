package tool

import (
	"fmt"

	"github.com/hupe1980/agentkit/core"
)

// StateTool lets models read and write conversation state through function
// calls. State written here survives into child contexts created with state
// sharing enabled, so it works as a scratchpad across delegations.
type StateTool struct {
	name        string
	description string
}

// NewStateTool creates the conversation state tool.
func NewStateTool() *StateTool {
	return &StateTool{
		name: "conversation_state",
		description: "Reads and writes key/value state attached to the current conversation. " +
			"Supports operations: get, set, delete, list.",
	}
}

// Name returns the tool identifier.
func (t *StateTool) Name() string {
	return t.name
}

// Description returns the tool description.
func (t *StateTool) Description() string {
	return t.description
}

// Parameters returns the JSON schema for tool parameters.
func (t *StateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"enum":        []any{"get", "set", "delete", "list"},
				"description": "The state operation to perform",
			},
			"key": map[string]any{
				"type":        "string",
				"description": "State key for get/set/delete operations",
			},
			"value": map[string]any{
				"description": "Value for set operations (any JSON type)",
			},
		},
		"required": []string{"operation"},
	}
}

// RequiresConfirmation reports that state access never pauses a run.
func (t *StateTool) RequiresConfirmation() bool { return false }

// Call dispatches the requested state operation against the conversation.
func (t *StateTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	operation, _ := args["operation"].(string)
	key, _ := args["key"].(string)

	switch operation {
	case "get":
		if key == "" {
			return nil, NewToolError(t.name, "operation 'get' requires a key", "VALIDATION_ERROR")
		}
		value, ok := toolCtx.Conversation.State(key)
		if !ok {
			return map[string]any{"found": false}, nil
		}
		return map[string]any{"found": true, "value": value}, nil

	case "set":
		if key == "" {
			return nil, NewToolError(t.name, "operation 'set' requires a key", "VALIDATION_ERROR")
		}
		value, ok := args["value"]
		if !ok {
			return nil, NewToolError(t.name, "operation 'set' requires a value", "VALIDATION_ERROR")
		}
		toolCtx.Conversation.SetState(key, value)
		return map[string]any{"stored": true, "key": key}, nil

	case "delete":
		if key == "" {
			return nil, NewToolError(t.name, "operation 'delete' requires a key", "VALIDATION_ERROR")
		}
		toolCtx.Conversation.SetState(key, nil)
		return map[string]any{"deleted": true, "key": key}, nil

	case "list":
		snapshot := toolCtx.Conversation.StateSnapshot()
		keys := make([]string, 0, len(snapshot))
		for k := range snapshot {
			keys = append(keys, k)
		}
		return map[string]any{"keys": keys}, nil

	default:
		return nil, NewToolError(t.name, fmt.Sprintf("unknown operation %q", operation), "VALIDATION_ERROR")
	}
}
