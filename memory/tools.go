package memory

import (
	"fmt"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// scopeFor derives the memory scope from the conversation trace, creating a
// trace when the conversation has none yet. Child contexts that share a trace
// therefore also share memories.
func scopeFor(convo *core.Context) string {
	convo.EnsureTrace()
	return convo.TraceID()
}

// NewRememberTool exposes Store.Remember to models as a function call.
func NewRememberTool(store Store) tool.Tool {
	return tool.NewFunctionTool(
		"remember",
		"Store a piece of information for later recall in this conversation.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{"type": "string", "description": "The information to remember"},
				"topic":   map[string]any{"type": "string", "description": "Optional topic label"},
			},
			"required": []string{"content"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			content, _ := args["content"].(string)
			if content == "" {
				return nil, fmt.Errorf("content must not be empty")
			}
			metadata := map[string]any{}
			if topic, ok := args["topic"].(string); ok && topic != "" {
				metadata["topic"] = topic
			}
			id, err := store.Remember(tc.Context, scopeFor(tc.Conversation), content, metadata)
			if err != nil {
				return nil, err
			}
			return map[string]any{"stored": true, "id": id}, nil
		},
	)
}

// NewRecallTool exposes Store.Recall to models as a function call.
func NewRecallTool(store Store) tool.Tool {
	return tool.NewFunctionTool(
		"recall",
		"Search previously remembered information in this conversation.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Text to search for"},
				"limit": map[string]any{"type": "integer", "description": "Maximum number of results"},
			},
			"required": []string{"query"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			limit := 5
			if raw, ok := args["limit"].(float64); ok && raw > 0 {
				limit = int(raw)
			}
			results, err := store.Recall(tc.Context, scopeFor(tc.Conversation), query, limit)
			if err != nil {
				return nil, err
			}
			return map[string]any{"results": results, "count": len(results)}, nil
		},
	)
}
