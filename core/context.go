package core

import (
	"encoding/json"
	"maps"
)

// Context holds conversation state for an agent interaction: the ordered
// message/tool-result history, a key/value store for user-defined state, the
// turn counter and optional trace correlation identifiers.
//
// A Context is owned exclusively by the caller and passed per run, which
// keeps agents themselves stateless and reusable. It is NOT safe for
// concurrent use; orchestration primitives never share one by reference,
// every fan-out path copies via Copy or Child.
type Context struct {
	history   []Item
	state     map[string]any
	turnCount int

	parentTraceID string
	parentSpanID  string
	requestID     string
}

// NewContext creates an empty conversation context.
func NewContext() *Context {
	return &Context{state: map[string]any{}}
}

// NewContextWithHistory creates a context pre-populated with history, e.g.
// when resuming a stored conversation.
func NewContextWithHistory(history []Item) *Context {
	c := NewContext()
	c.history = append(c.history, history...)
	return c
}

// AddItem appends a history item. History is append-only; items are never
// reordered or removed.
func (c *Context) AddItem(item Item) *Context {
	c.history = append(c.history, item)
	return c
}

// AddUserMessage appends a user text message.
func (c *Context) AddUserMessage(text string) *Context {
	return c.AddItem(UserMessage(text))
}

// AddAssistantMessage appends an assistant text message.
func (c *Context) AddAssistantMessage(text string) *Context {
	return c.AddItem(AssistantMessage(text))
}

// AddToolResult appends a tool result, preserving the call correlation id.
func (c *Context) AddToolResult(out ToolOutput) *Context {
	return c.AddItem(FunctionOutputItem(out))
}

// History returns a copy of the conversation history.
func (c *Context) History() []Item {
	out := make([]Item, len(c.history))
	copy(out, c.history)
	return out
}

// HistoryLen returns the number of history items.
func (c *Context) HistoryLen() int { return len(c.history) }

// SetState stores a user-defined value. Storing nil removes the key; a
// missing key and a cleared key are indistinguishable to callers.
func (c *Context) SetState(key string, value any) *Context {
	if value == nil {
		delete(c.state, key)
	} else {
		c.state[key] = value
	}
	return c
}

// State returns a stored value and whether it was present.
func (c *Context) State(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// StateSnapshot returns a shallow copy of all state entries.
func (c *Context) StateSnapshot() map[string]any {
	out := make(map[string]any, len(c.state))
	maps.Copy(out, c.state)
	return out
}

// IncrementTurn advances the turn counter and returns the new value. One
// turn corresponds to one model call; the counter strictly increases within
// a run and survives pause/resume.
func (c *Context) IncrementTurn() int {
	c.turnCount++
	return c.turnCount
}

// TurnCount returns the number of model calls made with this context.
func (c *Context) TurnCount() int { return c.turnCount }

// Copy produces a fully independent clone: history, state, turn counter and
// trace identifiers. Used by parallel fan-out so members cannot interfere.
func (c *Context) Copy() *Context {
	cp := &Context{
		history:       make([]Item, len(c.history)),
		state:         make(map[string]any, len(c.state)),
		turnCount:     c.turnCount,
		parentTraceID: c.parentTraceID,
		parentSpanID:  c.parentSpanID,
		requestID:     c.requestID,
	}
	copy(cp.history, c.history)
	maps.Copy(cp.state, c.state)
	return cp
}

// Fork clones the context for a child agent run under a new parent span,
// keeping the trace id so nested work correlates to the same trace.
func (c *Context) Fork(childSpanID string) *Context {
	cp := c.Copy()
	cp.parentSpanID = childSpanID
	return cp
}

// Child derives a context for a nested sub-agent according to the sharing
// configuration: shareHistory forks the full context, shareState copies only
// the state map ("shared state, fresh history"), and neither yields a fully
// isolated context. The request text is appended as the child's user message.
func (c *Context) Child(shareState, shareHistory bool, request string) *Context {
	var child *Context
	switch {
	case shareHistory:
		child = c.Fork(NewID())
	case shareState:
		child = NewContext()
		maps.Copy(child.state, c.state)
		child.parentTraceID = c.parentTraceID
		child.parentSpanID = c.parentSpanID
		child.requestID = c.requestID
	default:
		child = NewContext()
	}
	if request != "" {
		child.AddUserMessage(request)
	}
	return child
}

// WithTrace sets the trace correlation identifiers.
func (c *Context) WithTrace(parentTraceID, parentSpanID string) *Context {
	c.parentTraceID = parentTraceID
	c.parentSpanID = parentSpanID
	return c
}

// WithRequestID sets the request correlation identifier.
func (c *Context) WithRequestID(id string) *Context {
	c.requestID = id
	return c
}

// HasTrace reports whether trace identifiers are set.
func (c *Context) HasTrace() bool { return c.parentTraceID != "" }

// EnsureTrace generates trace identifiers if none are set yet.
func (c *Context) EnsureTrace() *Context {
	if !c.HasTrace() {
		c.WithTrace(NewID(), NewID())
	}
	return c
}

// TraceID returns the parent trace identifier, if any.
func (c *Context) TraceID() string { return c.parentTraceID }

// SpanID returns the parent span identifier, if any.
func (c *Context) SpanID() string { return c.parentSpanID }

// RequestID returns the request identifier, if any.
func (c *Context) RequestID() string { return c.requestID }

// LastUserText walks the history backwards and returns the text of the most
// recent user message.
func (c *Context) LastUserText() (string, bool) {
	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].IsUserMessage() {
			return c.history[i].Text, true
		}
	}
	return "", false
}

// contextSnapshot is the serialized form of a Context.
type contextSnapshot struct {
	History       []Item         `json:"history"`
	State         map[string]any `json:"state,omitempty"`
	TurnCount     int            `json:"turn_count"`
	ParentTraceID string         `json:"parent_trace_id,omitempty"`
	ParentSpanID  string         `json:"parent_span_id,omitempty"`
	RequestID     string         `json:"request_id,omitempty"`
}

// MarshalJSON serializes the context so PausedRunState round-trips through
// any JSON-compatible store.
func (c *Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(contextSnapshot{
		History:       c.history,
		State:         c.state,
		TurnCount:     c.turnCount,
		ParentTraceID: c.parentTraceID,
		ParentSpanID:  c.parentSpanID,
		RequestID:     c.requestID,
	})
}

// UnmarshalJSON restores a serialized context.
func (c *Context) UnmarshalJSON(data []byte) error {
	var snap contextSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	c.history = snap.History
	c.state = snap.State
	if c.state == nil {
		c.state = map[string]any{}
	}
	c.turnCount = snap.TurnCount
	c.parentTraceID = snap.ParentTraceID
	c.parentSpanID = snap.ParentSpanID
	c.requestID = snap.RequestID
	return nil
}
