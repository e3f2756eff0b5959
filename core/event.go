package core

import "time"

// EventType discriminates the closed set of streaming event variants.
type EventType string

const (
	// EventTurnStart signals the beginning of a model call.
	EventTurnStart EventType = "turn_start"
	// EventTextDelta carries an incremental chunk of assistant text.
	EventTextDelta EventType = "text_delta"
	// EventToolPending signals a tool call awaiting execution or approval.
	EventToolPending EventType = "tool_pending"
	// EventToolExecuted carries a completed tool execution record.
	EventToolExecuted EventType = "tool_executed"
	// EventHandoff signals a transfer of control to another agent.
	EventHandoff EventType = "handoff"
	// EventPaused carries the externalized run state; terminal for the session.
	EventPaused EventType = "paused"
	// EventComplete carries the final RunResult; terminal.
	EventComplete EventType = "complete"
	// EventError carries a fatal error; terminal.
	EventError EventType = "error"
)

// Event is one entry of a streaming session's ordered event channel. After
// emission it should be treated as immutable. Callers consume events by
// ranging over the channel; the channel closes after a terminal event
// (paused, complete or error).
type Event struct {
	ID        string
	Type      EventType
	Agent     string
	Timestamp time.Time

	// Turn is set on turn_start events.
	Turn int

	// TextDelta is set on text_delta events.
	TextDelta string

	// Parsed optionally carries the best-effort structured decode of the
	// accumulated text, when partial parsing is enabled.
	Parsed map[string]any

	// Call is set on tool_pending and handoff events.
	Call *ToolCall

	// Execution is set on tool_executed events.
	Execution *ToolExecution

	// State is set on paused events.
	State *PausedRunState

	// Result is set on complete events.
	Result *RunResult

	// Err is set on error events.
	Err error
}

// NewEvent creates a bare event authored by the named agent.
func NewEvent(agent string, typ EventType) Event {
	return Event{ID: NewID(), Type: typ, Agent: agent, Timestamp: time.Now().UTC()}
}

// IsTerminal reports whether no further events follow on the channel.
func (e Event) IsTerminal() bool {
	return e.Type == EventPaused || e.Type == EventComplete || e.Type == EventError
}
