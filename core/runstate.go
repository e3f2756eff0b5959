package core

import "errors"

// PausedRunState is the serializable snapshot of an agent run paused for
// tool approval. It captures everything needed to resume later, possibly in
// a different process: agent identity, the conversation context at pause
// time, the single pending tool call, prior tool executions and the turn
// count.
//
// The resolution (Approve/Reject) is the only legal mutation; it is held in
// memory only and never serialized, so a state loaded from storage is always
// undecided. Resume consumes the resolution exactly once.
type PausedRunState struct {
	AgentName      string          `json:"agent_name"`
	Context        *Context        `json:"context"`
	PendingCall    ToolCall        `json:"pending_call"`
	ToolExecutions []ToolExecution `json:"tool_executions"`
	TurnCount      int             `json:"turn_count"`

	resolution *approval
}

type approval struct {
	approved       bool
	outputOrReason string
}

// NewPausedRunState snapshots a run pending tool approval.
func NewPausedRunState(agentName string, convo *Context, pending ToolCall, execs []ToolExecution, turn int) *PausedRunState {
	copied := make([]ToolExecution, len(execs))
	copy(copied, execs)
	return &PausedRunState{
		AgentName:      agentName,
		Context:        convo,
		PendingCall:    pending,
		ToolExecutions: copied,
		TurnCount:      turn,
	}
}

// Approve resolves the pending call with the given tool output. Call this
// after user approval, then pass the state to Agent.Resume.
func (s *PausedRunState) Approve(output string) error {
	if s.resolution != nil {
		return errors.New("pending tool call already resolved")
	}
	s.resolution = &approval{approved: true, outputOrReason: output}
	return nil
}

// Reject resolves the pending call as denied. The reason is surfaced to the
// model as the tool's error output; empty defaults to a generic message.
func (s *PausedRunState) Reject(reason string) error {
	if s.resolution != nil {
		return errors.New("pending tool call already resolved")
	}
	if reason == "" {
		reason = "Tool execution was rejected by user"
	}
	s.resolution = &approval{approved: false, outputOrReason: reason}
	return nil
}

// Resolved reports whether Approve or Reject has been called.
func (s *PausedRunState) Resolved() bool { return s.resolution != nil }

// Consume yields the resolution and invalidates it so a state cannot be
// resumed twice. Intended for the agent package; exposed for custom engines.
func (s *PausedRunState) Consume() (approved bool, outputOrReason string, err error) {
	if s.resolution == nil {
		return false, "", &ResumeStateError{Reason: "call Approve or Reject first"}
	}
	res := s.resolution
	s.resolution = nil
	return res.approved, res.outputOrReason, nil
}
