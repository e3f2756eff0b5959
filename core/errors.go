package core

import "fmt"

// GuardrailStage distinguishes input from output guardrail failures.
type GuardrailStage string

const (
	// GuardrailInput marks a failure before the first model call.
	GuardrailInput GuardrailStage = "input"
	// GuardrailOutput marks a failure after a model call.
	GuardrailOutput GuardrailStage = "output"
)

// GuardrailError reports a guardrail validation failure. An input-stage
// failure means no model call was made; an output-stage failure carries the
// context as of the failed attempt.
type GuardrailError struct {
	Stage  GuardrailStage
	Name   string
	Reason string
}

func (e *GuardrailError) Error() string {
	return fmt.Sprintf("%s guardrail %q failed: %s", e.Stage, e.Name, e.Reason)
}

// TurnLimitError reports that a run exhausted its allowed model calls.
type TurnLimitError struct {
	Agent    string
	MaxTurns int
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("agent %q exceeded max turns (%d)", e.Agent, e.MaxTurns)
}

// TransportError wraps a failed model call. The run terminates but the
// context is preserved up to the failure point.
type TransportError struct {
	Agent string
	Turn  int
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("agent %q model call failed on turn %d: %v", e.Agent, e.Turn, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResumeStateError reports an illegal resume: the state was not pending
// approval, was never resolved, or was consumed twice. This is a caller
// error and always fatal.
type ResumeStateError struct {
	Reason string
}

func (e *ResumeStateError) Error() string {
	return fmt.Sprintf("invalid resume state: %s", e.Reason)
}

// HandoffError reports a failure while auto-executing a handoff target.
type HandoffError struct {
	Agent  string
	Target string
	Err    error
}

func (e *HandoffError) Error() string {
	return fmt.Sprintf("agent %q handoff to %q failed: %v", e.Agent, e.Target, e.Err)
}

func (e *HandoffError) Unwrap() error { return e.Err }
