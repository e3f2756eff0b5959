package core

// RunResult is the terminal outcome of one agent invocation. Exactly one of
// the four variants holds: success (Output set, Err nil, Paused nil),
// handoff (HandoffAgent set, inner output folded into Output), error (Err
// set) or paused (Paused set). Callers must check the discriminant methods
// before reading Output.
type RunResult struct {
	// Output is the final text produced by the run (or the handoff target).
	Output string

	// HandoffAgent names the agent control was transferred to, if any.
	HandoffAgent string

	// Err is the failure that terminated the run, if any.
	Err error

	// Paused is the externalized snapshot of a run waiting for approval.
	Paused *PausedRunState

	// Context is the conversation snapshot at termination.
	Context *Context

	// ToolExecutions records every tool call of this run, in call order.
	ToolExecutions []ToolExecution

	// TurnsUsed is the number of model calls consumed.
	TurnsUsed int

	// Related carries secondary results from composite invocations, e.g.
	// the non-primary members of a parallel group.
	Related []*RunResult
}

// Success builds a successful result.
func Success(output string, convo *Context, execs []ToolExecution, turns int) *RunResult {
	return &RunResult{Output: output, Context: convo, ToolExecutions: execs, TurnsUsed: turns}
}

// ErrorResult builds a failed result preserving the context so far.
func ErrorResult(err error, convo *Context, turns int) *RunResult {
	return &RunResult{Err: err, Context: convo, TurnsUsed: turns}
}

// PausedResult wraps a PausedRunState for human-in-the-loop approval.
func PausedResult(state *PausedRunState, convo *Context) *RunResult {
	return &RunResult{Paused: state, Context: convo, TurnsUsed: convo.TurnCount()}
}

// HandoffResult folds the handoff target's result into one carrying the
// originating context and the target's name.
func HandoffResult(target string, inner *RunResult, convo *Context) *RunResult {
	return &RunResult{
		Output:         inner.Output,
		HandoffAgent:   target,
		Err:            inner.Err,
		Context:        convo,
		ToolExecutions: inner.ToolExecutions,
		TurnsUsed:      inner.TurnsUsed,
	}
}

// Composite marks primary as the headline result and attaches the rest as
// related, preserving their order.
func Composite(primary *RunResult, related []*RunResult) *RunResult {
	cp := *primary
	cp.Related = related
	return &cp
}

// IsSuccess reports whether the run completed without error or pause.
func (r *RunResult) IsSuccess() bool { return r.Err == nil && r.Paused == nil }

// IsError reports whether the run terminated with an error.
func (r *RunResult) IsError() bool { return r.Err != nil }

// IsPaused reports whether the run is waiting for approval.
func (r *RunResult) IsPaused() bool { return r.Paused != nil }

// IsHandoff reports whether control was transferred to another agent.
func (r *RunResult) IsHandoff() bool { return r.HandoffAgent != "" }
