package agent

import (
	"context"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/partialjson"
)

// Decision is the verdict of an approval handler for a pending tool call.
type Decision int

const (
	// DecisionApprove lets the tool call proceed.
	DecisionApprove Decision = iota
	// DecisionReject blocks the tool call.
	DecisionReject
)

// Approval carries an approval handler's verdict. An approved call may
// optionally substitute Output for the tool's real result, in which case the
// tool is never executed. A rejected call records Reason as an error result
// visible to the model.
type Approval struct {
	Decision Decision
	Output   string
	Reason   string
}

// Approve lets the call execute normally.
func Approve() Approval { return Approval{Decision: DecisionApprove} }

// ApproveWithOutput settles the call with the given output instead of executing it.
func ApproveWithOutput(output string) Approval {
	return Approval{Decision: DecisionApprove, Output: output}
}

// Reject blocks the call; an empty reason gets a default message.
func Reject(reason string) Approval {
	return Approval{Decision: DecisionReject, Reason: reason}
}

// ApprovalHandler decides inline about a tool call that requires
// confirmation. When a handler is registered the run never pauses; the
// handler's verdict is applied immediately and the loop continues.
type ApprovalHandler func(ctx context.Context, call core.ToolCall) Approval

// StreamOptions configures a streaming session.
type StreamOptions struct {
	// ApprovalHandler, when set, takes precedence over pausing: tools that
	// require confirmation consult it instead of suspending the run.
	ApprovalHandler ApprovalHandler

	// PartialParsing emits tool-pending events carrying best-effort decodes
	// of incomplete tool call arguments while they stream.
	PartialParsing bool
}

// WithApprovalHandler resolves confirmations inline instead of pausing.
func WithApprovalHandler(h ApprovalHandler) func(o *StreamOptions) {
	return func(o *StreamOptions) { o.ApprovalHandler = h }
}

// WithPartialParsing enables incremental decoding of streamed tool arguments.
func WithPartialParsing() func(o *StreamOptions) {
	return func(o *StreamOptions) { o.PartialParsing = true }
}

// InteractStream runs the agent and emits ordered events: turn starts, text
// deltas, tool activity and exactly one terminal event (complete, paused or
// error). The channel is closed after the terminal event. The caller must
// drain the channel; events are buffered but a stalled consumer eventually
// blocks the run.
func (a *Agent) InteractStream(ctx context.Context, convo *core.Context, optFns ...func(o *StreamOptions)) <-chan core.Event {
	sess, events := newStreamSession(a.name, optFns)
	go func() {
		defer close(events)
		a.runInteraction(ctx, convo, sess)
	}()
	return events
}

// ResumeStream continues a paused run as a streaming session.
func (a *Agent) ResumeStream(ctx context.Context, state *core.PausedRunState, optFns ...func(o *StreamOptions)) <-chan core.Event {
	sess, events := newStreamSession(a.name, optFns)
	go func() {
		defer close(events)
		a.resumeInteraction(ctx, state, sess)
	}()
	return events
}

func newStreamSession(agent string, optFns []func(o *StreamOptions)) (runSession, chan core.Event) {
	opts := StreamOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	events := make(chan core.Event, 32)
	return runSession{
		agent:           agent,
		events:          events,
		approvalHandler: opts.ApprovalHandler,
		partialParsing:  opts.PartialParsing,
	}, events
}

// runSession carries per-run streaming state through the loop. The zero
// value is a non-streaming session: every emit helper becomes a no-op and
// approval handling falls back to pausing.
type runSession struct {
	agent           string
	events          chan core.Event
	approvalHandler ApprovalHandler
	partialParsing  bool
}

func (s runSession) streaming() bool { return s.events != nil }

func (s runSession) send(e core.Event) {
	if s.events != nil {
		s.events <- e
	}
}

func (s runSession) turnStart(turn int) {
	if s.events == nil {
		return
	}
	e := core.NewEvent(s.agent, core.EventTurnStart)
	e.Turn = turn
	s.send(e)
}

func (s runSession) toolExecuted(turn int, exec core.ToolExecution) {
	if s.events == nil {
		return
	}
	e := core.NewEvent(s.agent, core.EventToolExecuted)
	e.Turn = turn
	ex := exec
	e.Execution = &ex
	s.send(e)
}

func (s runSession) handoffEvent(turn int, call core.ToolCall) {
	if s.events == nil {
		return
	}
	e := core.NewEvent(s.agent, core.EventHandoff)
	e.Turn = turn
	c := call
	e.Call = &c
	s.send(e)
}

// onDelta adapts partial model responses to stream events. Providers send
// cumulative tool argument prefixes, so each chunk is re-parsed as a whole.
func (s runSession) onDelta(turn int) func(r model.Response) {
	if s.events == nil {
		return nil
	}
	return func(r model.Response) {
		if r.Text != "" {
			s.textDelta(turn, r.Text)
		}
		for _, call := range r.ToolCalls {
			s.toolPending(turn, call)
		}
	}
}

func (s runSession) terminal(result *core.RunResult) {
	if s.events == nil {
		return
	}
	switch {
	case result.IsPaused():
		e := core.NewEvent(s.agent, core.EventPaused)
		e.State = result.Paused
		e.Result = result
		s.send(e)
	case result.IsError():
		e := core.NewEvent(s.agent, core.EventError)
		e.Err = result.Err
		e.Result = result
		s.send(e)
	default:
		e := core.NewEvent(s.agent, core.EventComplete)
		e.Result = result
		s.send(e)
	}
}

func (s runSession) textDelta(turn int, text string) {
	e := core.NewEvent(s.agent, core.EventTextDelta)
	e.Turn = turn
	e.TextDelta = text
	s.send(e)
}

func (s runSession) toolPending(turn int, call core.ToolCall) {
	e := core.NewEvent(s.agent, core.EventToolPending)
	e.Turn = turn
	c := call
	e.Call = &c
	if s.partialParsing {
		if parsed, ok := partialjson.ParseObject(call.Arguments); ok {
			e.Parsed = parsed
		}
	}
	s.send(e)
}
