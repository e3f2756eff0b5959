package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/guardrail"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// DefaultMaxTurns bounds the run loop when no explicit limit is configured.
const DefaultMaxTurns = 10

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	Description      string
	Instructions     Instruction
	Tools            []tool.Tool
	Handoffs         []Interactable
	InputGuardrails  []guardrail.Guardrail
	OutputGuardrails []guardrail.Guardrail
	MaxTurns         int
	Logger           logging.Logger
}

// Agent drives the turn-based run loop around a language model: it calls the
// model, executes requested tools, appends results to the conversation and
// repeats until the model answers with plain text, a limit is hit, a handoff
// fires or a tool requires approval.
//
// An Agent holds no per-run mutable state; one instance may serve concurrent
// runs as long as each run gets its own core.Context.
type Agent struct {
	name             string
	description      string
	llm              model.Model
	instruction      Instruction
	registry         *tool.Registry
	handoffs         map[string]Interactable
	inputGuardrails  []guardrail.Guardrail
	outputGuardrails []guardrail.Guardrail
	maxTurns         int
	logger           logging.Logger
}

// New creates an agent with sensible defaults: a generic assistant
// instruction, DefaultMaxTurns and no-op logging. Handoff peers are
// advertised to the model as transfer_to_<name> tools.
//
// New panics when two tools (or handoff peers) collide on a name; tool sets
// are static wiring, not runtime input.
func New(name string, llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Instructions: NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxTurns:     DefaultMaxTurns,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	handoffs := make(map[string]Interactable, len(opts.Handoffs))
	tools := append([]tool.Tool{}, opts.Tools...)
	for _, peer := range opts.Handoffs {
		handoffs[peer.Name()] = peer
		tools = append(tools, tool.NewHandoffTool(peer.Name(), peerDescription(peer)))
	}

	return &Agent{
		name:             name,
		description:      opts.Description,
		llm:              llm,
		instruction:      opts.Instructions,
		registry:         tool.MustRegistry(tools...),
		handoffs:         handoffs,
		inputGuardrails:  opts.InputGuardrails,
		outputGuardrails: opts.OutputGuardrails,
		maxTurns:         opts.MaxTurns,
		logger:           opts.Logger,
	}
}

func peerDescription(peer Interactable) string {
	if d, ok := peer.(interface{ Description() string }); ok {
		return fmt.Sprintf("Transfer the conversation to %s. %s", peer.Name(), d.Description())
	}
	return ""
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// Description returns the short description used by delegating primitives.
func (a *Agent) Description() string { return a.description }

// Model returns the underlying language model.
func (a *Agent) Model() model.Model { return a.llm }

// Tools returns the agent's tool registry, including generated handoff tools.
func (a *Agent) Tools() *tool.Registry { return a.registry }

// MaxTurns returns the configured turn limit.
func (a *Agent) MaxTurns() int { return a.maxTurns }

// Interact runs the agent against the conversation until a terminal result:
// final text, an error, a handoff, or a pause awaiting tool approval.
// The conversation is mutated in place; a paused result carries everything
// needed to continue later with Resume.
func (a *Agent) Interact(ctx context.Context, convo *core.Context) *core.RunResult {
	return a.runInteraction(ctx, convo, runSession{agent: a.name})
}

// Resume continues a paused run after Approve or Reject was called on the
// state. The pending call's result is appended to the conversation and the
// run loop re-enters exactly where it left off; a resumed run is
// indistinguishable from one that never paused.
func (a *Agent) Resume(ctx context.Context, state *core.PausedRunState) *core.RunResult {
	return a.resumeInteraction(ctx, state, runSession{agent: a.name})
}

func (a *Agent) runInteraction(ctx context.Context, convo *core.Context, sess runSession) *core.RunResult {
	convo.EnsureTrace()
	a.logger.Debug("agent.run.start", "agent", a.name, "trace_id", convo.TraceID(), "history_len", convo.HistoryLen())

	if text, ok := convo.LastUserText(); ok {
		if err := guardrail.RunAll(core.GuardrailInput, a.inputGuardrails, text, convo); err != nil {
			a.logger.Warn("agent.guardrail.input_failed", "agent", a.name, "error", err.Error())
			return a.finish(sess, core.ErrorResult(err, convo, convo.TurnCount()))
		}
	}

	return a.loop(ctx, convo, nil, sess)
}

func (a *Agent) resumeInteraction(ctx context.Context, state *core.PausedRunState, sess runSession) *core.RunResult {
	if state == nil || state.Context == nil {
		err := &core.ResumeStateError{Reason: "missing run state"}
		return a.finish(sess, core.ErrorResult(err, core.NewContext(), 0))
	}
	if state.AgentName != a.name {
		err := &core.ResumeStateError{Reason: fmt.Sprintf("run state belongs to agent %q, not %q", state.AgentName, a.name)}
		return a.finish(sess, core.ErrorResult(err, state.Context, state.TurnCount))
	}

	approved, payload, err := state.Consume()
	if err != nil {
		return a.finish(sess, core.ErrorResult(err, state.Context, state.TurnCount))
	}

	convo := state.Context
	execs := append([]core.ToolExecution{}, state.ToolExecutions...)
	call := state.PendingCall

	a.logger.Info("agent.resume", "agent", a.name, "tool", call.Name, "approved", approved)

	// The pending call item is already in the history; only its result is
	// appended here so a resumed history matches an uninterrupted one.
	switch {
	case !approved:
		convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: payload, IsError: true})
		execs = append(execs, core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: payload, Success: false})
	case payload != "":
		convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: payload})
		execs = append(execs, core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: payload, Success: true})
	default:
		t, known := a.registry.Resolve(call.Name)
		exec := a.executeCall(ctx, convo, call, t, known, sess)
		execs = append(execs, exec)
	}

	return a.loop(ctx, convo, execs, sess)
}

// loop is the agent's core state machine. Each iteration consumes one turn:
// model call, then either final text or a batch of tool calls.
func (a *Agent) loop(ctx context.Context, convo *core.Context, execs []core.ToolExecution, sess runSession) *core.RunResult {
	for {
		turn := convo.IncrementTurn()
		if turn > a.maxTurns {
			err := &core.TurnLimitError{Agent: a.name, MaxTurns: a.maxTurns}
			a.logger.Warn("agent.turn_limit", "agent", a.name, "max_turns", a.maxTurns)
			return a.finish(sess, withExecutions(core.ErrorResult(err, convo, a.maxTurns), execs))
		}

		if err := ctx.Err(); err != nil {
			return a.finish(sess, withExecutions(core.ErrorResult(err, convo, turn), execs))
		}

		sess.turnStart(turn)

		instructions, err := a.instruction.Resolve(convo)
		if err != nil {
			return a.finish(sess, withExecutions(core.ErrorResult(fmt.Errorf("resolving instructions: %w", err), convo, turn), execs))
		}

		req := model.Request{
			Instructions: instructions,
			Items:        convo.History(),
			Tools:        a.toolDefinitions(),
			Stream:       sess.streaming(),
		}

		start := time.Now()
		respCh, errCh := a.llm.Generate(ctx, req)
		final, err := model.Collect(ctx, respCh, errCh, sess.onDelta(turn))
		if err != nil {
			if ctx.Err() != nil {
				return a.finish(sess, withExecutions(core.ErrorResult(ctx.Err(), convo, turn), execs))
			}
			terr := &core.TransportError{Agent: a.name, Turn: turn, Err: err}
			a.logger.Error("agent.model.error", "agent", a.name, "turn", turn, "error", err.Error())
			return a.finish(sess, withExecutions(core.ErrorResult(terr, convo, turn), execs))
		}

		a.logger.Debug("agent.turn.response", "agent", a.name, "turn", turn,
			"duration_ms", time.Since(start).Milliseconds(), "tool_calls", len(final.ToolCalls))

		if final.Text != "" {
			convo.AddAssistantMessage(final.Text)
		}

		if len(final.ToolCalls) == 0 {
			if err := guardrail.RunAll(core.GuardrailOutput, a.outputGuardrails, final.Text, convo); err != nil {
				a.logger.Warn("agent.guardrail.output_failed", "agent", a.name, "error", err.Error())
				return a.finish(sess, withExecutions(core.ErrorResult(err, convo, turn), execs))
			}
			return a.finish(sess, core.Success(final.Text, convo, execs, convo.TurnCount()))
		}

		// Handoff wins over everything else in the batch; the marked tool
		// never executes.
		for _, call := range final.ToolCalls {
			if t, ok := a.registry.Resolve(call.Name); ok {
				if marker, isHandoff := t.(tool.HandoffMarker); isHandoff {
					return a.handoff(ctx, convo, call, marker, execs, sess)
				}
			}
		}

		for _, call := range final.ToolCalls {
			if err := ctx.Err(); err != nil {
				return a.finish(sess, withExecutions(core.ErrorResult(err, convo, turn), execs))
			}

			convo.AddItem(core.FunctionCallItem(call))
			t, known := a.registry.Resolve(call.Name)

			if known && t.RequiresConfirmation() {
				if sess.approvalHandler != nil {
					approval := sess.approvalHandler(ctx, call)
					if done, exec := a.applyApproval(convo, call, approval); done {
						execs = append(execs, exec)
						sess.toolExecuted(turn, exec)
						continue
					}
					// approved without an output override: execute normally
				} else {
					state := core.NewPausedRunState(a.name, convo, call, execs, convo.TurnCount())
					a.logger.Info("agent.paused", "agent", a.name, "tool", call.Name, "call_id", call.CallID)
					return a.finish(sess, core.PausedResult(state, convo))
				}
			}

			exec := a.executeCall(ctx, convo, call, t, known, sess)
			sess.toolExecuted(turn, exec)
			execs = append(execs, exec)
		}
	}
}

// applyApproval handles an inline approval decision. It reports whether the
// decision fully settled the call (rejected, or approved with an output
// override) together with the recorded execution.
func (a *Agent) applyApproval(convo *core.Context, call core.ToolCall, approval Approval) (bool, core.ToolExecution) {
	switch {
	case approval.Decision == DecisionReject:
		reason := approval.Reason
		if reason == "" {
			reason = "Tool execution was rejected by user"
		}
		convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: reason, IsError: true})
		return true, core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: reason, Success: false}
	case approval.Output != "":
		convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: approval.Output})
		return true, core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: approval.Output, Success: true}
	default:
		return false, core.ToolExecution{}
	}
}

// executeCall runs a single tool call and appends its result to the
// conversation. Unknown tools and failing tools produce an error-flagged
// result item instead of aborting the run; the model sees the failure and
// decides how to continue.
func (a *Agent) executeCall(ctx context.Context, convo *core.Context, call core.ToolCall, t tool.Tool, known bool, sess runSession) core.ToolExecution {
	if !known {
		msg := fmt.Sprintf("tool %q not found", call.Name)
		a.logger.Warn("agent.tool.unknown", "agent", a.name, "tool", call.Name)
		convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: msg, IsError: true})
		return core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: msg, Success: false}
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			msg := fmt.Sprintf("invalid tool arguments: %v", err)
			convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: msg, IsError: true})
			return core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: msg, Success: false}
		}
	}

	start := time.Now()
	toolCtx := core.NewToolContext(ctx, convo, call.CallID).WithLogger(a.logger)
	result, err := t.Call(toolCtx, args)
	dur := time.Since(start)

	if err != nil {
		a.logger.Error("agent.tool.error", "agent", a.name, "tool", call.Name, "error", err.Error())
		convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: err.Error(), IsError: true})
		return core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: err.Error(), Success: false, Duration: dur}
	}

	output := stringify(result)
	convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: output})
	a.logger.Debug("agent.tool.success", "agent", a.name, "tool", call.Name, "duration_ms", dur.Milliseconds())
	return core.ToolExecution{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Output: output, Success: true, Duration: dur}
}

// handoff transfers the conversation to a peer. The child run happens on a
// forked context so the parent history stays intact up to the transfer point.
func (a *Agent) handoff(ctx context.Context, convo *core.Context, call core.ToolCall, marker tool.HandoffMarker, execs []core.ToolExecution, sess runSession) *core.RunResult {
	target := marker.HandoffTarget()
	peer, ok := a.handoffs[target]
	if !ok {
		err := &core.HandoffError{Agent: a.name, Target: target, Err: fmt.Errorf("no registered handoff target")}
		return a.finish(sess, withExecutions(core.ErrorResult(err, convo, convo.TurnCount()), execs))
	}

	convo.AddItem(core.FunctionCallItem(call))
	convo.AddToolResult(core.ToolOutput{CallID: call.CallID, Name: call.Name, Output: fmt.Sprintf("transferring to %s", target)})

	a.logger.Info("agent.handoff", "agent", a.name, "target", target)
	sess.handoffEvent(convo.TurnCount(), call)

	child := convo.Fork(core.NewID())
	inner := peer.Interact(ctx, child)

	result := core.HandoffResult(target, inner, convo)
	result.ToolExecutions = append(execs, result.ToolExecutions...)
	return a.finish(sess, result)
}

func (a *Agent) toolDefinitions() []model.ToolDefinition {
	all := a.registry.All()
	if len(all) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(all))
	for _, t := range all {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// finish emits the terminal event for streaming sessions and hands the
// result back unchanged.
func (a *Agent) finish(sess runSession, result *core.RunResult) *core.RunResult {
	sess.terminal(result)
	return result
}

func withExecutions(result *core.RunResult, execs []core.ToolExecution) *core.RunResult {
	result.ToolExecutions = execs
	return result
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}
