// Package agentkit provides a high-level façade over the agent execution
// engine and its supporting services (run state storage, memory, logging)
// enabling rapid construction of multi-agent systems. Most applications
// interact with this package by:
//  1. Creating a Kit via New() (optionally overriding default in-memory services)
//  2. Registering one or more interactables (agents, groups, networks, routers, supervisors)
//  3. Running them by name (Run / RunStream) and handling pauses via Suspend / Approve / Reject
//
// The façade delegates execution to the agent package while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply durable stores and a
// structured logger.
package agentkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/memory"
	"github.com/hupe1980/agentkit/runstate"
	"github.com/hupe1980/agentkit/tool"
)

// Resumer is an Interactable whose paused runs can be resumed from a
// resolved snapshot. agent.Agent implements it; orchestration primitives
// that never pause do not.
type Resumer interface {
	agent.Interactable
	Resume(ctx context.Context, state *core.PausedRunState) *core.RunResult
}

// Options configures the Kit instance.
type Options struct {
	// Stores (default to in-memory implementations if not provided)
	Memory    memory.Store
	RunStates runstate.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Kit is the high-level façade aggregating registered agents and services.
type Kit struct {
	mu     sync.RWMutex
	agents map[string]agent.Interactable

	memory    memory.Store
	runStates runstate.Store
	logger    logging.Logger
}

// New creates a Kit with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Kit {
	opts := Options{
		Memory:    memory.NewInMemoryStore(),
		RunStates: runstate.NewInMemoryStore(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Kit{
		agents:    make(map[string]agent.Interactable),
		memory:    opts.Memory,
		runStates: opts.RunStates,
		logger:    opts.Logger,
	}
}

// Register adds an interactable under its own name. Names must be unique.
func (k *Kit) Register(a agent.Interactable) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.agents[a.Name()]; exists {
		return fmt.Errorf("agent %q already registered", a.Name())
	}
	k.agents[a.Name()] = a
	return nil
}

// Agent looks up a registered interactable by name.
func (k *Kit) Agent(name string) (agent.Interactable, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	a, ok := k.agents[name]
	return a, ok
}

// Memory returns the kit's memory store.
func (k *Kit) Memory() memory.Store { return k.memory }

// MemoryTools returns remember/recall tools bound to the kit's memory store,
// ready to be passed to agent constructors.
func (k *Kit) MemoryTools() []tool.Tool {
	return []tool.Tool{
		memory.NewRememberTool(k.memory),
		memory.NewRecallTool(k.memory),
	}
}

// Run sends the input to the named agent on a fresh conversation and blocks
// until the run terminates.
func (k *Kit) Run(ctx context.Context, agentName, input string) (*core.RunResult, error) {
	a, ok := k.Agent(agentName)
	if !ok {
		return nil, fmt.Errorf("agent %q is not registered", agentName)
	}

	convo := core.NewContext().AddUserMessage(input)
	k.logger.Info("kit.run", "agent", agentName)
	return a.Interact(ctx, convo), nil
}

// RunStream sends the input to the named agent and returns its live event
// channel. The agent must support streaming sessions.
func (k *Kit) RunStream(ctx context.Context, agentName, input string, optFns ...func(o *agent.StreamOptions)) (<-chan core.Event, error) {
	a, ok := k.Agent(agentName)
	if !ok {
		return nil, fmt.Errorf("agent %q is not registered", agentName)
	}
	streamer, ok := a.(agent.Streamer)
	if !ok {
		return nil, fmt.Errorf("agent %q does not support streaming", agentName)
	}

	convo := core.NewContext().AddUserMessage(input)
	k.logger.Info("kit.run_stream", "agent", agentName)
	return streamer.InteractStream(ctx, convo, optFns...), nil
}

// Suspend stores a paused result's snapshot and returns its storage id for
// later Approve or Reject, possibly from another process.
func (k *Kit) Suspend(ctx context.Context, result *core.RunResult) (string, error) {
	if result == nil || !result.IsPaused() {
		return "", fmt.Errorf("result is not paused")
	}

	id, err := k.runStates.Save(ctx, result.Paused)
	if err != nil {
		return "", err
	}
	k.logger.Info("kit.suspended", "agent", result.Paused.AgentName, "state_id", id)
	return id, nil
}

// Approve resolves a stored snapshot with the given tool output (empty means
// execute the pending tool) and resumes the owning agent. The snapshot is
// removed on success.
func (k *Kit) Approve(ctx context.Context, stateID, output string) (*core.RunResult, error) {
	return k.resume(ctx, stateID, func(state *core.PausedRunState) error {
		return state.Approve(output)
	})
}

// Reject resolves a stored snapshot with a rejection reason and resumes the
// owning agent, which sees the rejection as a failed tool call.
func (k *Kit) Reject(ctx context.Context, stateID, reason string) (*core.RunResult, error) {
	return k.resume(ctx, stateID, func(state *core.PausedRunState) error {
		return state.Reject(reason)
	})
}

func (k *Kit) resume(ctx context.Context, stateID string, resolve func(*core.PausedRunState) error) (*core.RunResult, error) {
	state, err := k.runStates.Load(ctx, stateID)
	if err != nil {
		return nil, err
	}

	a, ok := k.Agent(state.AgentName)
	if !ok {
		return nil, fmt.Errorf("agent %q is not registered", state.AgentName)
	}
	resumer, ok := a.(Resumer)
	if !ok {
		return nil, fmt.Errorf("agent %q cannot be resumed", state.AgentName)
	}

	if err := resolve(state); err != nil {
		return nil, err
	}

	result := resumer.Resume(ctx, state)
	if !result.IsError() {
		if err := k.runStates.Delete(ctx, stateID); err != nil {
			k.logger.Warn("kit.state_cleanup_failed", "state_id", stateID, "error", err.Error())
		}
	}
	return result, nil
}
