// Package agent contains the turn-based run loop and the orchestration
// primitives for composing agents in AgentKit. The package focuses on three
// concerns:
//
//  1. The single-agent run loop (Agent): model calls, tool execution,
//     guardrails, handoffs and pause/resume for tool approval
//  2. Streaming sessions (InteractStream) that surface run progress as an
//     ordered event channel
//  3. Multi-agent coordination: Group (fan-out), Network (discussion),
//     Router (classify then delegate) and Supervisor (delegation via tools)
//
// Design principles:
//   - Minimal hidden global state; explicit wiring via constructors
//   - Composability; every primitive consumes and produces Interactable
//   - Observability; structured logging hooks on turns, tools and delegation
//
// Execution model:
//   - An agent's Interact receives a context.Context and a *core.Context
//   - Composite primitives coordinate child Interact calls on derived contexts
//   - A paused run is represented by a serializable core.PausedRunState and
//     continued with Resume
//
// The package intentionally keeps model specifics, tool abstractions and
// memory backends in their respective packages to avoid cyclic deps.
package agent
