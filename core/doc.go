// Package core defines the shared data model of agentkit: the caller-owned
// conversation Context, history Items, tool call/execution records, the
// RunResult returned by every agent invocation, the serializable
// PausedRunState used for human-in-the-loop approval, and the tagged Event
// variants emitted by streaming sessions.
//
// Everything in this package is transport-agnostic. The model and agent
// packages build on these types; callers typically only construct a Context,
// pass it to an agent, and inspect the RunResult discriminant.
package core
