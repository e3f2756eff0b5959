// Package logging provides a minimal logging interface and adapters for AgentKit.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that agents and orchestration primitives use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentLogger with contextual helpers for runs, tool calls and model calls
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a := agent.New("assistant", model, agent.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
