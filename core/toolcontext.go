package core

import (
	"context"

	"github.com/hupe1980/agentkit/logging"
)

// ToolContext carries per-call scope into a tool invocation: the ambient
// cancellation context, the conversation the call belongs to and the call
// correlation id. Nested sub-agent tools use Conversation to derive a child
// context; context is always passed explicitly, never discovered through
// process-wide state.
type ToolContext struct {
	Context      context.Context
	Conversation *Context
	CallID       string

	logger logging.Logger
}

// NewToolContext binds a tool invocation to its run scope.
func NewToolContext(ctx context.Context, convo *Context, callID string) *ToolContext {
	return &ToolContext{Context: ctx, Conversation: convo, CallID: callID}
}

// WithLogger attaches a logger that tools can use during execution.
func (tc *ToolContext) WithLogger(logger logging.Logger) *ToolContext {
	tc.logger = logger
	return tc
}

// Logger returns the attached logger, or a no-op logger when none was set.
func (tc *ToolContext) Logger() logging.Logger {
	if tc.logger == nil {
		return logging.NoOpLogger{}
	}
	return tc.logger
}
