package core

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind discriminates the closed set of history item variants.
type ItemKind string

const (
	// ItemMessage is a role-attributed text message (user, assistant, system).
	ItemMessage ItemKind = "message"
	// ItemFunctionCall records a tool invocation requested by the model.
	ItemFunctionCall ItemKind = "function_call"
	// ItemFunctionOutput records the result of a previously requested call.
	ItemFunctionOutput ItemKind = "function_call_output"
)

// Item is one entry of a conversation history. Exactly one of the optional
// payload fields is populated according to Kind. The flat shape (rather than
// an interface hierarchy) keeps Items trivially JSON round-trippable, which
// PausedRunState depends on.
type Item struct {
	Kind ItemKind `json:"kind"`

	// Message fields (Kind == ItemMessage)
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`

	// Call is set when Kind == ItemFunctionCall.
	Call *ToolCall `json:"call,omitempty"`

	// Output is set when Kind == ItemFunctionOutput.
	Output *ToolOutput `json:"output,omitempty"`
}

// MessageItem builds a text message history item.
func MessageItem(role, text string) Item {
	return Item{Kind: ItemMessage, Role: role, Text: text}
}

// UserMessage builds a user-authored text message item.
func UserMessage(text string) Item { return MessageItem("user", text) }

// AssistantMessage builds an assistant-authored text message item.
func AssistantMessage(text string) Item { return MessageItem("assistant", text) }

// FunctionCallItem wraps a ToolCall as a history item.
func FunctionCallItem(call ToolCall) Item {
	return Item{Kind: ItemFunctionCall, Call: &call}
}

// FunctionOutputItem wraps a ToolOutput as a history item.
func FunctionOutputItem(out ToolOutput) Item {
	return Item{Kind: ItemFunctionOutput, Output: &out}
}

// IsUserMessage reports whether the item is a user-authored text message.
func (i Item) IsUserMessage() bool { return i.Kind == ItemMessage && i.Role == "user" }

// ToolCall is a tool invocation request surfaced by the model. CallID is the
// correlation id the provider expects back on the matching result; it is
// preserved across pause/resume so a later resume can match responses to
// calls.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolOutput is the result payload of a completed (or failed) tool call,
// appended to history so the model sees it on the next turn.
type ToolOutput struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Output  string `json:"output,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}

// ToolExecution is the per-run record of one completed tool call. A run
// accumulates these append-only, in call order, including synthetic failures
// for unknown tools and rejected approvals.
type ToolExecution struct {
	Tool      string        `json:"tool"`
	CallID    string        `json:"call_id"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration_ns"`
}

// ToOutput converts the execution record into the history item payload.
func (e ToolExecution) ToOutput() ToolOutput {
	return ToolOutput{CallID: e.CallID, Name: e.Tool, Output: e.Output, IsError: !e.Success}
}

// NewID generates a unique identifier for events, calls and traces.
func NewID() string { return uuid.NewString() }
