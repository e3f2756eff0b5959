package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHistoryAppendOnly(t *testing.T) {
	c := NewContext()
	c.AddUserMessage("hello")
	c.AddAssistantMessage("hi there")
	c.AddToolResult(ToolOutput{CallID: "c1", Name: "lookup", Output: "42"})

	history := c.History()
	require.Len(t, history, 3)
	assert.Equal(t, ItemMessage, history[0].Kind)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, ItemFunctionOutput, history[2].Kind)
	assert.Equal(t, "c1", history[2].Output.CallID)

	// History returns a copy; mutating it must not affect the context.
	history[0].Text = "mutated"
	assert.Equal(t, "hello", c.History()[0].Text)
}

func TestContextState(t *testing.T) {
	c := NewContext()
	c.SetState("order", "12345")

	v, ok := c.State("order")
	assert.True(t, ok)
	assert.Equal(t, "12345", v)

	// Storing nil clears; a cleared key is indistinguishable from a missing one.
	c.SetState("order", nil)
	_, ok = c.State("order")
	assert.False(t, ok)
	_, ok = c.State("never-set")
	assert.False(t, ok)
}

func TestContextTurnCounter(t *testing.T) {
	c := NewContext()
	assert.Equal(t, 0, c.TurnCount())
	assert.Equal(t, 1, c.IncrementTurn())
	assert.Equal(t, 2, c.IncrementTurn())
	assert.Equal(t, 2, c.TurnCount())
}

func TestContextCopyIsolation(t *testing.T) {
	c := NewContext()
	c.AddUserMessage("original")
	c.SetState("k", "v")
	c.IncrementTurn()
	c.WithTrace("trace-1", "span-1")

	cp := c.Copy()
	cp.AddUserMessage("copied only")
	cp.SetState("k", "changed")

	assert.Equal(t, 1, c.HistoryLen())
	assert.Equal(t, 2, cp.HistoryLen())
	v, _ := c.State("k")
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, cp.TurnCount())
	assert.Equal(t, "trace-1", cp.TraceID())
}

func TestContextChildSharing(t *testing.T) {
	parent := NewContext()
	parent.AddUserMessage("parent history")
	parent.SetState("shared", true)
	parent.WithTrace("t", "s")

	full := parent.Child(false, true, "do the thing")
	assert.Equal(t, 2, full.HistoryLen())
	_, ok := full.State("shared")
	assert.True(t, ok)

	stateOnly := parent.Child(true, false, "do the thing")
	assert.Equal(t, 1, stateOnly.HistoryLen()) // only the request
	_, ok = stateOnly.State("shared")
	assert.True(t, ok)
	assert.Equal(t, "t", stateOnly.TraceID())

	isolated := parent.Child(false, false, "do the thing")
	assert.Equal(t, 1, isolated.HistoryLen())
	_, ok = isolated.State("shared")
	assert.False(t, ok)
}

func TestContextEnsureTrace(t *testing.T) {
	c := NewContext()
	assert.False(t, c.HasTrace())
	c.EnsureTrace()
	assert.True(t, c.HasTrace())
	trace := c.TraceID()
	c.EnsureTrace()
	assert.Equal(t, trace, c.TraceID())
}

func TestContextLastUserText(t *testing.T) {
	c := NewContext()
	_, ok := c.LastUserText()
	assert.False(t, ok)

	c.AddUserMessage("first")
	c.AddAssistantMessage("reply")
	c.AddUserMessage("second")

	text, ok := c.LastUserText()
	require.True(t, ok)
	assert.Equal(t, "second", text)
}

func TestContextJSONRoundTrip(t *testing.T) {
	c := NewContext()
	c.AddUserMessage("hello")
	c.AddItem(FunctionCallItem(ToolCall{ID: "i1", CallID: "c1", Name: "lookup", Arguments: `{"q":"x"}`}))
	c.AddToolResult(ToolOutput{CallID: "c1", Name: "lookup", Output: "result"})
	c.SetState("key", "value")
	c.IncrementTurn()
	c.WithTrace("trace", "span")
	c.WithRequestID("req")

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := NewContext()
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, c.History(), restored.History())
	assert.Equal(t, c.TurnCount(), restored.TurnCount())
	assert.Equal(t, "trace", restored.TraceID())
	assert.Equal(t, "req", restored.RequestID())
	v, ok := restored.State("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)
}
