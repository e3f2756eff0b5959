package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
	D string `json:"d" enum:"red,green,blue" description:"Enumerated field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a", "d"}, req)

	dProp, _ := props["d"].(map[string]any)
	assert.Equal(t, []any{"red", "green", "blue"}, dProp["enum"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	assert.NoError(t, util.ValidateParameters(map[string]any{"x": 5}, schema))

	err := util.ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	// JSON numbers arrive as float64; whole floats satisfy integer
	assert.NoError(t, util.ValidateParameters(map[string]any{"x": float64(7)}, schema))
	assert.Error(t, util.ValidateParameters(map[string]any{"x": 7.5}, schema))
	assert.Error(t, util.ValidateParameters(map[string]any{"x": "not a number"}, schema))
}

// -------------------- FunctionTool Tests --------------------

func echoContext() *core.ToolContext {
	return core.NewToolContext(context.Background(), core.NewContext(), "call-1")
}

func TestFunctionToolCall(t *testing.T) {
	sum := NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)

	assert.Equal(t, "calculate_sum", sum.Name())
	assert.False(t, sum.RequiresConfirmation())

	result, err := sum.Call(echoContext(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionToolValidationError(t *testing.T) {
	tl := NewFunctionTool("needs_x", "Needs x", map[string]any{
		"type":       "object",
		"properties": map[string]any{"x": map[string]any{"type": "string"}},
		"required":   []string{"x"},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return "never reached", nil
	})

	_, err := tl.Call(echoContext(), map[string]any{})
	require.Error(t, err)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionToolExecutionError(t *testing.T) {
	failing := NewFunctionTool("fails", "Always fails", map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return nil, errors.New("backend unavailable")
		})

	_, err := failing.Call(echoContext(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "backend unavailable", toolErr.Message)
}

func TestFunctionToolErrorPassthrough(t *testing.T) {
	custom := NewToolError("custom", "rate limited", "RATE_LIMITED")
	tl := NewFunctionTool("custom", "Returns custom error", map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return nil, custom
		})

	_, err := tl.Call(echoContext(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

func TestFunctionToolWithConfirmation(t *testing.T) {
	sensitive := NewFunctionTool("transfer_funds", "Transfers money", map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) { return "sent", nil },
		WithConfirmation(),
	)

	assert.True(t, sensitive.RequiresConfirmation())
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type args struct {
		City string `json:"city" description:"City name"`
	}
	tl := NewFunctionToolFromStruct("weather", "Look up weather", args{},
		func(tc *core.ToolContext, a map[string]any) (any, error) { return "sunny", nil })

	props, _ := tl.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "city")
}

// -------------------- Registry Tests --------------------

func TestRegistry(t *testing.T) {
	echo := NewFunctionTool("echo", "Echoes input", map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) { return args, nil })
	state := NewStateTool()

	r, err := NewRegistry(echo, state)
	require.NoError(t, err)

	got, ok := r.Resolve("echo")
	assert.True(t, ok)
	assert.Equal(t, echo, got)

	_, ok = r.Resolve("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"conversation_state", "echo"}, r.Names())
	require.Len(t, r.All(), 2)
	assert.Equal(t, "echo", r.All()[0].Name())
}

func TestRegistryDuplicateName(t *testing.T) {
	a := NewFunctionTool("dup", "first", map[string]any{"type": "object", "properties": map[string]any{}}, nil)
	b := NewFunctionTool("dup", "second", map[string]any{"type": "object", "properties": map[string]any{}}, nil)

	_, err := NewRegistry(a, b)
	assert.Error(t, err)
}

// -------------------- StateTool Tests --------------------

func TestStateToolOperations(t *testing.T) {
	st := NewStateTool()
	tc := echoContext()

	result, err := st.Call(tc, map[string]any{"operation": "set", "key": "color", "value": "blue"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"stored": true, "key": "color"}, result)

	result, err = st.Call(tc, map[string]any{"operation": "get", "key": "color"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"found": true, "value": "blue"}, result)

	result, err = st.Call(tc, map[string]any{"operation": "list"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"keys": []string{"color"}}, result)

	_, err = st.Call(tc, map[string]any{"operation": "delete", "key": "color"})
	require.NoError(t, err)

	result, err = st.Call(tc, map[string]any{"operation": "get", "key": "color"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"found": false}, result)

	_, err = st.Call(tc, map[string]any{"operation": "explode"})
	assert.Error(t, err)
	_, err = st.Call(tc, map[string]any{"operation": "get"})
	assert.Error(t, err)
}

// -------------------- Handoff Tests --------------------

func TestHandoffTool(t *testing.T) {
	h := NewHandoffTool("billing", "")

	assert.Equal(t, "transfer_to_billing", h.Name())
	assert.Contains(t, h.Description(), "billing")

	marker, ok := h.(HandoffMarker)
	require.True(t, ok)
	assert.Equal(t, "billing", marker.HandoffTarget())

	// Direct execution is a caller bug and must error rather than transfer.
	_, err := h.Call(echoContext(), map[string]any{})
	assert.Error(t, err)
}
