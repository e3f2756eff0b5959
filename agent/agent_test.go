package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/guardrail"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

func TestAgentPlainTextCompletion(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueText("Hello there!")

	a := New("assistant", llm)
	convo := core.NewContext().AddUserMessage("Hi")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "Hello there!", result.Output)
	assert.Equal(t, 1, result.TurnsUsed)
	assert.Empty(t, result.ToolExecutions)

	history := convo.History()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "Hello there!", history[1].Text)
}

func TestAgentToolLoop(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("echo", `{"text": "ping"}`)
	llm.EnqueueText("The tool said ping.")

	a := New("assistant", llm, func(o *Options) {
		o.Tools = []tool.Tool{echoTool()}
	})
	convo := core.NewContext().AddUserMessage("Use the echo tool")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "The tool said ping.", result.Output)
	assert.Equal(t, 2, result.TurnsUsed)

	require.Len(t, result.ToolExecutions, 1)
	exec := result.ToolExecutions[0]
	assert.Equal(t, "echo", exec.Tool)
	assert.True(t, exec.Success)
	assert.Equal(t, "ping", exec.Output)

	history := convo.History()
	require.Len(t, history, 4)
	assert.Equal(t, core.ItemMessage, history[0].Kind)
	assert.Equal(t, core.ItemFunctionCall, history[1].Kind)
	assert.Equal(t, core.ItemFunctionOutput, history[2].Kind)
	assert.Equal(t, core.ItemMessage, history[3].Kind)
	assert.Equal(t, history[1].Call.CallID, history[2].Output.CallID)
}

func TestAgentUnknownToolContinuesLoop(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("does_not_exist", `{}`)
	llm.EnqueueText("Recovered.")

	a := New("assistant", llm, func(o *Options) {
		o.Tools = []tool.Tool{echoTool()}
	})
	convo := core.NewContext().AddUserMessage("Go")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "Recovered.", result.Output)

	require.Len(t, result.ToolExecutions, 1)
	assert.False(t, result.ToolExecutions[0].Success)

	history := convo.History()
	require.Len(t, history, 4)
	assert.True(t, history[2].Output.IsError)
}

func TestAgentToolErrorSurfacedToModel(t *testing.T) {
	failing := tool.NewFunctionTool("flaky", "Always fails", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return nil, errors.New("backend unavailable")
	})

	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("flaky", `{}`)
	llm.EnqueueText("Sorry, that failed.")

	a := New("assistant", llm, func(o *Options) {
		o.Tools = []tool.Tool{failing}
	})
	convo := core.NewContext().AddUserMessage("Try it")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	require.Len(t, result.ToolExecutions, 1)
	assert.False(t, result.ToolExecutions[0].Success)
	assert.Contains(t, result.ToolExecutions[0].Output, "backend unavailable")
}

func TestAgentTurnLimit(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	for i := 0; i < 3; i++ {
		llm.EnqueueToolCall("echo", `{"text": "again"}`)
	}

	a := New("assistant", llm, func(o *Options) {
		o.Tools = []tool.Tool{echoTool()}
		o.MaxTurns = 2
	})
	convo := core.NewContext().AddUserMessage("Loop forever")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsError())
	var limitErr *core.TurnLimitError
	require.ErrorAs(t, result.Err, &limitErr)
	assert.Equal(t, 2, limitErr.MaxTurns)
	assert.Equal(t, 2, llm.CallCount())
	assert.Len(t, result.ToolExecutions, 2)
}

func TestAgentInputGuardrailBlocksBeforeModel(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueText("Should never be reached")

	a := New("assistant", llm, func(o *Options) {
		o.InputGuardrails = []guardrail.Guardrail{
			guardrail.New("no_secrets", func(text string, convo *core.Context) guardrail.Result {
				return guardrail.Fail("input contains a secret")
			}),
		}
	})
	convo := core.NewContext().AddUserMessage("password=hunter2")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsError())
	var gErr *core.GuardrailError
	require.ErrorAs(t, result.Err, &gErr)
	assert.Equal(t, core.GuardrailInput, gErr.Stage)
	assert.Equal(t, 0, llm.CallCount())
}

func TestAgentOutputGuardrailBlocksFinalText(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueText("Here is the account number 1234")

	a := New("assistant", llm, func(o *Options) {
		o.OutputGuardrails = []guardrail.Guardrail{
			guardrail.New("no_numbers", func(text string, convo *core.Context) guardrail.Result {
				return guardrail.Fail("output leaks data")
			}),
		}
	})
	convo := core.NewContext().AddUserMessage("Tell me")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsError())
	var gErr *core.GuardrailError
	require.ErrorAs(t, result.Err, &gErr)
	assert.Equal(t, core.GuardrailOutput, gErr.Stage)
	assert.Equal(t, 1, llm.CallCount())
}

func TestAgentModelFailureWrapsTransportError(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.FailWith(errors.New("connection reset"))

	a := New("assistant", llm)
	convo := core.NewContext().AddUserMessage("Hi")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsError())
	var tErr *core.TransportError
	assert.ErrorAs(t, result.Err, &tErr)
}

func TestAgentContextCancellation(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueText("never")

	a := New("assistant", llm)
	convo := core.NewContext().AddUserMessage("Hi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := a.Interact(ctx, convo)

	require.True(t, result.IsError())
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Empty(t, result.ToolExecutions)
}

func TestAgentHandoff(t *testing.T) {
	billingLLM := model.NewMockModel("billing", "mock")
	billingLLM.EnqueueText("Your invoice is settled.")
	billing := New("billing", billingLLM, func(o *Options) {
		o.Description = "Handles billing questions"
	})

	frontLLM := model.NewMockModel("front", "mock")
	frontLLM.EnqueueToolCall("transfer_to_billing", `{"reason": "billing question"}`)
	front := New("frontdesk", frontLLM, func(o *Options) {
		o.Handoffs = []Interactable{billing}
	})

	convo := core.NewContext().AddUserMessage("Why was I charged twice?")
	result := front.Interact(context.Background(), convo)

	require.True(t, result.IsHandoff())
	assert.Equal(t, "billing", result.HandoffAgent)
	assert.Equal(t, "Your invoice is settled.", result.Output)
	assert.Equal(t, 1, billingLLM.CallCount())
}

func TestAgentHandoffMarkerNeverExecutes(t *testing.T) {
	peer := answerStub("specialist", "done by specialist")

	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("transfer_to_specialist", `{}`)

	a := New("assistant", llm, func(o *Options) {
		o.Handoffs = []Interactable{peer}
	})
	convo := core.NewContext().AddUserMessage("Escalate this")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsHandoff())
	assert.Equal(t, 1, peer.Calls())
	for _, exec := range result.ToolExecutions {
		assert.NotEqual(t, "transfer_to_specialist", exec.Tool)
	}
}

func TestAgentPauseOnConfirmationTool(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("transfer_funds", `{"amount": 100}`)
	llm.EnqueueText("Done: transfer completed")

	a := New("banker", llm, func(o *Options) {
		o.Tools = []tool.Tool{sensitiveTool()}
	})
	convo := core.NewContext().AddUserMessage("Send $100 to Bob")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsPaused())
	state := result.Paused
	require.NotNil(t, state)
	assert.Equal(t, "banker", state.AgentName)
	assert.Equal(t, "transfer_funds", state.PendingCall.Name)

	// The pending call is already part of the recorded history.
	history := state.Context.History()
	last := history[len(history)-1]
	require.Equal(t, core.ItemFunctionCall, last.Kind)
	assert.Equal(t, state.PendingCall.CallID, last.Call.CallID)
}

func TestAgentResumeApproved(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("transfer_funds", `{"amount": 100}`)
	llm.EnqueueText("Done: transfer completed")

	a := New("banker", llm, func(o *Options) {
		o.Tools = []tool.Tool{sensitiveTool()}
	})
	convo := core.NewContext().AddUserMessage("Send $100 to Bob")

	paused := a.Interact(context.Background(), convo)
	require.True(t, paused.IsPaused())

	require.NoError(t, paused.Paused.Approve(""))
	result := a.Resume(context.Background(), paused.Paused)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "Done: transfer completed", result.Output)

	require.Len(t, result.ToolExecutions, 1)
	assert.True(t, result.ToolExecutions[0].Success)
	assert.Equal(t, "transfer completed", result.ToolExecutions[0].Output)
}

func TestAgentResumeWithOutputOverrideSkipsExecution(t *testing.T) {
	executed := false
	custom := tool.NewFunctionTool("transfer_funds", "Transfer funds", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		executed = true
		return "real execution", nil
	}, tool.WithConfirmation())

	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("transfer_funds", `{}`)
	llm.EnqueueText("ok")

	a := New("banker", llm, func(o *Options) {
		o.Tools = []tool.Tool{custom}
	})
	convo := core.NewContext().AddUserMessage("Send it")

	paused := a.Interact(context.Background(), convo)
	require.True(t, paused.IsPaused())

	require.NoError(t, paused.Paused.Approve("already done out of band"))
	result := a.Resume(context.Background(), paused.Paused)

	require.True(t, result.IsSuccess())
	assert.False(t, executed)
	require.Len(t, result.ToolExecutions, 1)
	assert.Equal(t, "already done out of band", result.ToolExecutions[0].Output)
}

func TestAgentResumeRejected(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("transfer_funds", `{"amount": 100}`)
	llm.EnqueueText("Understood, I will not transfer.")

	a := New("banker", llm, func(o *Options) {
		o.Tools = []tool.Tool{sensitiveTool()}
	})
	convo := core.NewContext().AddUserMessage("Send $100")

	paused := a.Interact(context.Background(), convo)
	require.True(t, paused.IsPaused())

	require.NoError(t, paused.Paused.Reject("not authorized"))
	result := a.Resume(context.Background(), paused.Paused)

	require.True(t, result.IsSuccess())
	require.Len(t, result.ToolExecutions, 1)
	assert.False(t, result.ToolExecutions[0].Success)
	assert.Contains(t, result.ToolExecutions[0].Output, "not authorized")
}

func TestAgentResumeAfterSerializationRoundTrip(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueToolCall("transfer_funds", `{"amount": 100}`)
	llm.EnqueueText("Done: transfer completed")

	a := New("banker", llm, func(o *Options) {
		o.Tools = []tool.Tool{sensitiveTool()}
	})
	convo := core.NewContext().AddUserMessage("Send $100 to Bob")

	paused := a.Interact(context.Background(), convo)
	require.True(t, paused.IsPaused())

	data, err := json.Marshal(paused.Paused)
	require.NoError(t, err)

	var restored core.PausedRunState
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.False(t, restored.Resolved())

	require.NoError(t, restored.Approve(""))
	result := a.Resume(context.Background(), &restored)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "Done: transfer completed", result.Output)
}

func TestAgentResumeEquivalentToUninterruptedRun(t *testing.T) {
	run := func(confirm bool) []core.Item {
		fn := func(tc *core.ToolContext, args map[string]any) (any, error) {
			return "executed", nil
		}
		params := map[string]any{"type": "object", "properties": map[string]any{}}
		var optFns []func(o *tool.FunctionToolOptions)
		if confirm {
			optFns = append(optFns, tool.WithConfirmation())
		}
		t1 := tool.NewFunctionTool("step", "One step", params, fn, optFns...)

		llm := model.NewMockModel("test", "mock")
		llm.EnqueueToolCall("step", `{}`)
		llm.EnqueueText("finished")

		a := New("worker", llm, func(o *Options) {
			o.Tools = []tool.Tool{t1}
		})
		convo := core.NewContext().AddUserMessage("Do the step")

		result := a.Interact(context.Background(), convo)
		if confirm {
			require.True(t, result.IsPaused())
			require.NoError(t, result.Paused.Approve(""))
			result = a.Resume(context.Background(), result.Paused)
		}
		require.True(t, result.IsSuccess())

		return result.Context.History()
	}

	direct := run(false)
	resumed := run(true)

	require.Len(t, resumed, len(direct))
	for i := range direct {
		assert.Equal(t, direct[i].Kind, resumed[i].Kind, "item %d", i)
		assert.Equal(t, direct[i].Text, resumed[i].Text, "item %d", i)
		if direct[i].Output != nil {
			assert.Equal(t, direct[i].Output.Output, resumed[i].Output.Output, "item %d", i)
		}
	}
}

func TestAgentResumeValidation(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	a := New("banker", llm)

	var stateErr *core.ResumeStateError

	result := a.Resume(context.Background(), nil)
	require.True(t, result.IsError())
	assert.ErrorAs(t, result.Err, &stateErr)

	state := core.NewPausedRunState("someone_else", core.NewContext(), core.ToolCall{Name: "x"}, nil, 1)
	require.NoError(t, state.Approve(""))
	result = a.Resume(context.Background(), state)
	require.True(t, result.IsError())
	assert.ErrorAs(t, result.Err, &stateErr)

	unresolved := core.NewPausedRunState("banker", core.NewContext(), core.ToolCall{Name: "x"}, nil, 1)
	result = a.Resume(context.Background(), unresolved)
	require.True(t, result.IsError())
	assert.ErrorAs(t, result.Err, &stateErr)
}

func TestAgentInstructionTemplateFromState(t *testing.T) {
	llm := newCaptureModel()
	llm.EnqueueText("Aye aye!")

	a := New("assistant", llm, func(o *Options) {
		o.Instructions = NewInstructionFromText("Answer in the style of {{.persona}}.")
	})
	convo := core.NewContext().
		SetState("persona", "a pirate").
		AddUserMessage("Hello")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "Answer in the style of a pirate.", llm.LastRequest().Instructions)
}

func TestAgentInstructionProvider(t *testing.T) {
	llm := newCaptureModel()
	llm.EnqueueText("ok")

	a := New("assistant", llm, func(o *Options) {
		o.Instructions = NewInstructionFromFunc(func(convo *core.Context) (string, error) {
			return "Dynamic for " + convo.TraceID(), nil
		})
	})
	convo := core.NewContext().AddUserMessage("Hello")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Contains(t, llm.LastRequest().Instructions, "Dynamic for ")
}

func TestAgentAdvertisesToolsToModel(t *testing.T) {
	llm := newCaptureModel()
	llm.EnqueueText("ok")

	peer := answerStub("peer", "ok")
	a := New("assistant", llm, func(o *Options) {
		o.Tools = []tool.Tool{echoTool()}
		o.Handoffs = []Interactable{peer}
	})
	convo := core.NewContext().AddUserMessage("Hello")

	result := a.Interact(context.Background(), convo)
	require.True(t, result.IsSuccess())

	names := make([]string, 0, 2)
	for _, def := range llm.LastRequest().Tools {
		names = append(names, def.Function.Name)
	}
	assert.ElementsMatch(t, []string{"echo", "transfer_to_peer"}, names)
}

func TestNewPanicsOnToolNameCollision(t *testing.T) {
	llm := model.NewMockModel("test", "mock")

	assert.Panics(t, func() {
		New("assistant", llm, func(o *Options) {
			o.Tools = []tool.Tool{echoTool(), echoTool()}
		})
	})
}

func TestAgentMultipleToolCallsInOneTurn(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.Enqueue(model.Response{
		ToolCalls: []core.ToolCall{
			{CallID: core.NewID(), Name: "echo", Arguments: `{"text": "one"}`},
			{CallID: core.NewID(), Name: "echo", Arguments: `{"text": "two"}`},
		},
		FinishReason: "tool_calls",
	})
	llm.EnqueueText("both done")

	a := New("assistant", llm, func(o *Options) {
		o.Tools = []tool.Tool{echoTool()}
	})
	convo := core.NewContext().AddUserMessage("Echo twice")

	result := a.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	require.Len(t, result.ToolExecutions, 2)
	assert.Equal(t, "one", result.ToolExecutions[0].Output)
	assert.Equal(t, "two", result.ToolExecutions[1].Output)
}
