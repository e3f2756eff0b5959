package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

func TestSupervisorDelegatesToWorker(t *testing.T) {
	research := answerStub("research", "Mars has two moons.")

	llm := model.NewMockModel("boss", "mock")
	llm.EnqueueToolCall("ask_research", `{"request": "How many moons does Mars have?"}`)
	llm.EnqueueText("According to my researcher, Mars has two moons.")

	sup := NewSupervisor("coordinator", llm, []Worker{
		{Member: research, Description: "Looks up facts"},
	})

	convo := core.NewContext().AddUserMessage("How many moons does Mars have?")
	result := sup.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "According to my researcher, Mars has two moons.", result.Output)
	assert.Equal(t, 1, research.Calls())

	require.Len(t, result.ToolExecutions, 1)
	exec := result.ToolExecutions[0]
	assert.Equal(t, "ask_research", exec.Tool)
	assert.True(t, exec.Success)
	assert.Equal(t, "Mars has two moons.", exec.Output)
}

func TestSupervisorAnswersDirectly(t *testing.T) {
	research := answerStub("research", "unused")

	llm := model.NewMockModel("boss", "mock")
	llm.EnqueueText("I can answer that myself.")

	sup := NewSupervisor("coordinator", llm, []Worker{
		{Member: research, Description: "Looks up facts"},
	})

	convo := core.NewContext().AddUserMessage("What is 2+2?")
	result := sup.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Equal(t, 0, research.Calls())
}

func TestSupervisorInstructionsListWorkers(t *testing.T) {
	llm := newCaptureModel()
	llm.EnqueueText("ok")

	sup := NewSupervisor("coordinator", llm, []Worker{
		{Member: answerStub("research", "x"), Description: "Looks up facts"},
		{Member: answerStub("writer", "x"), Description: "Drafts text"},
	})

	convo := core.NewContext().AddUserMessage("Hello")
	result := sup.Interact(context.Background(), convo)
	require.True(t, result.IsSuccess())

	instructions := llm.LastRequest().Instructions
	assert.Contains(t, instructions, "coordinator")
	assert.Contains(t, instructions, "research: Looks up facts")
	assert.Contains(t, instructions, "writer: Drafts text")

	names := make([]string, 0, 2)
	for _, def := range llm.LastRequest().Tools {
		names = append(names, def.Function.Name)
	}
	assert.ElementsMatch(t, []string{"ask_research", "ask_writer"}, names)
}

func TestSupervisorTreeDelegation(t *testing.T) {
	leaf := answerStub("analyst", "the metric is up 3%")

	midLLM := model.NewMockModel("mid", "mock")
	midLLM.EnqueueToolCall("ask_analyst", `{"request": "check the metric"}`)
	midLLM.EnqueueText("Analyst says the metric is up 3%.")
	mid := NewSupervisor("teamlead", midLLM, []Worker{
		{Member: leaf, Description: "Crunches numbers"},
	})

	topLLM := model.NewMockModel("top", "mock")
	topLLM.EnqueueToolCall("ask_teamlead", `{"request": "how is the metric?"}`)
	topLLM.EnqueueText("The team reports the metric is up 3%.")
	top := NewSupervisor("director", topLLM, []Worker{
		{Member: mid, Description: "Leads the analysis team"},
	})

	convo := core.NewContext().AddUserMessage("How is the metric doing?")
	result := top.Interact(context.Background(), convo)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "The team reports the metric is up 3%.", result.Output)
	assert.Equal(t, 1, leaf.Calls())
}

func TestSupervisorCustomOptions(t *testing.T) {
	llm := model.NewMockModel("boss", "mock")
	llm.EnqueueText("ok")

	sup := NewSupervisor("coordinator", llm, []Worker{
		{Member: answerStub("research", "x")},
	}, func(o *SupervisorOptions) {
		o.Options = append(o.Options, func(o *Options) {
			o.MaxTurns = 3
		})
	})

	assert.Equal(t, 3, sup.MaxTurns())
}
