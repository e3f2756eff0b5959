package agent

import (
	"context"
	"sync"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// stubAgent is a scriptable Interactable for orchestration tests.
type stubAgent struct {
	name string
	fn   func(ctx context.Context, convo *core.Context) *core.RunResult

	mu    sync.Mutex
	calls int
}

func newStubAgent(name string, fn func(ctx context.Context, convo *core.Context) *core.RunResult) *stubAgent {
	return &stubAgent{name: name, fn: fn}
}

// answerStub returns a stub that always succeeds with the given output.
func answerStub(name, output string) *stubAgent {
	return newStubAgent(name, func(_ context.Context, convo *core.Context) *core.RunResult {
		convo.AddAssistantMessage(output)
		return core.Success(output, convo, nil, 1)
	})
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Interact(ctx context.Context, convo *core.Context) *core.RunResult {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(ctx, convo)
}

func (s *stubAgent) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// captureModel records the last request passed to Generate.
type captureModel struct {
	*model.MockModel

	mu       sync.Mutex
	requests []model.Request
}

func newCaptureModel() *captureModel {
	return &captureModel{MockModel: model.NewMockModel("capture", "mock")}
}

func (c *captureModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	return c.MockModel.Generate(ctx, req)
}

func (c *captureModel) LastRequest() model.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

// echoTool returns its "text" argument unchanged.
func echoTool() tool.Tool {
	return tool.NewFunctionTool("echo", "Echo the given text", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return args["text"], nil
	})
}

// sensitiveTool mirrors echoTool but demands approval before executing.
func sensitiveTool() tool.Tool {
	return tool.NewFunctionTool("transfer_funds", "Transfer funds to an account", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{"type": "number"},
		},
		"required": []string{"amount"},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return "transfer completed", nil
	}, tool.WithConfirmation())
}
