package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
)

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Scripted responses are consumed in FIFO order; when the script is empty the
// prompt map is consulted, and an echo response is produced as a last resort.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []Response
	responses map[string]string
	err       error
	calls     int
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends a scripted response consumed by the next Generate call.
func (m *MockModel) Enqueue(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// EnqueueText scripts a plain assistant text response.
func (m *MockModel) EnqueueText(text string) {
	m.Enqueue(Response{Text: text, FinishReason: "stop"})
}

// EnqueueToolCall scripts a response requesting a single tool call.
func (m *MockModel) EnqueueToolCall(name, arguments string) core.ToolCall {
	call := core.ToolCall{
		ID:        core.NewID(),
		CallID:    core.NewID(),
		Name:      name,
		Arguments: arguments,
	}
	m.Enqueue(Response{ToolCalls: []core.ToolCall{call}, FinishReason: "tool_calls"})
	return call
}

// FailWith makes every subsequent Generate call report err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CallCount returns how many times Generate has been invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model; emits optional streaming char chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.calls++
	failure := m.err
	var scripted *Response
	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		scripted = &r
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if failure != nil {
			errCh <- failure
			return
		}

		final := Response{FinishReason: "stop"}
		if scripted != nil {
			final = *scripted
		} else {
			input := lastUserText(req.Items)
			m.mu.Lock()
			text := m.responses[input]
			m.mu.Unlock()
			if text == "" {
				text = fmt.Sprintf("Mock response to: %s", input)
			}
			final.Text = text
		}

		if req.Stream && final.Text != "" {
			for _, r := range final.Text {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- final:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

func lastUserText(items []core.Item) string {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].IsUserMessage() {
			return items[i].Text
		}
	}
	return ""
}
