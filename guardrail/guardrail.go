// Package guardrail implements validation checks that run against agent input
// before the first model call and against agent output after the run loop
// finishes. A failing guardrail aborts the run with a core.GuardrailError.
package guardrail

import "github.com/hupe1980/agentkit/core"

// Result reports the outcome of a single guardrail check.
type Result struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// Pass returns a passing result.
func Pass() Result { return Result{Passed: true} }

// Fail returns a failing result with the given reason.
func Fail(reason string) Result { return Result{Passed: false, Reason: reason} }

// Guardrail validates text in the context of a conversation. Input guardrails
// see the user request, output guardrails see the final assistant text. The
// conversation is read-only from a guardrail's point of view; checks must not
// mutate it.
type Guardrail interface {
	// Name identifies the guardrail in errors and logs.
	Name() string

	// Validate checks the text and returns a pass or fail result.
	Validate(text string, convo *core.Context) Result
}

// Func adapts a plain function into a named Guardrail.
type Func struct {
	GuardrailName string
	Fn            func(text string, convo *core.Context) Result
}

// Name returns the guardrail identifier.
func (f Func) Name() string { return f.GuardrailName }

// Validate runs the wrapped function.
func (f Func) Validate(text string, convo *core.Context) Result {
	return f.Fn(text, convo)
}

// New wraps fn as a named Guardrail.
func New(name string, fn func(text string, convo *core.Context) Result) Guardrail {
	return Func{GuardrailName: name, Fn: fn}
}

// RunAll evaluates guardrails in order and returns the first failure as a
// *core.GuardrailError, or nil when every check passes.
func RunAll(stage core.GuardrailStage, guardrails []Guardrail, text string, convo *core.Context) error {
	for _, g := range guardrails {
		result := g.Validate(text, convo)
		if !result.Passed {
			return &core.GuardrailError{Stage: stage, Name: g.Name(), Reason: result.Reason}
		}
	}
	return nil
}
