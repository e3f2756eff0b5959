package agent

import (
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from conversation state, environment, etc.
type Provider interface {
	Instruction(convo *core.Context) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(convo *core.Context) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(convo *core.Context) (string, error) { return f(convo) }

// Instruction represents either a static instruction string or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way. Static text
// may contain {{.key}} template markers resolved from conversation state.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(convo *core.Context) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed and
// expanding template markers from conversation state.
func (i Instruction) Resolve(convo *core.Context) (string, error) {
	text := i.text
	if i.provider != nil {
		resolved, err := i.provider.Instruction(convo)
		if err != nil {
			return "", err
		}
		text = resolved
	}
	return util.RenderTemplate(text, convo.StateSnapshot())
}
