package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// Worker pairs an agent with the description its supervisor sees, plus the
// context sharing mode for delegated tasks.
type Worker struct {
	Member       Interactable
	Description  string
	ShareState   bool
	ShareHistory bool
}

// SupervisorOptions configures NewSupervisor on top of the regular agent
// options.
type SupervisorOptions struct {
	// Options is applied to the underlying agent after the supervisor
	// wiring, so instructions, guardrails and extra tools can be layered on.
	Options []func(o *Options)
}

// NewSupervisor builds an agent that delegates work to its workers through
// ask_<worker> tools. The supervisor decides per turn whether to answer
// directly or consult a worker, and workers may themselves be supervisors,
// which yields delegation trees of arbitrary depth.
func NewSupervisor(name string, llm model.Model, workers []Worker, optFns ...func(o *SupervisorOptions)) *Agent {
	opts := SupervisorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make([]tool.Tool, 0, len(workers))
	var roster strings.Builder
	for _, w := range workers {
		var subOpts []func(o *SubAgentOptions)
		if w.Description != "" {
			desc := fmt.Sprintf("Delegate a task to the %s agent. %s", w.Member.Name(), w.Description)
			subOpts = append(subOpts, func(o *SubAgentOptions) { o.Description = desc })
		}
		if w.ShareState {
			subOpts = append(subOpts, WithShareState())
		}
		if w.ShareHistory {
			subOpts = append(subOpts, WithShareHistory())
		}
		tools = append(tools, NewSubAgentTool(w.Member, subOpts...))

		desc := w.Description
		if desc == "" {
			desc = w.Member.Name()
		}
		fmt.Fprintf(&roster, "- %s: %s\n", w.Member.Name(), desc)
	}

	instructions := fmt.Sprintf(
		"You are %s, a supervisor coordinating a team of agents.\n"+
			"Your team:\n%s\n"+
			"Delegate tasks to the team member best suited for them using the ask_<agent> tools, "+
			"then combine their answers. Answer directly when no team member fits.",
		name, roster.String(),
	)

	agentOpts := append([]func(o *Options){
		func(o *Options) {
			o.Instructions = NewInstructionFromText(instructions)
			o.Tools = tools
		},
	}, opts.Options...)

	return New(name, llm, agentOpts...)
}
