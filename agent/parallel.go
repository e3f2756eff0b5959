package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
)

// GroupOptions configures a Group.
type GroupOptions struct {
	// ShareState copies the base conversation's state into every member's
	// child context. History is never shared; members run on fresh
	// conversations seeded with the request.
	ShareState bool

	Logger logging.Logger
}

// Group fans a request out to several agents concurrently. Each member runs
// on its own child context so parallel runs never contend on shared history.
//
// Group itself satisfies Interactable: Interact behaves like RunAll and folds
// the member results into a composite (first member primary, rest related).
type Group struct {
	name       string
	members    []Interactable
	shareState bool
	logger     logging.Logger
}

// NewGroup creates a parallel execution group over the given members.
func NewGroup(name string, members []Interactable, optFns ...func(o *GroupOptions)) *Group {
	opts := GroupOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Group{
		name:       name,
		members:    members,
		shareState: opts.ShareState,
		logger:     opts.Logger,
	}
}

// Name returns the group's name.
func (g *Group) Name() string { return g.name }

// Members returns the group's members in registration order.
func (g *Group) Members() []Interactable { return g.members }

// RunAll runs every member concurrently against the request and returns the
// results in member order. It blocks until all members finish.
func (g *Group) RunAll(ctx context.Context, convo *core.Context, request string) []*core.RunResult {
	results := make([]*core.RunResult, len(g.members))

	var wg sync.WaitGroup
	for i, member := range g.members {
		wg.Add(1)
		go func(i int, member Interactable) {
			defer wg.Done()
			child := convo.Child(g.shareState, false, request)
			results[i] = member.Interact(ctx, child)
		}(i, member)
	}
	wg.Wait()

	g.logger.Debug("group.run_all.done", "group", g.name, "members", len(g.members))
	return results
}

// RunFirst runs every member concurrently and returns the first result of
// any kind, success or error, cancelling the rest the instant it arrives.
// Members observing the cancellation return error results with no recorded
// tool executions; those results are discarded.
func (g *Group) RunFirst(ctx context.Context, convo *core.Context, request string) *core.RunResult {
	if len(g.members) == 0 {
		return core.ErrorResult(fmt.Errorf("group %s has no members", g.name), convo, 0)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		member string
		result *core.RunResult
	}
	outcomes := make(chan outcome, len(g.members))

	for _, member := range g.members {
		go func(member Interactable) {
			child := convo.Child(g.shareState, false, request)
			outcomes <- outcome{member: member.Name(), result: member.Interact(ctx, child)}
		}(member)
	}

	o := <-outcomes
	cancel()
	g.logger.Info("group.run_first.winner", "group", g.name, "member", o.member)
	return o.result
}

// RunAndSynthesize fans the request out to all members, then asks the
// synthesizer to combine their outputs. The returned composite carries the
// synthesizer's result as primary and the member results as related.
func (g *Group) RunAndSynthesize(ctx context.Context, convo *core.Context, request string, synthesizer Interactable) *core.RunResult {
	results := g.RunAll(ctx, convo, request)

	prompt := fmt.Sprintf("Combine the following answers to the request %q into a single response.\n", request)
	for i, res := range results {
		name := g.members[i].Name()
		if res.IsSuccess() {
			prompt += fmt.Sprintf("\n[%s]: %s", name, res.Output)
		} else if res.IsError() {
			prompt += fmt.Sprintf("\n[%s]: (failed: %v)", name, res.Err)
		}
	}

	child := convo.Child(g.shareState, false, prompt)
	synthesized := synthesizer.Interact(ctx, child)

	return core.Composite(synthesized, results)
}

// Interact implements Interactable by running all members against the latest
// user message and folding the results into a composite.
func (g *Group) Interact(ctx context.Context, convo *core.Context) *core.RunResult {
	request, ok := convo.LastUserText()
	if !ok {
		return core.ErrorResult(fmt.Errorf("group %s requires a user message", g.name), convo, 0)
	}

	results := g.RunAll(ctx, convo, request)
	if len(results) == 0 {
		return core.ErrorResult(fmt.Errorf("group %s has no members", g.name), convo, 0)
	}
	return core.Composite(results[0], results[1:])
}
