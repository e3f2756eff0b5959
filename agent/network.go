package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
)

// Contribution is one peer's statement in a network discussion.
type Contribution struct {
	Agent  string `json:"agent"`
	Round  int    `json:"round"`
	Output string `json:"output"`
}

// NetworkResult aggregates a finished discussion: every contribution in
// speaking order, plus the synthesizer's summary when one is configured.
type NetworkResult struct {
	Contributions []Contribution `json:"contributions"`
	Summary       string         `json:"summary,omitempty"`
}

// NetworkOptions configures a Network.
type NetworkOptions struct {
	// Rounds is the number of full passes over the peers during Discuss.
	Rounds int

	// Synthesizer, when set, produces a closing summary from the full
	// transcript after the final round.
	Synthesizer Interactable

	Logger logging.Logger
}

// Network coordinates a round-based discussion between peers over a shared,
// growing transcript. Within a round, peers speak in registration order and
// each sees everything said before its turn: a peer at position i in round r
// has r*len(peers)+i prior contributions in view.
type Network struct {
	name        string
	peers       []Interactable
	rounds      int
	synthesizer Interactable
	logger      logging.Logger
}

// NewNetwork creates a discussion network. The default is a single round
// with no synthesizer.
func NewNetwork(name string, peers []Interactable, optFns ...func(o *NetworkOptions)) *Network {
	opts := NetworkOptions{Rounds: 1, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Rounds <= 0 {
		opts.Rounds = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Network{
		name:        name,
		peers:       peers,
		rounds:      opts.Rounds,
		synthesizer: opts.Synthesizer,
		logger:      opts.Logger,
	}
}

// Name returns the network's name.
func (n *Network) Name() string { return n.name }

// Discuss runs the configured number of rounds over the topic sequentially.
// Each peer receives a copy of the shared transcript plus a role reminder,
// and its answer is appended to the transcript as "[peer]: output" before the
// next peer speaks. A failing peer aborts the discussion.
func (n *Network) Discuss(ctx context.Context, topic string) (*NetworkResult, error) {
	if len(n.peers) == 0 {
		return nil, fmt.Errorf("network %s has no peers", n.name)
	}

	shared := core.NewContext()
	shared.EnsureTrace()
	shared.AddUserMessage(topic)

	result := &NetworkResult{}

	for round := 1; round <= n.rounds; round++ {
		for _, peer := range n.peers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			peerConvo := shared.Copy()
			peerConvo.AddUserMessage(fmt.Sprintf(
				"You are %s. Considering the discussion so far, contribute your perspective. Round %d of %d.",
				peer.Name(), round, n.rounds,
			))

			res := peer.Interact(ctx, peerConvo)
			if !res.IsSuccess() {
				if res.Err != nil {
					return nil, fmt.Errorf("peer %s failed in round %d: %w", peer.Name(), round, res.Err)
				}
				return nil, fmt.Errorf("peer %s did not complete in round %d", peer.Name(), round)
			}

			n.logger.Debug("network.contribution", "network", n.name, "peer", peer.Name(), "round", round)

			shared.AddAssistantMessage(fmt.Sprintf("[%s]: %s", peer.Name(), res.Output))
			result.Contributions = append(result.Contributions, Contribution{
				Agent:  peer.Name(),
				Round:  round,
				Output: res.Output,
			})
		}
	}

	if n.synthesizer != nil {
		synthConvo := shared.Copy()
		synthConvo.AddUserMessage("Summarize the discussion above into a final answer.")
		res := n.synthesizer.Interact(ctx, synthConvo)
		if !res.IsSuccess() {
			if res.Err != nil {
				return nil, fmt.Errorf("synthesizer failed: %w", res.Err)
			}
			return nil, fmt.Errorf("synthesizer did not complete")
		}
		result.Summary = res.Output
	}

	return result, nil
}

// Broadcast sends the topic to every peer concurrently on fresh, isolated
// conversations. Unlike Discuss, peers never see each other's answers.
// Results keep peer registration order.
func (n *Network) Broadcast(ctx context.Context, topic string) []*core.RunResult {
	results := make([]*core.RunResult, len(n.peers))

	var wg sync.WaitGroup
	for i, peer := range n.peers {
		wg.Add(1)
		go func(i int, peer Interactable) {
			defer wg.Done()
			convo := core.NewContext()
			convo.AddUserMessage(topic)
			results[i] = peer.Interact(ctx, convo)
		}(i, peer)
	}
	wg.Wait()

	n.logger.Debug("network.broadcast.done", "network", n.name, "peers", len(n.peers))
	return results
}

// Interact implements Interactable: the latest user message becomes the
// discussion topic, and the summary (or the final contribution when no
// synthesizer is configured) is the output.
func (n *Network) Interact(ctx context.Context, convo *core.Context) *core.RunResult {
	topic, ok := convo.LastUserText()
	if !ok {
		return core.ErrorResult(fmt.Errorf("network %s requires a user message", n.name), convo, 0)
	}

	result, err := n.Discuss(ctx, topic)
	if err != nil {
		return core.ErrorResult(err, convo, 0)
	}

	output := result.Summary
	if output == "" && len(result.Contributions) > 0 {
		output = result.Contributions[len(result.Contributions)-1].Output
	}

	convo.AddAssistantMessage(output)
	return core.Success(output, convo, nil, 0)
}
