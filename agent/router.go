package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
)

// Route pairs a target agent with the description the classifier sees.
type Route struct {
	Target      Interactable
	Description string
}

// RouterOptions configures a Router.
type RouterOptions struct {
	// Fallback handles requests that match no route. Without a fallback,
	// unmatched requests produce an error result.
	Fallback Interactable

	Logger logging.Logger
}

// Router classifies an incoming request with a single model call and
// delegates it to the matching route's target. The classifier model is asked
// to answer with the number of the best route, or 0 when none fit; route
// targets are never invoked during classification.
type Router struct {
	name       string
	classifier model.Model
	routes     []Route
	fallback   Interactable
	logger     logging.Logger
}

// NewRouter creates a router over the given routes.
func NewRouter(name string, classifier model.Model, routes []Route, optFns ...func(o *RouterOptions)) *Router {
	opts := RouterOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Router{
		name:       name,
		classifier: classifier,
		routes:     routes,
		fallback:   opts.Fallback,
		logger:     opts.Logger,
	}
}

// Name returns the router's name.
func (r *Router) Name() string { return r.name }

// Classify asks the classifier model which route should handle the request.
// It returns the 1-based route index, or 0 when no route matches.
func (r *Router) Classify(ctx context.Context, request string) (int, error) {
	if len(r.routes) == 0 {
		return 0, fmt.Errorf("router %s has no routes", r.name)
	}

	var sb strings.Builder
	sb.WriteString("Classify the request below into one of the following handlers.\n\n")
	for i, route := range r.routes {
		desc := route.Description
		if desc == "" {
			desc = route.Target.Name()
		}
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, route.Target.Name(), desc)
	}
	sb.WriteString("\nRespond with only the number of the best handler, or 0 if none match.")

	req := model.Request{
		Instructions: sb.String(),
		Items:        []core.Item{core.UserMessage(request)},
	}

	respCh, errCh := r.classifier.Generate(ctx, req)
	final, err := model.Collect(ctx, respCh, errCh, nil)
	if err != nil {
		return 0, fmt.Errorf("classification failed: %w", err)
	}

	choice, err := parseChoice(final.Text, len(r.routes))
	if err != nil {
		return 0, err
	}

	r.logger.Debug("router.classified", "router", r.name, "choice", choice)
	return choice, nil
}

// Route classifies the request and delegates to the matching target. An
// unmatched request goes to the fallback, or fails when none is configured.
func (r *Router) Route(ctx context.Context, convo *core.Context, request string) *core.RunResult {
	choice, err := r.Classify(ctx, request)
	if err != nil {
		return core.ErrorResult(err, convo, 0)
	}

	if choice == 0 {
		if r.fallback == nil {
			return core.ErrorResult(fmt.Errorf("no route matched the request and no fallback is configured"), convo, 0)
		}
		r.logger.Info("router.fallback", "router", r.name)
		child := convo.Child(true, false, request)
		return r.fallback.Interact(ctx, child)
	}

	target := r.routes[choice-1].Target
	r.logger.Info("router.delegate", "router", r.name, "target", target.Name())

	child := convo.Child(true, false, request)
	return target.Interact(ctx, child)
}

// Interact implements Interactable by routing the latest user message.
func (r *Router) Interact(ctx context.Context, convo *core.Context) *core.RunResult {
	request, ok := convo.LastUserText()
	if !ok {
		return core.ErrorResult(fmt.Errorf("router %s requires a user message", r.name), convo, 0)
	}
	return r.Route(ctx, convo, request)
}

// parseChoice extracts the classifier's numeric answer. Models occasionally
// wrap the number in prose, so the first integer token wins.
func parseChoice(text string, max int) (int, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(text), func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0, fmt.Errorf("classifier answered %q, expected a number", text)
	}

	choice, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("classifier answered %q, expected a number", text)
	}
	if choice < 0 || choice > max {
		return 0, fmt.Errorf("classifier chose %d, valid range is 0..%d", choice, max)
	}
	return choice, nil
}
