package guardrail

import (
	"fmt"
	"sort"
)

// Registry maps caller-supplied ids to guardrails so a configuration stored
// as a list of names (for example alongside a persisted run state) can be
// rebuilt into concrete checks. Registries are plain values passed at
// construction time; there is no process-wide instance.
type Registry struct {
	guardrails map[string]Guardrail
}

// NewRegistry builds a registry from the given guardrails, keyed by name.
func NewRegistry(guardrails ...Guardrail) (*Registry, error) {
	byName := make(map[string]Guardrail, len(guardrails))
	for _, g := range guardrails {
		if g.Name() == "" {
			return nil, fmt.Errorf("guardrail name must not be empty")
		}
		if _, exists := byName[g.Name()]; exists {
			return nil, fmt.Errorf("duplicate guardrail name %q", g.Name())
		}
		byName[g.Name()] = g
	}
	return &Registry{guardrails: byName}, nil
}

// Resolve looks up a guardrail by name.
func (r *Registry) Resolve(name string) (Guardrail, bool) {
	g, ok := r.guardrails[name]
	return g, ok
}

// Select returns the guardrails for the given names, in the given order. An
// unknown name is an error; stored configurations must not silently lose
// checks.
func (r *Registry) Select(names ...string) ([]Guardrail, error) {
	selected := make([]Guardrail, 0, len(names))
	for _, name := range names {
		g, ok := r.guardrails[name]
		if !ok {
			return nil, fmt.Errorf("unknown guardrail %q", name)
		}
		selected = append(selected, g)
	}
	return selected, nil
}

// Names returns all registered guardrail names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.guardrails))
	for name := range r.guardrails {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
