// Package tools resolves tool-call requests from the agent stream against a
// static registry of adapters and packages the outcomes for injection back
// into the agent's input queue.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Adapter executes one tool invocation. Adapters report operational failures
// in-band through the envelope's "status"/"message" fields; a returned error
// is a fault and is converted by the dispatcher, never propagated.
type Adapter func(ctx context.Context, args map[string]any) (map[string]any, error)

// Registry maps tool names to adapters. The set is fixed at construction;
// there is no runtime registration.
type Registry struct {
	byName map[string]Adapter
}

// NewRegistry validates and builds a registry. Names are trimmed, so two
// keys that differ only in surrounding whitespace collapse to one name;
// that collision, an empty name, or a nil adapter is a construction error
// so a bad toolset fails at startup rather than on first dispatch.
func NewRegistry(adapters map[string]Adapter) (*Registry, error) {
	registry := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for name, fn := range adapters {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, fmt.Errorf("tool name must be non-empty")
		}
		if fn == nil {
			return nil, fmt.Errorf("tool %q has a nil adapter", trimmed)
		}
		if _, exists := registry.byName[trimmed]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", trimmed)
		}
		registry.byName[trimmed] = fn
	}
	return registry, nil
}

// Has reports whether name resolves to an adapter.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.byName[strings.TrimSpace(name)]
	return fn, ok
}
