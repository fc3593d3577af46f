// Package tool holds the catalog of billing tools and dispatches invocations to them.
package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/sfbilling/sfbilling/pkg/types"
)

// ErrDuplicateTool is returned when two descriptors share a name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// Handler executes a tool.
// Domain failures are reported through the returned error; the dispatcher turns them
// into a failed ToolResult carrying the error's message.
type Handler func(ctx context.Context, params Params) (*types.ToolResult, error)

// Descriptor pairs a tool's public contract with the handler that implements it.
type Descriptor struct {
	Name        string
	Description string
	InputSchema types.ToolInputSchema
	Handler     Handler
}

// Registry is the fixed, ordered catalog of invocable tools.
// It is built once and never changes afterwards, so it is safe for concurrent use.
type Registry struct {
	descriptors []Descriptor
	byName      map[string]int
}

// NewRegistry creates a registry holding the given descriptors in the given order.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		byName:      make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, errors.New("tool name must not be empty")
		}
		if d.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", d.Name)
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
		}
		r.byName[d.Name] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}
	return r, nil
}

// List returns the public definitions of all tools in registration order.
func (r *Registry) List() []types.ToolDefinition {
	defs := make([]types.ToolDefinition, len(r.descriptors))
	for i, d := range r.descriptors {
		defs[i] = types.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		}
	}
	return defs
}

// Find returns the descriptor with exactly the given name.
func (r *Registry) Find(name string) (Descriptor, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.descriptors)
}
