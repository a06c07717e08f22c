// Package registry implements the Tool Registry (spec.md §4.2): at run
// start it discovers every tool advertised by the two collaborator
// services, classifies each as read-only or mutating, and exposes the
// filtered views the rest of the runner needs (UI actions, read-only data
// probes, mutating data tools).
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/rpc"
)

// Collaborator is the subset of rpc.Client the Registry needs to discover
// tools, kept as an interface so tests can supply a fake.
type Collaborator interface {
	ListTools(ctx context.Context) ([]rpc.ToolInfo, error)
	Service() string
}

// Registry holds the merged, classified tool set for one run. It is built
// once at run start and is read-only thereafter.
type Registry struct {
	tools map[string]domain.ToolDescriptor
}

// Discover queries both collaborators for their tool lists and builds a
// Registry. Per spec.md §4.2, a run cannot start if either collaborator is
// unreachable or advertises zero tools.
func Discover(ctx context.Context, ui, data Collaborator) (*Registry, error) {
	reg := &Registry{tools: make(map[string]domain.ToolDescriptor)}

	for _, c := range []Collaborator{ui, data} {
		infos, err := c.ListTools(ctx)
		if err != nil {
			return nil, domain.NewTransportError(fmt.Sprintf("discover tools from %q", c.Service()), err)
		}
		if len(infos) == 0 {
			return nil, domain.NewTransportError(fmt.Sprintf("collaborator %q advertised zero tools", c.Service()), nil)
		}
		for _, info := range infos {
			reg.tools[info.Name] = domain.ToolDescriptor{
				Name:        info.Name,
				Description: info.Description,
				Schema:      info.InputSchema,
				ReadOnly:    classifyReadOnly(info.Name),
				Service:     c.Service(),
			}
		}
	}

	slog.Info("registry: discovered tools", "count", len(reg.tools))
	return reg, nil
}

// classifyReadOnly derives the ReadOnly flag for a tool name (spec.md §3,
// §4.1): ui.* tools are never read-only; everything else follows the
// name-suffix heuristic.
func classifyReadOnly(name string) bool {
	if domain.IsUIAction(name) {
		return false
	}
	return domain.DeriveReadOnly(name)
}

// Get looks up one tool descriptor by name.
func (r *Registry) Get(name string) (domain.ToolDescriptor, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns every descriptor, sorted by name.
func (r *Registry) All() []domain.ToolDescriptor {
	return r.filter(func(domain.ToolDescriptor) bool { return true })
}

// UIActions returns the ui.* tools the Planner may choose actions from.
func (r *Registry) UIActions() []domain.ToolDescriptor {
	return r.filter(func(t domain.ToolDescriptor) bool { return t.Service == "ui" })
}

// ReadOnlyData returns the read-only data tools the Probe Broker and
// Semantic Validator may invoke freely.
func (r *Registry) ReadOnlyData() []domain.ToolDescriptor {
	return r.filter(func(t domain.ToolDescriptor) bool { return t.Service == "data" && t.ReadOnly })
}

// MutatingData returns the mutating data tools, which only the
// Preconditioner may invoke (spec.md §4.1 "preconditions may mutate data").
func (r *Registry) MutatingData() []domain.ToolDescriptor {
	return r.filter(func(t domain.ToolDescriptor) bool { return t.Service == "data" && !t.ReadOnly })
}

func (r *Registry) filter(keep func(domain.ToolDescriptor) bool) []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, 0, len(r.tools))
	for _, t := range r.tools {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports the total number of discovered tools.
func (r *Registry) Len() int { return len(r.tools) }
