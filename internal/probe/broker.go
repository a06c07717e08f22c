// Package probe implements the Probe Broker (spec.md §4.6, §4.7): it
// resolves "{{variable.path}}" templates against SharedMemory, fans out
// read-only data-service calls in parallel, and joins before the Semantic
// Validator runs.
package probe

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/omega-e2e/runner/internal/domain"
)

// templatePattern matches "{{variable.path}}" placeholders inside a probe
// argument value.
var templatePattern = regexp.MustCompile(`\{\{\s*([\w.]+)\s*\}\}`)

// Collaborator is the subset of rpc.Client the Probe Broker needs: calling
// a read-only data-service tool.
type Collaborator interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// Request is one probe the Probe Planner asked for: a tool name plus
// arguments that may contain "{{variable.path}}" templates.
type Request struct {
	Tool string
	Args map[string]any
}

// Broker resolves and executes probe requests against the data
// collaborator.
type Broker struct {
	data   Collaborator
	memory *domain.SharedMemory
}

// New builds a Broker over the data collaborator and the run's
// SharedMemory (used to resolve templates).
func New(data Collaborator, memory *domain.SharedMemory) *Broker {
	return &Broker{data: data, memory: memory}
}

// Resolve expands every "{{variable.path}}" template in args against the
// Broker's SharedMemory. An argument containing an unresolvable reference
// is left out of resolved, and the reference is reported back so the
// caller can decide whether to skip the probe
// (spec.md §4.6: "a probe whose template cannot be resolved is skipped,
// not run with a literal placeholder").
func (b *Broker) Resolve(args map[string]any) (resolved map[string]any, unresolved []string) {
	resolved = make(map[string]any, len(args))
	for k, v := range args {
		s, ok := v.(string)
		if !ok {
			resolved[k] = v
			continue
		}
		matches := templatePattern.FindAllStringSubmatch(s, -1)
		if len(matches) == 0 {
			resolved[k] = v
			continue
		}
		out := s
		ok2 := true
		for _, m := range matches {
			val, found := b.memory.Resolve(m[1])
			if !found {
				unresolved = append(unresolved, m[1])
				ok2 = false
				continue
			}
			out = strings.ReplaceAll(out, m[0], fmt.Sprint(val))
		}
		if ok2 {
			resolved[k] = out
		}
	}
	return resolved, unresolved
}

// Run executes every resolvable request in reqs concurrently against the
// data collaborator and returns one ProbeResult per request, in the same
// order as reqs. Requests with unresolved templates are skipped and
// reported as a failed ProbeResult rather than sent to the collaborator.
// readOnly is the Tool Registry's read-only data view (spec.md §4.6 step
// (a)); any request naming a tool outside it is rejected rather than
// executed, enforcing the boundary the Probe Planner's prompt only
// advises.
func (b *Broker) Run(ctx context.Context, reqs []Request, readOnly []domain.ToolDescriptor) []domain.ProbeResult {
	allowed := make(map[string]bool, len(readOnly))
	for _, t := range readOnly {
		allowed[t.Name] = true
	}

	results := make([]domain.ProbeResult, len(reqs))
	var wg sync.WaitGroup

	for i, req := range reqs {
		if !allowed[req.Tool] {
			results[i] = domain.ProbeResult{
				Tool:    req.Tool,
				Success: false,
				Error:   fmt.Sprintf("tool %q is not in the read-only data view", req.Tool),
			}
			continue
		}

		args, unresolved := b.Resolve(req.Args)
		if len(unresolved) > 0 {
			results[i] = domain.ProbeResult{
				Tool:    req.Tool,
				Success: false,
				Error:   fmt.Sprintf("unresolved template reference(s): %v", unresolved),
			}
			continue
		}

		wg.Add(1)
		go func(i int, tool string, args map[string]any) {
			defer wg.Done()
			resp, err := b.data.CallTool(ctx, tool, args)
			if err != nil {
				results[i] = domain.ProbeResult{Tool: tool, Success: false, Error: err.Error()}
				return
			}
			results[i] = domain.ProbeResult{Tool: tool, Success: true, Response: resp}
		}(i, req.Tool, args)
	}

	wg.Wait()
	return results
}
