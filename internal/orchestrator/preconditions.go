package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/events"
	"github.com/omega-e2e/runner/internal/llm"
)

// runPreconditions executes every scenario precondition in order, planning
// a tool call via the Preconditioner for natural-language instructions and
// invoking explicit "mcp:" calls directly, storing results into memory
// under their store_as/as name (spec.md §4.1).
func runPreconditions(ctx context.Context, deps *Deps, scenario domain.ScenarioSpec) (float64, error) {
	var totalCost float64

	for i, p := range scenario.Preconditions {
		var tool string
		var args map[string]any

		if p.IsInstruction() {
			plan, usage, err := deps.Preconditioner.Plan(ctx, p.Instruction, deps.Registry.MutatingData(), deps.Registry.ReadOnlyData())
			if err != nil {
				return totalCost, fmt.Errorf("orchestrator: precondition %d: plan: %w", i, err)
			}
			totalCost += llm.EstimateCost(deps.Model, usage)
			tool, args = plan.Tool, plan.Args
		} else {
			tool, args = p.MCP, p.Params
		}

		raw, err := deps.Data.CallTool(ctx, tool, args)
		if err != nil {
			return totalCost, domain.NewTransportError(fmt.Sprintf("precondition %d: call %q", i, tool), err)
		}

		if name := p.StoreName(); name != "" {
			fields := map[string]any{}
			if err := json.Unmarshal([]byte(raw), &fields); err != nil {
				fields = map[string]any{"raw": raw}
			}
			deps.Memory.Set(name, domain.Record{
				Fields: fields,
				Meta:   &domain.RecordMeta{Origin: fmt.Sprintf("precondition:%s", tool), Purpose: "store_as hint from the scenario"},
			})
		}

		_ = deps.Sink.Emit(events.Event{
			Kind:     events.KindPrecondition,
			Scenario: scenario.ID,
			Data:     map[string]any{"tool": tool, "index": i},
		})
	}

	return totalCost, nil
}
