package agent

import (
	"context"
	"fmt"

	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/llm"
	"github.com/omega-e2e/runner/internal/probe"
)

// ProbePlan is the Probe Planner's JSON contract: zero or more read-only
// data-service calls to run before the Semantic Validator judges the
// current step (spec.md §4.7).
type ProbePlan struct {
	Probes []probeCall `json:"probes"`
}

type probeCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// ToRequests converts the plan into probe.Request values the Probe Broker
// can execute.
func (p ProbePlan) ToRequests() []probe.Request {
	reqs := make([]probe.Request, len(p.Probes))
	for i, c := range p.Probes {
		reqs[i] = probe.Request{Tool: c.Tool, Args: c.Args}
	}
	return reqs
}

// ProbePlanner decides which read-only data probes, if any, corroborate
// the current UI state before validation.
type ProbePlanner struct {
	provider llm.LLMProvider
}

// NewProbePlanner builds a ProbePlanner over provider.
func NewProbePlanner(provider llm.LLMProvider) *ProbePlanner {
	return &ProbePlanner{provider: provider}
}

const probePlannerSystemPrompt = `You are the probe planner for an automated end-to-end test runner. Given
the goal, the action just taken, and the resulting page state, decide which
(if any) read-only backend data calls would help confirm the UI is showing
true state. Never probe on a page that looks like a plain, unsubmitted form
with no meaningful content yet — there is nothing to corroborate there.

Respond with ONLY a JSON object of the form:
{"probes": [{"tool": "<read-only tool name>", "args": {...}}]}
An empty "probes" array is a valid and often correct answer. Template
arguments may reference shared memory as "{{name.field}}".`

// Plan asks the LLM which read-only probes (if any) to run for this step.
func (pp *ProbePlanner) Plan(ctx context.Context, goal domain.Goal, action domain.Action, sdom domain.SDOM, readOnly []domain.ToolDescriptor) (ProbePlan, llm.Usage, error) {
	if sdom.LooksLikePureForm() {
		return ProbePlan{}, llm.Usage{}, nil
	}

	user := fmt.Sprintf(
		"Goal: %s\nAction just taken: %s targeting %s\nCurrent page:\n%s\nAvailable read-only tools:\n%s",
		goal.Description, action.Tag, firstNonEmpty(action.TestID, action.Selector, action.URL),
		describeSDOM(sdom), describeTools(readOnly),
	)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: probePlannerSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}

	var plan ProbePlan
	usage, err := llm.CallStructured(ctx, pp.provider, messages, &plan)
	return plan, usage, err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return "(none)"
}
