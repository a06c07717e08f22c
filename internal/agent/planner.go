package agent

import (
	"context"
	"fmt"

	"github.com/omega-e2e/runner/internal/ctxview"
	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/llm"
)

// PlanResult is the Planner's JSON contract: one Action to dispatch next,
// plus the reasoning recorded alongside the resulting StepResult
// (spec.md §4.1).
type PlanResult struct {
	Action domain.Action `json:"action"`
	Reason string        `json:"reason"`
}

// Planner chooses the next UI Action (or a goal.complete/goal.fail
// sentinel) given the current page state and goal.
type Planner struct {
	provider llm.LLMProvider
}

// NewPlanner builds a Planner over provider.
func NewPlanner(provider llm.LLMProvider) *Planner {
	return &Planner{provider: provider}
}

const plannerSystemPrompt = `You are the action planner for an automated end-to-end test runner
driving a live web application toward a goal. You see the current semantic
page projection (SDOM) and must choose exactly one next action.

Respond with ONLY a JSON object of the form:
{"action": {"tag": "navigate|click|type|interact|goal.complete|goal.fail", "url": "...", "selector": "...", "testId": "...", "text": "...", "clear": false, "checked": null}, "reason": "<one sentence>"}

Only populate the fields relevant to the chosen tag. Prefer testId over selector
when an element has one. Use "goal.complete" only when the success criterion is
clearly met; use "goal.fail" only when the goal is provably unreachable from here.
Do not repeat an action that already failed to make progress without changing
your target.`

// Decide asks the LLM for the next action given a PlannerView.
func (p *Planner) Decide(ctx context.Context, view ctxview.PlannerView, stagnationHint string) (PlanResult, llm.Usage, error) {
	user := fmt.Sprintf(
		"Goal: %s\nSuccess criterion: %s\n\nCurrent location: %s\nPage:\n%s\nMemory:\n%s\nSteps used: %d/%d\n%s",
		view.Goal.Description, view.Goal.Success, view.Location, describeSDOM(view.SDOM),
		describeMemory(view.Memory), view.StepsUsed, view.StepsMax, stagnationHint,
	)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: plannerSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}

	var result PlanResult
	usage, err := llm.CallStructured(ctx, p.provider, messages, &result)
	if err != nil {
		return PlanResult{}, usage, err
	}
	if result.Action.Tag == "" {
		return PlanResult{}, usage, domain.NewProtocolError("planner: empty action tag", nil)
	}
	return result, usage, nil
}
