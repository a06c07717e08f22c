package agent

import (
	"context"
	"fmt"

	"github.com/omega-e2e/runner/internal/ctxview"
	"github.com/omega-e2e/runner/internal/llm"
)

// GoalVerdict is the Goal Checker's JSON contract: whether the run should
// terminate, and if so with which sentinel (spec.md §4.9).
type GoalVerdict struct {
	Terminate bool     `json:"terminate"`
	Tag       string   `json:"tag"` // "goal.complete" or "goal.fail", only meaningful if Terminate
	Reasoning string   `json:"reasoning"`
	CitedIDs  []string `json:"citedIds"`
}

// GoalChecker decides, from the accumulated evidence, whether a run has
// reached a terminal state.
type GoalChecker struct {
	provider llm.LLMProvider
}

// NewGoalChecker builds a GoalChecker over provider.
func NewGoalChecker(provider llm.LLMProvider) *GoalChecker {
	return &GoalChecker{provider: provider}
}

const goalCheckerSystemPrompt = `You are the goal checker for an automated end-to-end test runner. Given
the goal's success criterion and the recent validation outcomes (each with
an ID you must cite if you rely on it), decide whether the run should
terminate now.

Respond with ONLY a JSON object of the form:
{"terminate": true|false, "tag": "goal.complete"|"goal.fail"|"", "reasoning": "...", "citedIds": ["..."]}
Only cite outcome IDs that were actually given to you. Do not terminate
with goal.complete unless a cited outcome's evidence directly supports the
success criterion.`

// Check asks the LLM whether the run should terminate now.
func (g *GoalChecker) Check(ctx context.Context, view ctxview.GoalCheckerView) (GoalVerdict, llm.Usage, error) {
	var recent string
	if len(view.RecentOutcomes) == 0 {
		recent = "(no validation outcomes yet)"
	} else {
		for _, o := range view.RecentOutcomes {
			recent += fmt.Sprintf("- [%s] step %d passed=%v confidence=%.2f: %s\n", o.ID, o.Step, o.Passed, o.Confidence, o.Reasoning)
		}
	}

	user := fmt.Sprintf("Success criterion: %s\n\nRecent validation outcomes:\n%s\nMemory:\n%s",
		view.Goal.Success, recent, describeMemory(view.Memory))

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: goalCheckerSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}

	var verdict GoalVerdict
	usage, err := llm.CallStructured(ctx, g.provider, messages, &verdict)
	return verdict, usage, err
}
