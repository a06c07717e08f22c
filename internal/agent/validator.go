package agent

import (
	"context"
	"fmt"

	"github.com/omega-e2e/runner/internal/ctxview"
	"github.com/omega-e2e/runner/internal/llm"
)

// ValidationJudgment is the Semantic Validator's JSON contract, converted
// into a domain.ValidationOutcome by the caller once an ID/Step/Timestamp
// are assigned (spec.md §4.8).
type ValidationJudgment struct {
	Passed     bool     `json:"passed"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Evidence   []string `json:"evidence"`
	Concerns   []string `json:"concerns"`
}

// Validator judges whether the action just taken produced the expected
// semantic effect, cross-checking the SDOM/SDELTA against any probe
// results gathered for this step.
type Validator struct {
	provider llm.LLMProvider
}

// NewValidator builds a Validator over provider.
func NewValidator(provider llm.LLMProvider) *Validator {
	return &Validator{provider: provider}
}

const validatorSystemPrompt = `You are the semantic validator for an automated end-to-end test runner.
Given the goal, the action just taken, the page before and after, and any
backend probe results, judge whether the action had the expected semantic
effect. Cite concrete evidence from the page or probe results; never assert
something the evidence does not show.

Respond with ONLY a JSON object of the form:
{"passed": true|false, "confidence": 0.0-1.0, "reasoning": "...",
 "evidence": ["..."], "concerns": ["..."]}
If a successful probe result contradicts what the page shows, set passed to
false, keep confidence high, and name the mismatch in concerns (for example
"UI shows X but backend shows Y"). Set confidence below 0.7 if the evidence
is ambiguous.`

// Judge asks the LLM to produce a ValidationJudgment for a ValidatorView.
func (v *Validator) Judge(ctx context.Context, view ctxview.ValidatorView) (ValidationJudgment, llm.Usage, error) {
	var probeSummary string
	if len(view.ProbeResults) == 0 {
		probeSummary = "(no probes run this step)"
	} else {
		for _, pr := range view.ProbeResults {
			if pr.Success {
				probeSummary += fmt.Sprintf("- %s: %s\n", pr.Tool, pr.Response)
			} else {
				probeSummary += fmt.Sprintf("- %s: FAILED (%s)\n", pr.Tool, pr.Error)
			}
		}
	}

	user := fmt.Sprintf(
		"Goal: %s\nSuccess criterion: %s\n\nAction taken: %s\n\nPage before:\n%s\nPage after:\n%s\nChanges: +%d -%d ~%d\n\nProbe results:\n%s",
		view.Goal.Description, view.Goal.Success, view.Action.Tag,
		describeSDOM(view.Before), describeSDOM(view.After),
		len(view.SDELTA.Added), len(view.SDELTA.Removed), len(view.SDELTA.Changed),
		probeSummary,
	)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: validatorSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}

	var judgment ValidationJudgment
	usage, err := llm.CallStructured(ctx, v.provider, messages, &judgment)
	return judgment, usage, err
}
