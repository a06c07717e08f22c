// Package critic implements the Critic (spec.md §4.8): a deterministic,
// non-LLM adjudicator that sits after the Semantic Validator on every step
// and again whenever the Goal Checker proposes a goal.complete/goal.fail
// termination. It never calls an LLM itself — it applies fixed decision
// tables over the Validator's structured output, the same way the
// teacher's exploration/loop detectors turn accumulated signals into a
// single deterministic verdict instead of asking the model to self-police.
package critic

import (
	"regexp"

	"github.com/omega-e2e/runner/internal/ctxview"
	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/evidence"
)

// mismatchPattern flags Concerns text that describes a UI/backend
// disagreement; on a high-confidence failed outcome with a successful probe
// it turns the verdict into failure instead of retry (spec.md §4.8).
var mismatchPattern = regexp.MustCompile(`(?i)mismatch|does not match|backend shows|backend confirms`)

// Verdict is the next-action-mode decision the Critic hands back to the
// Phase Controller after one Semantic Validator judgment.
type Verdict string

const (
	VerdictContinue Verdict = "continue"
	VerdictRetry    Verdict = "retry"
	VerdictFailure  Verdict = "failure"
)

// Critic applies the spec's deterministic adjudication rules. It holds no
// state of its own; every decision is a pure function of its inputs.
type Critic struct{}

// New builds a Critic.
func New() *Critic { return &Critic{} }

// AdjudicateStep decides the next-action-mode verdict for one step's
// outcome (spec.md §4.8 "Next-action mode"):
//   - passed ∧ confidence ≥ 0.7 → continue.
//   - ¬passed ∧ confidence ≥ 0.7 ∧ any backend probe succeeded ∧ any concern
//     matches the mismatch pattern → failure (a UI/backend mismatch is a
//     true bug, not a retryable event).
//   - everything else (including confidence < 0.7) → retry.
func (c *Critic) AdjudicateStep(view ctxview.CriticView) Verdict {
	o := view.Outcome

	if o.Passed && o.HighConfidence() {
		return VerdictContinue
	}

	if !o.Passed && o.HighConfidence() && anyProbeSucceeded(o.ProbeResults) && hasMismatchConcern(o.Concerns) {
		return VerdictFailure
	}

	return VerdictRetry
}

// DoneDeclaration is the outcome of adjudicating a Goal Checker sentinel
// against the accumulated evidence (spec.md §4.8 "done-declaration mode").
type DoneDeclaration struct {
	Accepted bool
	Reason   string
}

// AdjudicateDone checks a proposed goal.complete/goal.fail termination
// against the Evidence Store (spec.md §4.8 "Done-declaration mode").
// goal.fail requires no supporting evidence and is always accepted; for
// goal.complete every cited ID must exist, have passed, be high-confidence,
// not be stale (> 5 steps old at currentStep), and not be contradicted by a
// conflicting outcome at the same location without a recent high-confidence
// outcome resolving it — otherwise the termination is rejected (retried).
func (c *Critic) AdjudicateDone(tag domain.ActionTag, citedIDs []string, store *evidence.Store, currentStep int) DoneDeclaration {
	if tag == domain.ActionGoalFail {
		return DoneDeclaration{Accepted: true, Reason: "goal.fail requires no supporting evidence"}
	}

	if len(citedIDs) == 0 {
		return DoneDeclaration{Accepted: false, Reason: "cite existing outcomes: goal.complete cited no evidence"}
	}

	for _, id := range citedIDs {
		outcome, ok := store.Lookup(id)
		if !ok {
			return DoneDeclaration{Accepted: false, Reason: "cite existing outcomes: cited outcome " + id + " does not exist"}
		}
		if !outcome.Passed {
			return DoneDeclaration{Accepted: false, Reason: "cited outcome " + id + " did not pass"}
		}
		if !outcome.HighConfidence() {
			return DoneDeclaration{Accepted: false, Reason: "cited outcome " + id + " is below the confidence threshold"}
		}
		if store.Stale(id, currentStep) {
			return DoneDeclaration{Accepted: false, Reason: "Evidence is stale: cited outcome " + id + " is more than 5 steps old"}
		}
		if conflicting := store.Conflicts(outcome.Location, true); len(conflicting) > 0 {
			latestConflictStep := conflicting[0].Step
			for _, co := range conflicting[1:] {
				if co.Step > latestConflictStep {
					latestConflictStep = co.Step
				}
			}
			if !hasConfirmationAfter(store, outcome.Location, latestConflictStep) {
				return DoneDeclaration{Accepted: false, Reason: "cited outcome " + id + " is contradicted by a conflicting outcome at the same location"}
			}
		}
	}

	return DoneDeclaration{Accepted: true, Reason: "all cited outcomes are passing, high-confidence, current, and uncontested"}
}

func hasMismatchConcern(concerns []string) bool {
	for _, c := range concerns {
		if mismatchPattern.MatchString(c) {
			return true
		}
	}
	return false
}

func anyProbeSucceeded(results []domain.ProbeResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}

// hasConfirmationAfter reports whether the Store holds a passing,
// high-confidence outcome at location appended after afterStep — a more
// recent outcome that supersedes and resolves an earlier conflict there
// (spec.md §4.8 "no recent high-confidence outcome present").
func hasConfirmationAfter(store *evidence.Store, location string, afterStep int) bool {
	for _, o := range store.All() {
		if o.Location == location && o.Passed && o.HighConfidence() && o.Step > afterStep {
			return true
		}
	}
	return false
}
