// Package ctxview implements the Context Assembler (spec.md §4.3): it
// projects the run's SharedMemory, recent ValidationOutcomes and current
// Observation into the narrow, typed views each LLM Agent actually needs,
// mirroring the teacher's DecidePrep pattern of one prep struct per
// consumer instead of handing every agent the entire run state.
package ctxview

import (
	"github.com/omega-e2e/runner/internal/domain"
)

// recentOutcomeWindow bounds how many prior ValidationOutcomes are surfaced
// to an agent's context, keeping prompts bounded regardless of run length.
const recentOutcomeWindow = 5

// PlannerView is what the Planner agent sees each step.
type PlannerView struct {
	Goal        domain.Goal
	Location    string
	SDOM        domain.SDOM
	SDELTA      *domain.SDELTA
	Memory      map[string]domain.Record
	LastOutcome *domain.ValidationOutcome
	StepsUsed   int
	StepsMax    int
}

// ValidatorView is what the Semantic Validator sees each step.
type ValidatorView struct {
	Goal        domain.Goal
	Action      domain.Action
	Before      domain.SDOM
	After       domain.SDOM
	SDELTA      domain.SDELTA
	ProbeResults []domain.ProbeResult
	Memory      map[string]domain.Record
}

// CriticView is what the Critic sees when adjudicating a step or a done
// declaration.
type CriticView struct {
	Goal           domain.Goal
	Outcome        domain.ValidationOutcome
	RecentOutcomes []domain.ValidationOutcome
	StagnationHint string
}

// GoalCheckerView is what the Goal Checker sees to decide whether the run
// should terminate.
type GoalCheckerView struct {
	Goal           domain.Goal
	RecentOutcomes []domain.ValidationOutcome
	Memory         map[string]domain.Record
}

// Assembler builds typed views from the run's SharedMemory and Evidence
// Store. It holds no run-specific state itself beyond its dependencies, so
// one Assembler can serve an entire run.
type Assembler struct {
	memory *domain.SharedMemory
	recent func(n int) []domain.ValidationOutcome
}

// NewAssembler builds an Assembler over the given SharedMemory, with a
// recent-outcomes accessor supplied by the Evidence Store.
func NewAssembler(memory *domain.SharedMemory, recent func(n int) []domain.ValidationOutcome) *Assembler {
	return &Assembler{memory: memory, recent: recent}
}

// ForPlanner builds a PlannerView for the current observation and budgets.
func (a *Assembler) ForPlanner(goal domain.Goal, obs domain.Observation, budgets *domain.Budgets) PlannerView {
	recent := a.recent(1)
	var last *domain.ValidationOutcome
	if len(recent) > 0 {
		o := recent[len(recent)-1]
		last = &o
	}
	return PlannerView{
		Goal:        goal,
		Location:    obs.Location,
		SDOM:        obs.SDOM,
		Memory:      a.memory.Public(),
		LastOutcome: last,
		StepsUsed:   budgets.StepsUsed,
		StepsMax:    budgets.StepsMax,
	}
}

// ForValidator builds a ValidatorView for the action just taken and its
// observed before/after SDOMs plus any probe results gathered for it.
func (a *Assembler) ForValidator(goal domain.Goal, action domain.Action, before, after domain.Observation, delta domain.SDELTA, probes []domain.ProbeResult) ValidatorView {
	return ValidatorView{
		Goal:         goal,
		Action:       action,
		Before:       before.SDOM,
		After:        after.SDOM,
		SDELTA:       delta,
		ProbeResults: probes,
		Memory:       a.memory.Public(),
	}
}

// ForCritic builds a CriticView around one fresh outcome plus the recent
// window the Critic cross-checks it against.
func (a *Assembler) ForCritic(goal domain.Goal, outcome domain.ValidationOutcome, stagnationHint string) CriticView {
	return CriticView{
		Goal:           goal,
		Outcome:        outcome,
		RecentOutcomes: a.recent(recentOutcomeWindow),
		StagnationHint: stagnationHint,
	}
}

// ForGoalChecker builds a GoalCheckerView for the Goal Checker's
// continue-vs-terminate decision.
func (a *Assembler) ForGoalChecker(goal domain.Goal) GoalCheckerView {
	return GoalCheckerView{
		Goal:           goal,
		RecentOutcomes: a.recent(recentOutcomeWindow),
		Memory:         a.memory.Public(),
	}
}
