package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/omega-e2e/runner/internal/core"
	"github.com/omega-e2e/runner/internal/critic"
	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/events"
	"github.com/omega-e2e/runner/internal/llm"
)

// stagnationWindow is how many of the most recent non-navigate targets the
// Planner's stagnation hint is built from (spec.md Glossary "Stagnation").
const stagnationWindow = 3

// runState is the mutable state threaded through the Flow across steps.
// Component dependencies are held by StepNode itself, not here, since
// core.BaseNode's Exec does not receive the state pointer.
type runState struct {
	scenario    domain.ScenarioSpec
	budgets     *domain.Budgets
	step        int
	current     domain.Observation
	lastTargets []string
	record      domain.RunRecord
	result      *domain.ScenarioResult
}

// stepInput is the read-only snapshot Exec operates on, assembled by Prep
// from runState.
type stepInput struct {
	scenario    domain.ScenarioSpec
	budgets     *domain.Budgets
	step        int
	current     domain.Observation
	lastTargets []string
}

// stepOutcome is what one pipeline pass produced, applied to runState by
// Post.
type stepOutcome struct {
	err         error
	observation domain.Observation
	stepResult  *domain.StepResult
	newTargets  []string
	verdict     critic.Verdict
	terminal    bool
	status      domain.ScenarioStatus
	reason      string
}

// StepNode is one complete Observe→GoalCheck→Plan→Guard→Act→ProbePlan→
// ProbeExecute→Validate→Critic pass, wrapped as a core.BaseNode so the
// teacher's Flow drives the step loop (spec.md §4.9).
type StepNode struct {
	deps *Deps
}

// NewStepNode builds a StepNode over the given dependencies.
func NewStepNode(deps *Deps) *StepNode {
	return &StepNode{deps: deps}
}

func (n *StepNode) Prep(state *runState) []stepInput {
	if state.result != nil {
		return nil
	}
	now := n.deps.now()
	if state.budgets.StepsExceeded() || state.budgets.CostExceeded() || state.budgets.WallExceeded(now) {
		state.result = &domain.ScenarioResult{
			Status:     domain.StatusError,
			TotalSteps: state.step,
			Duration:   now.Sub(state.budgets.StartedAt),
			TotalCost:  state.budgets.CostUsed,
			Error:      "budget exhausted before next step",
		}
		return nil
	}
	return []stepInput{{
		scenario:    state.scenario,
		budgets:     state.budgets,
		step:        state.step,
		current:     state.current,
		lastTargets: state.lastTargets,
	}}
}

func (n *StepNode) ExecFallback(err error) stepOutcome {
	return stepOutcome{err: err}
}

func (n *StepNode) Exec(ctx context.Context, in stepInput) (stepOutcome, error) {
	d := n.deps
	goal := in.scenario.Goal
	now := d.now()
	var cost float64
	var tokens int

	accumulate := func(u llm.Usage) {
		cost += llm.EstimateCost(d.Model, u)
		tokens += u.PromptTokens + u.CompletionTokens
	}

	// GoalCheck
	goalView := d.Assembler.ForGoalChecker(goal)
	verdict, usage, err := d.GoalChecker.Check(ctx, goalView)
	if err != nil {
		return stepOutcome{}, fmt.Errorf("orchestrator: goal check: %w", err)
	}
	accumulate(usage)

	if verdict.Terminate {
		tag, ok := sentinelTag(verdict.Tag)
		if ok {
			decl := d.Critic.AdjudicateDone(tag, verdict.CitedIDs, d.Evidence, in.step)
			_ = d.Sink.Emit(events.Event{Kind: events.KindGoalCheck, Scenario: in.scenario.ID, Step: in.step, Data: verdict})
			_ = d.Sink.Emit(events.Event{Kind: events.KindCriticDecision, Scenario: in.scenario.ID, Step: in.step, Data: decl})
			if decl.Accepted {
				status := domain.StatusSuccess
				if tag == domain.ActionGoalFail {
					status = domain.StatusFailure
				}
				return stepOutcome{
					observation: in.current,
					newTargets:  in.lastTargets,
					terminal:    true,
					status:      status,
					reason:      decl.Reason,
				}, nil
			}
		}
	}

	// Plan
	plannerView := d.Assembler.ForPlanner(goal, in.current, in.budgets)
	hint := stagnationHint(in.lastTargets)
	planResult, usage, err := d.Planner.Decide(ctx, plannerView, hint)
	if err != nil {
		return stepOutcome{}, fmt.Errorf("orchestrator: plan: %w", err)
	}
	accumulate(usage)

	if planResult.Action.IsSentinel() {
		// Only the Goal Checker + Critic may terminate a run; a
		// Planner-proposed sentinel is logged and ignored so the loop
		// continues rather than ending on unreviewed evidence.
		_ = d.Sink.Emit(events.Event{
			Kind: events.KindCriticDecision, Scenario: in.scenario.ID, Step: in.step,
			Data: critic.DoneDeclaration{Accepted: false, Reason: "planner proposed a sentinel action without going through the goal checker"},
		})
		return stepOutcome{observation: in.current, newTargets: in.lastTargets, verdict: critic.VerdictContinue}, nil
	}

	// Guard
	if gerr := d.Guard.Check(planResult.Action, in.current.SDOM, in.budgets, now); gerr != nil {
		_ = d.Sink.Emit(events.Event{Kind: events.KindCriticDecision, Scenario: in.scenario.ID, Step: in.step, Data: gerr.Error()})
		return stepOutcome{
			observation: in.current,
			newTargets:  in.lastTargets,
			terminal:    true,
			status:      domain.StatusFailure,
			reason:      gerr.Error(),
		}, nil
	}

	// Act
	before := in.current
	after, err := d.Actor.Dispatch(ctx, planResult.Action)
	if err != nil {
		return stepOutcome{}, fmt.Errorf("orchestrator: dispatch: %w", err)
	}
	delta := domain.DiffObservations(before, after)

	// ProbePlan + ProbeExecute
	probePlan, usage, err := d.ProbePlanner.Plan(ctx, goal, planResult.Action, after.SDOM, d.Registry.ReadOnlyData())
	if err != nil {
		return stepOutcome{}, fmt.Errorf("orchestrator: probe plan: %w", err)
	}
	accumulate(usage)
	probeResults := d.Broker.Run(ctx, probePlan.ToRequests(), d.Registry.ReadOnlyData())

	// Validate
	validatorView := d.Assembler.ForValidator(goal, planResult.Action, before, after, delta, probeResults)
	judgment, usage, err := d.Validator.Judge(ctx, validatorView)
	if err != nil {
		return stepOutcome{}, fmt.Errorf("orchestrator: validate: %w", err)
	}
	accumulate(usage)

	outcome := domain.ValidationOutcome{
		ID:           fmt.Sprintf("v%d", in.step+1),
		Step:         in.step + 1,
		Timestamp:    now,
		Passed:       judgment.Passed,
		Confidence:   judgment.Confidence,
		Reasoning:    judgment.Reasoning,
		Evidence:     judgment.Evidence,
		Concerns:     judgment.Concerns,
		ProbeResults: probeResults,
		Location:     after.Location,
		SDOM:         after.SDOM,
		SDELTA:       &delta,
	}
	d.Evidence.Append(outcome)
	_ = d.Sink.Emit(events.Event{Kind: events.KindValidationOutcome, Scenario: in.scenario.ID, Step: in.step + 1, Data: outcome})

	// Critic
	criticView := d.Assembler.ForCritic(goal, outcome, hint)
	stepVerdict := d.Critic.AdjudicateStep(criticView)
	_ = d.Sink.Emit(events.Event{Kind: events.KindCriticDecision, Scenario: in.scenario.ID, Step: in.step + 1, Data: stepVerdict})

	stepResult := domain.StepResult{
		Step:        in.step + 1,
		Observation: after,
		Action:      planResult.Action,
		PlanReason:  planResult.Reason,
		TokensUsed:  tokens,
		CostUSD:     cost,
		ServerTime:  now,
	}
	_ = d.Sink.Emit(events.Event{Kind: events.KindStep, Scenario: in.scenario.ID, Step: in.step + 1, Data: stepResult})

	out := stepOutcome{
		observation: after,
		stepResult:  &stepResult,
		newTargets:  pushTarget(in.lastTargets, planResult.Action),
		verdict:     stepVerdict,
	}
	if stepVerdict == critic.VerdictFailure {
		out.terminal = true
		out.status = domain.StatusFailure
		out.reason = "critic declared failure: " + judgment.Reasoning
	}
	return out, nil
}

func (n *StepNode) Post(state *runState, _ []stepInput, results ...stepOutcome) core.Action {
	if len(results) == 0 {
		if state.result != nil && state.result.Status == domain.StatusSuccess {
			return core.ActionSuccess
		}
		return core.ActionFailure
	}

	res := results[0]
	if res.err != nil {
		state.result = &domain.ScenarioResult{
			Status:     domain.StatusError,
			TotalSteps: state.step,
			Duration:   n.deps.now().Sub(state.budgets.StartedAt),
			TotalCost:  state.budgets.CostUsed,
			Error:      res.err.Error(),
		}
		return core.ActionFailure
	}

	state.current = res.observation
	state.lastTargets = res.newTargets

	if res.stepResult != nil {
		state.step++
		state.budgets.AddStep()
		state.budgets.AddCost(res.stepResult.CostUSD)
		state.record.Steps = append(state.record.Steps, *res.stepResult)
	}

	if res.terminal {
		state.result = &domain.ScenarioResult{
			Status:     res.status,
			TotalSteps: state.step,
			Duration:   n.deps.now().Sub(state.budgets.StartedAt),
			TotalCost:  state.budgets.CostUsed,
			Error:      res.reason,
		}
		if res.status == domain.StatusSuccess {
			return core.ActionSuccess
		}
		return core.ActionFailure
	}

	return core.ActionContinue
}

func sentinelTag(tag string) (domain.ActionTag, bool) {
	switch tag {
	case string(domain.ActionGoalComplete):
		return domain.ActionGoalComplete, true
	case string(domain.ActionGoalFail):
		return domain.ActionGoalFail, true
	default:
		return "", false
	}
}

// pushTarget appends action's stagnation key unless it is a navigation,
// which always resets forward progress and is exempt (spec.md §4.9).
func pushTarget(lastTargets []string, action domain.Action) []string {
	if action.IsNavigate() {
		return lastTargets
	}
	tag, target := action.TargetKey()
	out := append(append([]string{}, lastTargets...), tag+"|"+target)
	if len(out) > stagnationWindow {
		out = out[len(out)-stagnationWindow:]
	}
	return out
}

// stagnationHint returns a warning string for the Planner when the last
// stagnationWindow non-navigate actions all targeted the same element.
func stagnationHint(lastTargets []string) string {
	if len(lastTargets) < stagnationWindow {
		return ""
	}
	first := lastTargets[len(lastTargets)-stagnationWindow]
	for _, t := range lastTargets[len(lastTargets)-stagnationWindow:] {
		if t != first {
			return ""
		}
	}
	return "Warning: the last actions repeatedly targeted the same element without making progress. Choose a different action or target."
}

// Run drives one scenario from preconditions through termination.
func Run(ctx context.Context, deps *Deps, scenario domain.ScenarioSpec) (domain.RunRecord, error) {
	startedAt := deps.now()
	runID := uuid.NewString()
	_ = deps.Sink.Emit(events.Event{Kind: events.KindScenarioStart, Scenario: scenario.ID, Data: map[string]any{"runId": runID, "goal": scenario.Goal}})

	preconditionCost, err := runPreconditions(ctx, deps, scenario)
	if err != nil {
		return domain.RunRecord{RunID: runID, ScenarioID: scenario.ID}, err
	}

	initial, err := deps.Actor.Dispatch(ctx, domain.Action{Tag: domain.ActionNavigate, URL: scenario.Context.StartURL})
	if err != nil {
		return domain.RunRecord{RunID: runID, ScenarioID: scenario.ID}, fmt.Errorf("orchestrator: initial navigation: %w", err)
	}

	budgets := domain.NewBudgets(scenario.Constraints, startedAt)
	budgets.AddCost(preconditionCost)

	state := &runState{
		scenario: scenario,
		budgets:  budgets,
		current:  initial,
		record:   domain.RunRecord{RunID: runID, ScenarioID: scenario.ID},
	}

	node := core.NewNode[runState, stepInput, stepOutcome](NewStepNode(deps), 0)
	node.AddSuccessor(node, core.ActionContinue)
	flow := core.NewFlow[runState](node)
	flow.Run(ctx, state)

	if state.result == nil {
		state.result = &domain.ScenarioResult{
			Status:     domain.StatusError,
			TotalSteps: state.step,
			Duration:   deps.now().Sub(startedAt),
			TotalCost:  state.budgets.CostUsed,
			Error:      "run ended without a terminal result",
		}
	}

	state.record.Result = *state.result
	_ = deps.Sink.Emit(events.Event{Kind: events.KindScenarioEnd, Scenario: scenario.ID, Data: state.record.Result})
	return state.record, nil
}
