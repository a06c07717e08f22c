// Package orchestrator implements the Phase Controller (spec.md §4.9): the
// single-threaded cooperative state machine that drives one scenario from
// its preconditions through Observe→GoalCheck→Plan→Guard→Act→ProbePlan→
// ProbeExecute→Validate→Critic, looping until the Goal Checker's
// termination is accepted by the Critic or a budget is exhausted.
//
// The loop itself is built on the teacher's internal/core graph-execution
// engine: one complete pass of the pipeline above is a single core.Node,
// wrapped in a core.Flow whose successor-routing doubles as the step loop
// (ActionContinue routes back to the same node; ActionSuccess/ActionFailure
// have no successor and end the Flow). This keeps core's generic
// Prep/Exec/Post/retry machinery genuinely exercised rather than
// reimplementing a bespoke for-loop beside it.
package orchestrator

import (
	"context"
	"time"

	"github.com/omega-e2e/runner/internal/actor"
	"github.com/omega-e2e/runner/internal/agent"
	"github.com/omega-e2e/runner/internal/critic"
	"github.com/omega-e2e/runner/internal/ctxview"
	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/evidence"
	"github.com/omega-e2e/runner/internal/events"
	"github.com/omega-e2e/runner/internal/guard"
	"github.com/omega-e2e/runner/internal/probe"
	"github.com/omega-e2e/runner/internal/registry"
)

// DataCollaborator is the subset of rpc.Client the orchestrator dials
// directly to run explicit ("mcp:") preconditions.
type DataCollaborator interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// Deps bundles every component one Run needs. cmd/omegarun builds a fresh
// Deps for each scenario (sharing the collaborator clients and LLM client)
// and passes it to Run.
type Deps struct {
	Registry       *registry.Registry
	Actor          *actor.Actor
	Guard          *guard.Guard
	Broker         *probe.Broker
	Data           DataCollaborator
	Preconditioner *agent.Preconditioner
	Planner        *agent.Planner
	ProbePlanner   *agent.ProbePlanner
	Validator      *agent.Validator
	GoalChecker    *agent.GoalChecker
	Critic         *critic.Critic
	Evidence       *evidence.Store
	Assembler      *ctxview.Assembler
	Memory         *domain.SharedMemory
	Sink           events.Sink
	Model          string
	Now            func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
