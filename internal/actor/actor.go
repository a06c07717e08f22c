// Package actor implements the UI Actor (spec.md §4.5): it dispatches a
// Guard-approved Action to the browser collaborator service, waits for the
// page to stabilize, and re-observes.
package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/omega-e2e/runner/internal/domain"
)

// stabilizationDelay is the fixed pause between dispatching an action and
// re-observing the page, giving client-side rendering time to settle
// (spec.md §4.5, Open Question "stabilization delay configurability" —
// resolved as a hardcoded constant; see DESIGN.md).
const stabilizationDelay = time.Second

// Collaborator is the subset of rpc.Client the Actor needs: invoking a
// ui.* tool and reading back the current observation.
type Collaborator interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// Actor dispatches Actions to the browser collaborator.
type Actor struct {
	ui    Collaborator
	sleep func(time.Duration)
}

// New builds an Actor over the given UI collaborator client.
func New(ui Collaborator) *Actor {
	return &Actor{ui: ui, sleep: time.Sleep}
}

// actionToolName maps an Action's tag to the ui.* tool invoked on the
// browser collaborator.
func actionToolName(tag domain.ActionTag) (string, error) {
	switch tag {
	case domain.ActionNavigate:
		return "ui.navigate", nil
	case domain.ActionClick:
		return "ui.click", nil
	case domain.ActionType:
		return "ui.type", nil
	case domain.ActionInteract:
		return "ui.interact", nil
	default:
		return "", fmt.Errorf("actor: %q is not a dispatchable UI action", tag)
	}
}

// actionArgs flattens an Action's populated fields into the tool call
// argument map expected by the browser collaborator.
func actionArgs(a domain.Action) map[string]any {
	args := map[string]any{}
	if a.URL != "" {
		args["url"] = a.URL
	}
	if a.Selector != "" {
		args["selector"] = a.Selector
	}
	if a.TestID != "" {
		args["testId"] = a.TestID
	}
	if a.Text != "" {
		args["text"] = a.Text
	}
	if a.Clear {
		args["clear"] = true
	}
	if a.Checked != nil {
		args["checked"] = *a.Checked
	}
	return args
}

// Dispatch sends action to the browser collaborator, waits for the
// stabilization delay, then fetches and returns the resulting Observation.
func (a *Actor) Dispatch(ctx context.Context, action domain.Action) (domain.Observation, error) {
	tool, err := actionToolName(action.Tag)
	if err != nil {
		return domain.Observation{}, err
	}

	if _, err := a.ui.CallTool(ctx, tool, actionArgs(action)); err != nil {
		return domain.Observation{}, domain.NewTransportError(fmt.Sprintf("dispatch %s", tool), err)
	}

	a.sleep(stabilizationDelay)

	return a.Observe(ctx)
}

// Observe fetches the current page's Observation without taking an action,
// used for the initial Observe phase and for re-observing after Dispatch.
func (a *Actor) Observe(ctx context.Context) (domain.Observation, error) {
	raw, err := a.ui.CallTool(ctx, "ui.observe", nil)
	if err != nil {
		return domain.Observation{}, domain.NewTransportError("observe", err)
	}

	var obs domain.Observation
	if err := json.Unmarshal([]byte(raw), &obs); err != nil {
		return domain.Observation{}, domain.NewProtocolError("decode observation", err)
	}
	return obs, nil
}
