package agent

import (
	"context"
	"testing"

	"github.com/omega-e2e/runner/internal/domain"
)

func TestProbePlanner_Plan(t *testing.T) {
	p := &fakeProvider{responses: []string{`{"probes":[{"tool":"data.user.get","args":{"id":"{{user.id}}"}}]}`}}
	pp := NewProbePlanner(p)

	sdom := domain.SDOM{
		Content: []domain.ContentElement{
			{Kind: "heading", Text: "Welcome"},
			{Kind: "paragraph", Text: "Your account was created."},
			{Kind: "paragraph", Text: "id: 42"},
		},
	}
	action := domain.Action{Tag: domain.ActionClick, TestID: "submit-btn"}
	goal := domain.Goal{Description: "create a user"}

	plan, _, err := pp.Plan(context.Background(), goal, action, sdom, tools())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Probes) != 1 {
		t.Fatalf("len(Probes) = %d, want 1", len(plan.Probes))
	}
	if plan.Probes[0].Tool != "data.user.get" {
		t.Errorf("Probes[0].Tool = %q, want data.user.get", plan.Probes[0].Tool)
	}

	reqs := plan.ToRequests()
	if len(reqs) != 1 || reqs[0].Tool != "data.user.get" {
		t.Errorf("ToRequests() = %+v, want one data.user.get request", reqs)
	}
}

func TestProbePlanner_SkipsLLMCallOnPureForm(t *testing.T) {
	p := &fakeProvider{responses: []string{`{"probes":[{"tool":"data.user.get","args":{}}]}`}}
	pp := NewProbePlanner(p)

	sdom := domain.SDOM{
		Interactive: []domain.InteractiveElement{
			{Type: domain.ElementInput, Label: "Name", TestID: "name-input"},
			{Type: domain.ElementInput, Label: "Email", TestID: "email-input"},
		},
	}
	action := domain.Action{Tag: domain.ActionNavigate, URL: "/signup"}
	goal := domain.Goal{Description: "fill out the form"}

	plan, usage, err := pp.Plan(context.Background(), goal, action, sdom, tools())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Probes) != 0 {
		t.Errorf("expected empty plan on pure form, got %+v", plan.Probes)
	}
	if usage.PromptTokens != 0 || usage.CompletionTokens != 0 {
		t.Errorf("expected zero usage when short-circuited, got %+v", usage)
	}
	if p.calls != 0 {
		t.Errorf("expected no LLM call on pure form, got %d calls", p.calls)
	}
}
