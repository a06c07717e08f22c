package agent

import (
	"context"
	"testing"

	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/llm"
)

type fakeProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeProvider) CallJSON(ctx context.Context, messages []llm.Message) (string, llm.Usage, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	resp := ""
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, llm.Usage{PromptTokens: 10, CompletionTokens: 5}, err
}

func (f *fakeProvider) GetName() string { return "fake" }

func tools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{Name: "data.user.create", Description: "create a user", Service: "data"},
		{Name: "data.user.get", Description: "fetch a user", Service: "data", ReadOnly: true},
	}
}

func TestPreconditioner_Plan(t *testing.T) {
	p := &fakeProvider{responses: []string{`{"tool":"data.user.create","args":{"name":"Ada"},"reason":"seed a user"}`}}
	pre := NewPreconditioner(p)

	plan, _, err := pre.Plan(context.Background(), "create a user named Ada", tools(), nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Tool != "data.user.create" {
		t.Errorf("Tool = %q, want data.user.create", plan.Tool)
	}
	if plan.Args["name"] != "Ada" {
		t.Errorf("Args[name] = %v, want Ada", plan.Args["name"])
	}
}

func TestPreconditioner_EmptyToolIsProtocolError(t *testing.T) {
	p := &fakeProvider{responses: []string{`{"tool":"","args":{},"reason":"nothing to do"}`}}
	pre := NewPreconditioner(p)

	_, _, err := pre.Plan(context.Background(), "do nothing", tools(), nil)
	if err == nil {
		t.Fatal("expected protocol error for empty tool name")
	}
}
