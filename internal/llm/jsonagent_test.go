package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeProvider) CallJSON(ctx context.Context, messages []Message) (string, Usage, error) {
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
	return resp, Usage{PromptTokens: 10, CompletionTokens: 5}, err
}

func (f *fakeProvider) GetName() string { return "fake" }

type decision struct {
	Action string `json:"action"`
}

func TestCallStructured_SucceedsFirstTry(t *testing.T) {
	p := &fakeProvider{responses: []string{`{"action":"click"}`}}
	var out decision
	usage, err := CallStructured(context.Background(), p, []Message{{Role: RoleUser, Content: "go"}}, &out)
	if err != nil {
		t.Fatalf("CallStructured: %v", err)
	}
	if out.Action != "click" {
		t.Errorf("Action = %q, want click", out.Action)
	}
	if usage.PromptTokens != 10 {
		t.Errorf("PromptTokens = %d, want 10", usage.PromptTokens)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 call, got %d", p.calls)
	}
}

func TestCallStructured_ReparsesOnceOnMalformedJSON(t *testing.T) {
	p := &fakeProvider{responses: []string{"not json", `{"action":"navigate"}`}}
	var out decision
	_, err := CallStructured(context.Background(), p, []Message{{Role: RoleUser, Content: "go"}}, &out)
	if err != nil {
		t.Fatalf("CallStructured: %v", err)
	}
	if out.Action != "navigate" {
		t.Errorf("Action = %q, want navigate", out.Action)
	}
	if p.calls != 2 {
		t.Errorf("expected 2 calls (reparse once), got %d", p.calls)
	}
}

func TestCallStructured_FailsAfterTwoMalformedResponses(t *testing.T) {
	p := &fakeProvider{responses: []string{"not json", "still not json"}}
	var out decision
	_, err := CallStructured(context.Background(), p, []Message{{Role: RoleUser, Content: "go"}}, &out)
	if err == nil {
		t.Error("expected protocol error after exhausting the reparse budget")
	}
	if p.calls != 2 {
		t.Errorf("expected exactly 2 calls, got %d", p.calls)
	}
}

func TestCallStructured_TransportErrorPropagates(t *testing.T) {
	p := &fakeProvider{errs: []error{errors.New("connection reset")}}
	var out decision
	_, err := CallStructured(context.Background(), p, []Message{{Role: RoleUser, Content: "go"}}, &out)
	if err == nil {
		t.Error("expected transport error to propagate without retry")
	}
	if p.calls != 1 {
		t.Errorf("expected no retry on transport error, got %d calls", p.calls)
	}
}
