package probe

import (
	"context"
	"testing"

	"github.com/omega-e2e/runner/internal/domain"
)

type fakeData struct {
	calls []string
	args  []map[string]any
}

func (f *fakeData) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return `{"status":"ok"}`, nil
}

func TestBroker_Resolve_SubstitutesTemplate(t *testing.T) {
	mem := domain.NewSharedMemory()
	mem.Set("user", domain.Record{Fields: map[string]any{"email": "a@b.com"}})

	b := New(&fakeData{}, mem)
	resolved, unresolved := b.Resolve(map[string]any{"email": "{{user.email}}"})
	if len(unresolved) != 0 {
		t.Fatalf("unexpected unresolved: %v", unresolved)
	}
	if resolved["email"] != "a@b.com" {
		t.Errorf("email = %v, want a@b.com", resolved["email"])
	}
}

func TestBroker_Resolve_ReportsUnresolvedReference(t *testing.T) {
	mem := domain.NewSharedMemory()
	b := New(&fakeData{}, mem)

	_, unresolved := b.Resolve(map[string]any{"email": "{{missing.field}}"})
	if len(unresolved) != 1 || unresolved[0] != "missing.field" {
		t.Fatalf("unresolved = %v, want [missing.field]", unresolved)
	}
}

func readOnlyTools(names ...string) []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, len(names))
	for i, n := range names {
		out[i] = domain.ToolDescriptor{Name: n, Service: "data", ReadOnly: true}
	}
	return out
}

func TestBroker_Run_SkipsUnresolvableRequest(t *testing.T) {
	mem := domain.NewSharedMemory()
	data := &fakeData{}
	b := New(data, mem)

	results := b.Run(context.Background(), []Request{
		{Tool: "orders.get", Args: map[string]any{"id": "{{missing.id}}"}},
	}, readOnlyTools("orders.get"))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Success {
		t.Error("expected skipped probe to be marked unsuccessful")
	}
	if len(data.calls) != 0 {
		t.Errorf("expected no collaborator calls, got %v", data.calls)
	}
}

func TestBroker_Run_ExecutesResolvableRequestsConcurrently(t *testing.T) {
	mem := domain.NewSharedMemory()
	mem.Set("order", domain.Record{Fields: map[string]any{"id": "123"}})
	data := &fakeData{}
	b := New(data, mem)

	results := b.Run(context.Background(), []Request{
		{Tool: "orders.get", Args: map[string]any{"id": "{{order.id}}"}},
		{Tool: "orders.status", Args: map[string]any{"id": "{{order.id}}"}},
	}, readOnlyTools("orders.get", "orders.status"))
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("expected probe success, got %+v", r)
		}
	}
}

func TestBroker_Run_RejectsToolOutsideReadOnlyView(t *testing.T) {
	mem := domain.NewSharedMemory()
	data := &fakeData{}
	b := New(data, mem)

	results := b.Run(context.Background(), []Request{
		{Tool: "orders.cancel", Args: map[string]any{"id": "123"}},
	}, readOnlyTools("orders.get"))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Success {
		t.Error("expected a probe naming a non-read-only tool to be rejected")
	}
	if len(data.calls) != 0 {
		t.Errorf("expected no collaborator calls, got %v", data.calls)
	}
}
