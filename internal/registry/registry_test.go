package registry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/omega-e2e/runner/internal/rpc"
)

type fakeCollaborator struct {
	service string
	infos   []rpc.ToolInfo
	err     error
}

func (f fakeCollaborator) ListTools(ctx context.Context) ([]rpc.ToolInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.infos, nil
}

func (f fakeCollaborator) Service() string { return f.service }

func TestDiscover_ClassifiesReadOnlyAndService(t *testing.T) {
	ui := fakeCollaborator{service: "ui", infos: []rpc.ToolInfo{
		{Name: "ui.click", Description: "click an element", InputSchema: json.RawMessage(`{}`)},
		{Name: "ui.navigate", Description: "navigate to a URL"},
	}}
	data := fakeCollaborator{service: "data", infos: []rpc.ToolInfo{
		{Name: "orders.get", Description: "fetch an order"},
		{Name: "orders.cancel", Description: "cancel an order"},
	}}

	reg, err := Discover(context.Background(), ui, data)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if reg.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", reg.Len())
	}

	uiActions := reg.UIActions()
	if len(uiActions) != 2 {
		t.Fatalf("UIActions() = %d, want 2", len(uiActions))
	}

	readOnly := reg.ReadOnlyData()
	if len(readOnly) != 1 || readOnly[0].Name != "orders.get" {
		t.Fatalf("ReadOnlyData() = %+v", readOnly)
	}

	mutating := reg.MutatingData()
	if len(mutating) != 1 || mutating[0].Name != "orders.cancel" {
		t.Fatalf("MutatingData() = %+v", mutating)
	}
}

func TestDiscover_FailsOnTransportError(t *testing.T) {
	ui := fakeCollaborator{service: "ui", err: errors.New("connection refused")}
	data := fakeCollaborator{service: "data", infos: []rpc.ToolInfo{{Name: "orders.get"}}}

	_, err := Discover(context.Background(), ui, data)
	if err == nil {
		t.Fatal("expected error when a collaborator is unreachable")
	}
}

func TestDiscover_FailsOnZeroTools(t *testing.T) {
	ui := fakeCollaborator{service: "ui", infos: []rpc.ToolInfo{{Name: "ui.click"}}}
	data := fakeCollaborator{service: "data", infos: nil}

	_, err := Discover(context.Background(), ui, data)
	if err == nil {
		t.Fatal("expected error when a collaborator advertises zero tools")
	}
}

func TestRegistry_Get(t *testing.T) {
	ui := fakeCollaborator{service: "ui", infos: []rpc.ToolInfo{{Name: "ui.click"}}}
	data := fakeCollaborator{service: "data", infos: []rpc.ToolInfo{{Name: "orders.list"}}}

	reg, err := Discover(context.Background(), ui, data)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if _, ok := reg.Get("ui.click"); !ok {
		t.Error("expected ui.click to be found")
	}
	if _, ok := reg.Get("missing.tool"); ok {
		t.Error("expected missing.tool to be absent")
	}
}
