package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omega-e2e/runner/internal/domain"
)

type fakeUI struct {
	calls     []string
	argsSeen  []map[string]any
	observeJSON string
	err       error
}

func (f *fakeUI) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	f.calls = append(f.calls, name)
	f.argsSeen = append(f.argsSeen, args)
	if f.err != nil {
		return "", f.err
	}
	if name == "ui.observe" {
		return f.observeJSON, nil
	}
	return "ok", nil
}

func TestActor_Dispatch_NavigatesAndReobserves(t *testing.T) {
	ui := &fakeUI{observeJSON: `{"location":"/cart","title":"Cart","sdom":{"interactive":[],"content":[],"feedback":[]}}`}
	a := New(ui)
	a.sleep = func(time.Duration) {}

	obs, err := a.Dispatch(context.Background(), domain.Action{Tag: domain.ActionNavigate, URL: "https://shop.example.com/cart"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if obs.Location != "/cart" {
		t.Errorf("Location = %q, want /cart", obs.Location)
	}
	if len(ui.calls) != 2 || ui.calls[0] != "ui.navigate" || ui.calls[1] != "ui.observe" {
		t.Errorf("calls = %v, want [ui.navigate ui.observe]", ui.calls)
	}
	if ui.argsSeen[0]["url"] != "https://shop.example.com/cart" {
		t.Errorf("navigate args = %v", ui.argsSeen[0])
	}
}

func TestActor_Dispatch_ClickSendsTestID(t *testing.T) {
	ui := &fakeUI{observeJSON: `{"location":"/cart","sdom":{"interactive":[],"content":[],"feedback":[]}}`}
	a := New(ui)
	a.sleep = func(time.Duration) {}

	_, err := a.Dispatch(context.Background(), domain.Action{Tag: domain.ActionClick, TestID: "checkout-button"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if ui.argsSeen[0]["testId"] != "checkout-button" {
		t.Errorf("click args = %v", ui.argsSeen[0])
	}
}

func TestActor_Dispatch_RejectsSentinelAction(t *testing.T) {
	a := New(&fakeUI{})
	_, err := a.Dispatch(context.Background(), domain.Action{Tag: domain.ActionGoalComplete})
	if err == nil {
		t.Error("expected sentinel action to be rejected by Dispatch")
	}
}

func TestActor_Dispatch_TransportError(t *testing.T) {
	ui := &fakeUI{err: errors.New("connection reset")}
	a := New(ui)
	a.sleep = func(time.Duration) {}

	_, err := a.Dispatch(context.Background(), domain.Action{Tag: domain.ActionNavigate, URL: "https://shop.example.com/"})
	if err == nil {
		t.Error("expected transport error to propagate")
	}
}

func TestActor_Observe_DecodesObservation(t *testing.T) {
	ui := &fakeUI{observeJSON: `{"location":"/","title":"Home","sdom":{"interactive":[],"content":[],"feedback":[]}}`}
	a := New(ui)

	obs, err := a.Observe(context.Background())
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if obs.Title != "Home" {
		t.Errorf("Title = %q, want Home", obs.Title)
	}
}

func TestActor_Observe_MalformedJSON(t *testing.T) {
	ui := &fakeUI{observeJSON: `not json`}
	a := New(ui)

	_, err := a.Observe(context.Background())
	if err == nil {
		t.Error("expected protocol error for malformed observation JSON")
	}
}
