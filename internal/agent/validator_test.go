package agent

import (
	"context"
	"testing"

	"github.com/omega-e2e/runner/internal/ctxview"
	"github.com/omega-e2e/runner/internal/domain"
)

func TestValidator_JudgeWithProbeResults(t *testing.T) {
	p := &fakeProvider{responses: []string{
		`{"passed":true,"confidence":0.9,"reasoning":"welcome message matches the created user","evidence":["heading: Welcome Ada"],"concerns":[]}`,
	}}
	v := NewValidator(p)

	view := ctxview.ValidatorView{
		Goal:   domain.Goal{Description: "create a user", Success: "a welcome message appears"},
		Action: domain.Action{Tag: domain.ActionClick, TestID: "submit-btn"},
		Before: domain.SDOM{},
		After: domain.SDOM{
			Content: []domain.ContentElement{{Kind: "heading", Text: "Welcome Ada"}},
		},
		SDELTA: domain.SDELTA{Added: []string{"content:Welcome Ada"}},
		ProbeResults: []domain.ProbeResult{
			{Tool: "data.user.get", Success: true, Response: `{"name":"Ada"}`},
		},
	}

	judgment, _, err := v.Judge(context.Background(), view)
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if !judgment.Passed {
		t.Error("expected Passed = true")
	}
	if judgment.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", judgment.Confidence)
	}
	if len(judgment.Evidence) != 1 {
		t.Errorf("len(Evidence) = %d, want 1", len(judgment.Evidence))
	}
}

func TestValidator_JudgeWithFailedProbe(t *testing.T) {
	p := &fakeProvider{responses: []string{
		`{"passed":false,"confidence":0.3,"reasoning":"backend probe failed to confirm the record","evidence":[],"concerns":["probe error"]}`,
	}}
	v := NewValidator(p)

	view := ctxview.ValidatorView{
		Goal:   domain.Goal{Description: "create a user", Success: "a welcome message appears"},
		Action: domain.Action{Tag: domain.ActionClick, TestID: "submit-btn"},
		ProbeResults: []domain.ProbeResult{
			{Tool: "data.user.get", Success: false, Error: "not found"},
		},
	}

	judgment, _, err := v.Judge(context.Background(), view)
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if judgment.Passed {
		t.Error("expected Passed = false")
	}
	if judgment.Confidence >= 0.7 {
		t.Errorf("Confidence = %v, want below 0.7 on a failed probe", judgment.Confidence)
	}
}

func TestValidator_NoProbesRun(t *testing.T) {
	p := &fakeProvider{responses: []string{
		`{"passed":true,"confidence":0.8,"reasoning":"page updated as expected","evidence":["feedback: saved"],"concerns":[]}`,
	}}
	v := NewValidator(p)

	view := ctxview.ValidatorView{
		Goal:   domain.Goal{Description: "save settings"},
		Action: domain.Action{Tag: domain.ActionClick, TestID: "save-btn"},
	}

	_, _, err := v.Judge(context.Background(), view)
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
}
