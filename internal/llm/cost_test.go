package llm

import (
	"math"
	"testing"
)

func TestEstimateCost_KnownModel(t *testing.T) {
	got := EstimateCost("gpt-4o-mini", Usage{PromptTokens: 1000, CompletionTokens: 1000})
	want := 0.00015 + 0.0006
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("EstimateCost = %v, want %v", got, want)
	}
}

func TestEstimateCost_UnknownModelUsesDefault(t *testing.T) {
	got := EstimateCost("some-future-model", Usage{PromptTokens: 1000, CompletionTokens: 1000})
	want := defaultModelCost.promptPer1K + defaultModelCost.completionPer1K
	if got != want {
		t.Errorf("EstimateCost = %v, want %v", got, want)
	}
}

func TestEstimateCost_StripsProviderPrefix(t *testing.T) {
	got := EstimateCost("Pro/openai/gpt-4o-mini", Usage{PromptTokens: 1000, CompletionTokens: 0})
	want := 0.00015
	if got != want {
		t.Errorf("EstimateCost = %v, want %v", got, want)
	}
}

func TestEstimateCost_ZeroUsage(t *testing.T) {
	if got := EstimateCost("gpt-4o-mini", Usage{}); got != 0 {
		t.Errorf("EstimateCost = %v, want 0", got)
	}
}
