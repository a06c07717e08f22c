package llm

import "strings"

// modelCost is the USD price per 1K tokens for one model, split by
// prompt/completion rate (spec.md §3 "cost" ambient concern, priced per
// the supplemented cost table in SPEC_FULL.md §2.2).
type modelCost struct {
	promptPer1K     float64
	completionPer1K float64
}

// knownModelCosts covers the models this runner is expected to run
// against. Unknown models fall back to defaultModelCost.
var knownModelCosts = map[string]modelCost{
	"gpt-4o-mini": {promptPer1K: 0.00015, completionPer1K: 0.0006},
	"gpt-4o":      {promptPer1K: 0.0025, completionPer1K: 0.01},
	"gpt-4.1-mini": {promptPer1K: 0.0004, completionPer1K: 0.0016},
	"gpt-4.1":     {promptPer1K: 0.002, completionPer1K: 0.008},
	"o3-mini":     {promptPer1K: 0.0011, completionPer1K: 0.0044},
}

// defaultModelCost is used when a model isn't in knownModelCosts — priced
// conservatively so an unrecognized model doesn't silently run for free.
var defaultModelCost = modelCost{promptPer1K: 0.001, completionPer1K: 0.003}

// EstimateCost returns the USD cost of one completion given its token
// Usage, used to advance domain.Budgets.CostUsed after every Agent call.
func EstimateCost(model string, u Usage) float64 {
	c, ok := knownModelCosts[baseModelName(model)]
	if !ok {
		c = defaultModelCost
	}
	return float64(u.PromptTokens)/1000*c.promptPer1K + float64(u.CompletionTokens)/1000*c.completionPer1K
}

// baseModelName strips a provider prefix like "Pro/openai/gpt-4o-mini" down
// to the trailing model identifier, mirroring the prefix-stripping the
// teacher's capability detector uses.
func baseModelName(model string) string {
	parts := strings.Split(strings.ToLower(model), "/")
	return parts[len(parts)-1]
}
