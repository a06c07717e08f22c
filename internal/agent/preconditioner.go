package agent

import (
	"context"
	"fmt"

	"github.com/omega-e2e/runner/internal/domain"
	"github.com/omega-e2e/runner/internal/llm"
)

// PreconditionPlan is the Preconditioner's JSON contract: which data-service
// tool to invoke, with what arguments, to satisfy one natural-language
// precondition instruction (spec.md §4.1 — instructions with no explicit
// "mcp" field must be planned, not executed verbatim).
type PreconditionPlan struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
	Reason string         `json:"reason"`
}

// Preconditioner turns one Precondition.Instruction into a concrete tool
// invocation plan, choosing among the mutating and read-only data tools
// the Tool Registry advertises.
type Preconditioner struct {
	provider llm.LLMProvider
}

// NewPreconditioner builds a Preconditioner over provider.
func NewPreconditioner(provider llm.LLMProvider) *Preconditioner {
	return &Preconditioner{provider: provider}
}

const preconditionerSystemPrompt = `You are the precondition planner for an automated end-to-end test runner.
You are given a natural-language setup instruction and the list of data-service
tools available. Choose exactly one tool call that satisfies the instruction.
Respond with ONLY a JSON object of the form:
{"tool": "<tool name>", "args": {...}, "reason": "<one sentence>"}
Use only tools from the provided list. Do not invent tool names or parameters.`

// Plan asks the LLM to choose a tool call for one precondition instruction.
func (p *Preconditioner) Plan(ctx context.Context, instruction string, mutating, readOnly []domain.ToolDescriptor) (PreconditionPlan, llm.Usage, error) {
	all := append(append([]domain.ToolDescriptor{}, mutating...), readOnly...)
	user := fmt.Sprintf("Instruction: %s\n\nAvailable tools:\n%s", instruction, describeTools(all))

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: preconditionerSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}

	var plan PreconditionPlan
	usage, err := llm.CallStructured(ctx, p.provider, messages, &plan)
	if err != nil {
		return PreconditionPlan{}, usage, err
	}
	if plan.Tool == "" {
		return PreconditionPlan{}, usage, domain.NewProtocolError("preconditioner: empty tool in plan", nil)
	}
	return plan, usage, nil
}
