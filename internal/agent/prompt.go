// Package agent implements the five LLM Agents of spec.md §4: the
// Preconditioner, Planner, Probe Planner, Semantic Validator and Goal
// Checker. Each agent is a single fixed-temperature JSON-contract call —
// there is no native tool-calling or multi-turn chat here, only one
// request built from a typed ctxview and one structured response.
package agent

import (
	"fmt"
	"strings"

	"github.com/omega-e2e/runner/internal/domain"
)

// describeTools renders a tool descriptor list for injection into an
// agent's user message, in the teacher's "name + description + schema"
// registry-prompt style.
func describeTools(tools []domain.ToolDescriptor) string {
	if len(tools) == 0 {
		return "(no tools available)"
	}
	var sb strings.Builder
	for _, t := range tools {
		sb.WriteString(fmt.Sprintf("- %s: %s", t.Name, t.Description))
		if len(t.Schema) > 0 && string(t.Schema) != "{}" {
			sb.WriteString(fmt.Sprintf(" (params: %s)", t.Schema))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// describeSDOM renders an SDOM into a compact textual projection for
// prompt injection, rather than dumping raw JSON at the model.
func describeSDOM(s domain.SDOM) string {
	var sb strings.Builder
	if len(s.Interactive) == 0 && len(s.Content) == 0 && len(s.Feedback) == 0 {
		return "(empty page)"
	}
	for _, e := range s.Interactive {
		sb.WriteString(fmt.Sprintf("- [%s] %s", e.Type, e.Label))
		if e.TestID != "" {
			sb.WriteString(fmt.Sprintf(" testId=%q", e.TestID))
		}
		if e.Value != "" {
			sb.WriteString(fmt.Sprintf(" value=%q", e.Value))
		}
		if e.Disabled {
			sb.WriteString(" (disabled)")
		}
		sb.WriteString("\n")
	}
	for _, c := range s.Content {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", c.Kind, c.Text))
	}
	for _, f := range s.Feedback {
		sb.WriteString(fmt.Sprintf("- feedback[%s]: %s\n", f.Class, f.Text))
	}
	return sb.String()
}

// describeMemory renders the public SharedMemory for prompt injection.
func describeMemory(mem map[string]domain.Record) string {
	if len(mem) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for name, rec := range mem {
		sb.WriteString(fmt.Sprintf("- %s: %v\n", name, rec.Fields))
	}
	return sb.String()
}
