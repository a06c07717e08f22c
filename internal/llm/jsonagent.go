package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omega-e2e/runner/internal/domain"
)

// maxJSONAttempts is the reparse-once protocol recovery budget (spec.md
// §7, §9): one retry after a malformed first response, then give up.
const maxJSONAttempts = 2

// CallStructured sends messages to provider and unmarshals the response
// into out. If the first response fails to parse, it appends the bad reply
// as an assistant message plus a corrective user message naming the parse
// error, and retries exactly once before
// giving up with a protocol error (spec.md §7 "reparse-once-on-failure").
//
// Returns the accumulated Usage across every attempt, since a failed parse
// still consumed tokens the run's Budgets must account for.
func CallStructured(ctx context.Context, provider LLMProvider, messages []Message, out any) (Usage, error) {
	var total Usage
	attemptMessages := messages

	for attempt := 1; attempt <= maxJSONAttempts; attempt++ {
		raw, usage, err := provider.CallJSON(ctx, attemptMessages)
		total.PromptTokens += usage.PromptTokens
		total.CompletionTokens += usage.CompletionTokens
		if err != nil {
			return total, domain.NewTransportError("agent completion", err)
		}

		if parseErr := json.Unmarshal([]byte(raw), out); parseErr == nil {
			return total, nil
		} else if attempt == maxJSONAttempts {
			return total, domain.NewProtocolError(fmt.Sprintf("invalid JSON after %d attempts", maxJSONAttempts), parseErr)
		} else {
			attemptMessages = append(attemptMessages,
				Message{Role: RoleAssistant, Content: raw},
				Message{Role: RoleUser, Content: fmt.Sprintf(
					"Your previous response was not valid JSON (%v). Reply again with ONLY a single valid JSON document matching the required schema, no prose.", parseErr)},
			)
		}
	}
	return total, domain.NewProtocolError("unreachable", nil)
}
