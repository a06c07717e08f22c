package llm

import "context"

// Message represents a chat message for LLM communication.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // The message text
}

// Usage reports the token accounting for one completion, used to advance
// the run's cost Budgets.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// LLMProvider defines the interface every Agent calls through. Any
// OpenAI-compatible endpoint (litellm, Ollama, Azure, vLLM, etc.) can
// implement it. Every Agent call is a single non-streaming, low-temperature
// completion constrained to JSON output — there is no native tool-calling
// or token-by-token streaming in this runner, since no human watches the
// Agents type.
type LLMProvider interface {
	// CallJSON sends messages and returns the raw completion text (expected
	// to be a JSON document per the caller's contract) plus its Usage.
	CallJSON(ctx context.Context, messages []Message) (string, Usage, error)

	// GetName returns the provider name/identifier.
	GetName() string
}

// Role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
