package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/omega-e2e/runner/internal/llm"
	openailib "github.com/sashabaranov/go-openai"
)

// Client implements llm.LLMProvider using the OpenAI-compatible protocol.
// Works with any endpoint that supports the OpenAI chat completions API
// with JSON response-format mode.
type Client struct {
	client *openailib.Client
	config *Config
}

// GetConfig returns the client's configuration.
func (c *Client) GetConfig() *Config {
	return c.config
}

// NewClient creates a new OpenAI-compatible client.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clientConfig := openailib.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	// Prevent indefinite hangs when the API is unresponsive.
	httpTimeout := time.Duration(config.HTTPTimeout) * time.Second
	clientConfig.HTTPClient = &http.Client{Timeout: httpTimeout}

	return &Client{
		client: openailib.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// NewClientFromEnv creates a client using environment variables.
func NewClientFromEnv() (*Client, error) {
	config, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return NewClient(config)
}

// CallJSON sends messages to the LLM with JSON response-format mode
// enabled and the runner's fixed low sampling temperature, returning the
// raw completion text plus token Usage. Retries up to c.config.MaxRetries
// times on any error from the completion request, without telling
// transient failures from permanent ones — a malformed-but-present JSON body
// is the caller's concern (see llm.CallStructured's reparse-once pass).
func (c *Client) CallJSON(ctx context.Context, messages []llm.Message) (string, llm.Usage, error) {
	if len(messages) == 0 {
		return "", llm.Usage{}, fmt.Errorf("no messages to send")
	}

	openaiMsgs := make([]openailib.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMsgs[i] = openailib.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openailib.ChatCompletionRequest{
		Model:          c.config.Model,
		Messages:       openaiMsgs,
		Temperature:    c.config.ResolveTemperature(),
		ResponseFormat: &openailib.ChatCompletionResponseFormat{Type: openailib.ChatCompletionResponseFormatTypeJSONObject},
	}
	if c.config.MaxTokens > 0 {
		req.MaxTokens = c.config.MaxTokens
	}

	var resp openailib.ChatCompletionResponse
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		resp, lastErr = c.client.CreateChatCompletion(ctx, req)
		if lastErr == nil {
			break
		}
		if attempt < c.config.MaxRetries {
			wait := time.Duration(attempt+1) * time.Second
			slog.Warn("llm: retrying after transport error", "attempt", attempt+1, "max", c.config.MaxRetries, "wait", wait, "err", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", llm.Usage{}, ctx.Err()
			}
		}
	}

	if lastErr != nil {
		return "", llm.Usage{}, fmt.Errorf("llm call failed after %d retries: %w", c.config.MaxRetries, lastErr)
	}
	if len(resp.Choices) == 0 {
		return "", llm.Usage{}, fmt.Errorf("no choices returned from LLM")
	}

	usage := llm.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

// GetName returns the provider name.
func (c *Client) GetName() string {
	return fmt.Sprintf("openai-compatible (%s)", c.config.Model)
}
