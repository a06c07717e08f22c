// Package rpc is the collaborator transport: it speaks MCP (JSON-RPC 2.0
// over HTTP) to the two fixed collaborator services (the UI-driving browser
// service and the backing data service) and normalizes tool metadata and
// call results into plain Go values for the rest of the runner.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	sdk_client "github.com/mark3labs/mcp-go/client"
	sdk_mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/omega-e2e/runner/internal/domain"
)

// ServerConfig describes one collaborator service endpoint.
type ServerConfig struct {
	Name string // "ui" or "data"
	URL  string // base URL of the collaborator's streamable-HTTP MCP endpoint
}

// ToolInfo captures the metadata of a single tool exposed by a collaborator.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Client wraps the mcp-go SDK client for one collaborator service, speaking
// the streamable-HTTP transport. Safe for concurrent use.
type Client struct {
	mu    sync.RWMutex
	cfg   ServerConfig
	inner sdk_client.MCPClient
}

// NewClient creates an uninitialised Client for the given collaborator.
// Call Connect before ListTools or CallTool.
func NewClient(cfg ServerConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect opens the streamable-HTTP transport and performs the MCP
// initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	cli, err := sdk_client.NewStreamableHttpClient(c.cfg.URL)
	if err != nil {
		return domain.NewTransportError(fmt.Sprintf("create http client %q", c.cfg.Name), err)
	}
	if err := cli.Start(ctx); err != nil {
		return domain.NewTransportError(fmt.Sprintf("start http client %q", c.cfg.Name), err)
	}

	_, err = cli.Initialize(ctx, sdk_mcp.InitializeRequest{
		Params: sdk_mcp.InitializeParams{
			ProtocolVersion: sdk_mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: sdk_mcp.Implementation{
				Name:    "omega-e2e-runner",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		_ = cli.Close()
		return domain.NewTransportError(fmt.Sprintf("initialize collaborator %q", c.cfg.Name), err)
	}

	c.mu.Lock()
	c.inner = cli
	c.mu.Unlock()
	return nil
}

// ListTools returns metadata for all tools exposed by this collaborator.
// Per spec.md §4.2, a run cannot start if a collaborator advertises zero
// tools; callers should treat an empty result as fatal.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	c.mu.RLock()
	inner := c.inner
	c.mu.RUnlock()

	if inner == nil {
		return nil, domain.NewTransportError(fmt.Sprintf("collaborator %q not connected", c.cfg.Name), nil)
	}

	result, err := inner.ListTools(ctx, sdk_mcp.ListToolsRequest{})
	if err != nil {
		return nil, domain.NewTransportError(fmt.Sprintf("list tools %q", c.cfg.Name), err)
	}

	tools := make([]ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			schema = json.RawMessage("{}")
		}
		tools = append(tools, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return tools, nil
}

// CallTool invokes the named tool with args and returns the concatenated
// text content from the collaborator's response.
//
// A server-reported IsError wraps the collaborator message rather than an
// infrastructure failure, so the Policy Guard / Critic can distinguish
// "tool ran and reported a problem" from "tool unreachable".
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	c.mu.RLock()
	inner := c.inner
	c.mu.RUnlock()

	if inner == nil {
		return "", domain.NewTransportError(fmt.Sprintf("collaborator %q not connected", c.cfg.Name), nil)
	}

	req := sdk_mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := inner.CallTool(ctx, req)
	if err != nil {
		return "", domain.NewTransportError(fmt.Sprintf("call tool %q on %q", name, c.cfg.Name), err)
	}

	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(sdk_mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")

	if result.IsError {
		return "", fmt.Errorf("rpc: tool %q returned error: %s", name, text)
	}
	return text, nil
}

// Close terminates the connection and releases resources.
func (c *Client) Close() error {
	c.mu.Lock()
	inner := c.inner
	c.inner = nil
	c.mu.Unlock()

	if inner == nil {
		return nil
	}
	return inner.Close()
}

// Service returns the logical name ("ui" or "data") this client speaks for.
func (c *Client) Service() string { return c.cfg.Name }
