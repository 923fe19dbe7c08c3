// Package client implements the correlation engine a caller drives to speak
// MCP against a server: session bookkeeping, request-id allocation, and the
// capability-gated local short-circuits for categories the server never
// advertised.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/richard-senior/mcpgo/pkg/protocol"
	"github.com/richard-senior/mcpgo/pkg/transport"
)

// Error is the client-facing error taxonomy, grounded on the reference
// client's Error enum.
type Error struct {
	Kind    ErrorKind
	Method  string
	Code    int
	Message string
	Cause   error
}

type ErrorKind int

const (
	ErrTransport ErrorKind = iota
	ErrRPC
	ErrUnexpectedResponse
	ErrNotInitialized
	ErrServerError
)

func (e *Error) Error() string {
	switch e.Kind {
	case ErrRPC:
		return fmt.Sprintf("rpc error: code=%d message=%s", e.Code, e.Message)
	case ErrNotInitialized:
		return "client is not initialized"
	case ErrServerError:
		return fmt.Sprintf("mcp server error in %s: %s", e.Method, e.Message)
	case ErrUnexpectedResponse:
		return fmt.Sprintf("unexpected response: %s", e.Message)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("transport error: %v", e.Cause)
		}
		return e.Message
	}
}

// sessionState tracks where a Client is in the handshake lifecycle.
type sessionState int

const (
	stateCreated sessionState = iota
	stateInitialized
)

// Client drives the MCP correlation protocol over a transport.Handle: it
// allocates monotonic ids, waits on the matching reply via the handle (which
// itself delegates correlation to transport.PendingRequests), and caches the
// server's advertised capabilities so later calls can short-circuit locally
// instead of round-tripping to a server that told us up front it can't help.
type Client struct {
	handle transport.Handle
	nextID atomic.Uint64

	mu           sync.Mutex
	state        sessionState
	capabilities *protocol.Capabilities
	serverInfo   *protocol.Implementation
}

func New(handle transport.Handle) *Client {
	c := &Client{handle: handle}
	c.nextID.Store(1)
	return c
}

func (c *Client) allocID() uint64 { return c.nextID.Add(1) - 1 }

func (c *Client) sendRequest(ctx context.Context, method string, params interface{}, out interface{}) error {
	msg, err := protocol.NewRequest(method, params, c.allocID())
	if err != nil {
		return &Error{Kind: ErrTransport, Method: method, Cause: err}
	}
	reply, err := c.handle.Send(ctx, msg)
	if err != nil {
		return &Error{Kind: ErrTransport, Method: method, Cause: err}
	}
	switch reply.Kind {
	case protocol.KindResponse:
		if out != nil && reply.Response.Result != nil {
			if err := decodeResult(reply.Response.Result, out); err != nil {
				return &Error{Kind: ErrUnexpectedResponse, Method: method, Message: err.Error()}
			}
		}
		return nil
	case protocol.KindErrorReply:
		return &Error{Kind: ErrRPC, Method: method, Code: reply.ErrorReply.Error.Code, Message: reply.ErrorReply.Error.Message}
	default:
		return &Error{Kind: ErrUnexpectedResponse, Method: method, Message: "reply was neither a Response nor an Error"}
	}
}

func (c *Client) sendNotification(ctx context.Context, method string, params interface{}) error {
	msg, err := protocol.NewNotification(method, params)
	if err != nil {
		return &Error{Kind: ErrTransport, Method: method, Cause: err}
	}
	_, err = c.handle.Send(ctx, msg)
	if err != nil {
		return &Error{Kind: ErrTransport, Method: method, Cause: err}
	}
	return nil
}

// Initialize performs the handshake: sends "initialize", then fires the
// "notifications/initialized" notification, and caches the server's
// capabilities/info for every later capability-gated call.
func (c *Client) Initialize(ctx context.Context, clientInfo protocol.ClientInfo) (*protocol.InitializeResult, error) {
	params := map[string]any{
		"protocolVersion": "1.0.0",
		"capabilities":    map[string]any{},
		"clientInfo":      clientInfo,
	}
	var result protocol.InitializeResult
	if err := c.sendRequest(ctx, "initialize", params, &result); err != nil {
		return nil, err
	}
	if err := c.sendNotification(ctx, "notifications/initialized", nil); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.capabilities = &result.Capabilities
	c.serverInfo = &result.ServerInfo
	c.state = stateInitialized
	c.mu.Unlock()

	return &result, nil
}

func (c *Client) requireInitialized() (*protocol.Capabilities, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateInitialized {
		return nil, &Error{Kind: ErrNotInitialized}
	}
	return c.capabilities, nil
}

// ListTools returns an empty list locally, without a wire call, when the
// server never advertised a tools capability.
func (c *Client) ListTools(ctx context.Context) (*protocol.ListToolsResult, error) {
	caps, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	if caps.Tools == nil {
		return &protocol.ListToolsResult{Tools: []protocol.Tool{}}, nil
	}
	var result protocol.ListToolsResult
	if err := c.sendRequest(ctx, "tools/list", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTool fails locally with METHOD_NOT_FOUND when the server has no tools
// capability at all - there is no tool to call if the category doesn't exist.
func (c *Client) CallTool(ctx context.Context, name string, arguments any) (*protocol.CallToolResult, error) {
	caps, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	if caps.Tools == nil {
		return nil, capabilityMissing("tools")
	}
	var result protocol.CallToolResult
	params := protocol.ToolCall{Name: name, Arguments: arguments}
	if err := c.sendRequest(ctx, "tools/call", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListResources(ctx context.Context) (*protocol.ListResourcesResult, error) {
	caps, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	if caps.Resources == nil {
		return &protocol.ListResourcesResult{Resources: []protocol.Resource{}}, nil
	}
	var result protocol.ListResourcesResult
	if err := c.sendRequest(ctx, "resources/list", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	caps, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	if caps.Resources == nil {
		return nil, capabilityMissing("resources")
	}
	var result protocol.ReadResourceResult
	if err := c.sendRequest(ctx, "resources/read", map[string]string{"uri": uri}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPrompts(ctx context.Context) (*protocol.ListPromptsResult, error) {
	caps, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	if caps.Prompts == nil {
		return &protocol.ListPromptsResult{Prompts: []protocol.Prompt{}}, nil
	}
	var result protocol.ListPromptsResult
	if err := c.sendRequest(ctx, "prompts/list", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*protocol.GetPromptResult, error) {
	caps, err := c.requireInitialized()
	if err != nil {
		return nil, err
	}
	if caps.Prompts == nil {
		return nil, capabilityMissing("prompts")
	}
	var result protocol.GetPromptResult
	params := map[string]any{"name": name, "arguments": arguments}
	if err := c.sendRequest(ctx, "prompts/get", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func capabilityMissing(category string) error {
	return &Error{Kind: ErrRPC, Code: protocol.ErrMethodNotFound, Message: fmt.Sprintf("Server does not support '%s' capability", category)}
}
