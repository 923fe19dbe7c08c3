package server

import (
	"context"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// Router is implemented by whatever business logic a server wants to expose.
// Dispatch calls exactly one of these per request, translating the error it
// returns into a JSON-RPC error reply per the mapping in errors.go.
type Router interface {
	Name() string
	Instructions() string
	Capabilities() protocol.Capabilities

	ListTools(ctx context.Context) ([]protocol.Tool, error)
	CallTool(ctx context.Context, call protocol.ToolCall) (*protocol.CallToolResult, error)

	ListResources(ctx context.Context) ([]protocol.Resource, error)
	ReadResource(ctx context.Context, uri string) ([]protocol.ResourceContents, error)

	ListPrompts(ctx context.Context) ([]protocol.Prompt, error)
	GetPrompt(ctx context.Context, name string, arguments map[string]string) (*protocol.GetPromptResult, error)

	HandleInitialize(ctx context.Context, clientInfo protocol.Implementation, protocolVersion string) (*protocol.InitializeResult, error)
}

// DefaultRouter supplies the conventional initialize result through
// BuildInitializeResult - embed it in a concrete Router for ServerName and
// ServerVersion. It does not implement HandleInitialize itself: each Router
// still defines HandleInitialize, typically as a call to BuildInitializeResult
// with its own Capabilities and Instructions.
type DefaultRouter struct {
	ServerName    string
	ServerVersion string
}

func (d DefaultRouter) BuildInitializeResult(protocolVersion string, caps protocol.Capabilities, instructions string) (*protocol.InitializeResult, error) {
	if protocolVersion == "" {
		protocolVersion = "1.0.0"
	}
	return &protocol.InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    caps,
		ServerInfo:      protocol.Implementation{Name: d.ServerName, Version: d.ServerVersion},
		Instructions:    instructions,
	}, nil
}
