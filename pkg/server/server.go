package server

import (
	"context"
	"sync"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/prompts"
	"github.com/richard-senior/mcpgo/pkg/protocol"
	"github.com/richard-senior/mcpgo/pkg/resources"
	"github.com/richard-senior/mcpgo/pkg/tools"
)

// MCPServer is the default Router: it wires a tools.Registry, a
// prompts.Registry, and a resources.Store into the ten Router methods (the
// seven that dispatch.go calls, plus Name, Instructions and Capabilities).
// Capabilities are computed on each call: tools are advertised only when the
// registry is non-nil and non-empty, resources and prompts whenever their
// store is non-nil. An absent category is what the client's capability-gated
// short-circuit behavior in pkg/client reacts to.
type MCPServer struct {
	DefaultRouter
	tools        *tools.Registry
	prompts      *prompts.Registry
	resources    *resources.Store
	instructions string
}

// New builds a Router backed by the given registries. Pass nil for a
// registry to advertise that capability as entirely absent.
func New(name, version, instructions string, toolRegistry *tools.Registry, promptRegistry *prompts.Registry, resourceStore *resources.Store) *MCPServer {
	return &MCPServer{
		DefaultRouter: DefaultRouter{ServerName: name, ServerVersion: version},
		tools:         toolRegistry,
		prompts:       promptRegistry,
		resources:     resourceStore,
		instructions:  instructions,
	}
}

func (s *MCPServer) Name() string         { return s.ServerName }
func (s *MCPServer) Instructions() string { return s.instructions }

func (s *MCPServer) Capabilities() protocol.Capabilities {
	var caps protocol.Capabilities
	if s.tools != nil && s.tools.Len() > 0 {
		caps.Tools = &protocol.ToolsCapability{}
	}
	if s.resources != nil {
		caps.Resources = &protocol.ResourcesCapability{}
	}
	if s.prompts != nil {
		caps.Prompts = &protocol.PromptsCapability{}
	}
	return caps
}

func (s *MCPServer) HandleInitialize(ctx context.Context, clientInfo protocol.Implementation, protocolVersion string) (*protocol.InitializeResult, error) {
	logger.Info("initializing session for client", clientInfo.Name, clientInfo.Version)
	return s.BuildInitializeResult(protocolVersion, s.Capabilities(), s.instructions)
}

func (s *MCPServer) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	if s.tools == nil {
		return []protocol.Tool{}, nil
	}
	return s.tools.List(), nil
}

func (s *MCPServer) CallTool(ctx context.Context, call protocol.ToolCall) (*protocol.CallToolResult, error) {
	if s.tools == nil {
		return nil, protocol.NewToolError(protocol.ToolNotFound, "server has no tools registered")
	}
	handler, ok := s.tools.Get(call.Name)
	if !ok {
		return nil, protocol.NewToolError(protocol.ToolNotFound, "unknown tool: %s", call.Name)
	}
	return handler.Call(ctx, call.Arguments)
}

func (s *MCPServer) ListResources(ctx context.Context) ([]protocol.Resource, error) {
	if s.resources == nil {
		return []protocol.Resource{}, nil
	}
	return s.resources.List()
}

func (s *MCPServer) ReadResource(ctx context.Context, uri string) ([]protocol.ResourceContents, error) {
	if s.resources == nil {
		return nil, protocol.NewResourceError(protocol.ResourceNotFound, "server has no resources registered")
	}
	return s.resources.Read(uri)
}

func (s *MCPServer) ListPrompts(ctx context.Context) ([]protocol.Prompt, error) {
	if s.prompts == nil {
		return []protocol.Prompt{}, nil
	}
	return s.prompts.List()
}

func (s *MCPServer) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*protocol.GetPromptResult, error) {
	if s.prompts == nil {
		return nil, protocol.NewPromptError(protocol.PromptNotFound, "server has no prompts registered")
	}
	return s.prompts.Get(name, arguments)
}

// RegisterDefaultTools wires up the example tools this repository ships
// with - calculator, counter, HTML-to-Markdown, headless-screenshot, and
// (only when apifoxToken is non-empty) Apifox - the same registration-time
// assembly style the teacher used for its much larger business-tool set.
func RegisterDefaultTools(registry *tools.Registry, apifoxToken string) {
	registry.Register("calculator", tools.Calculator{})

	counter := tools.NewCounter()
	registry.Register("increment", counter.Increment())
	registry.Register("decrement", counter.Decrement())
	registry.Register("get_value", counter.GetValue())

	registry.Register("html_2_markdown", tools.HTMLToMarkdown{})
	registry.Register("capture_screenshot", tools.NewScreenshotTool())

	if apifoxToken != "" {
		registry.Register("apifox_export_openapi", tools.ApifoxExportTool{AccessToken: apifoxToken})
	}
}

// Singleton accessor kept for cmd/ entry points that only ever run one
// server per process, matching the teacher's own GetInstance/InitInstance
// split.
var (
	instance *MCPServer
	once     sync.Once
)

func InitInstance(s *MCPServer) *MCPServer {
	once.Do(func() { instance = s })
	return instance
}

func GetInstance() *MCPServer {
	if instance == nil {
		logger.Fatal("server instance requested before InitInstance was called")
	}
	return instance
}
