package server

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// fakeRouter lets each test control exactly what ListTools/CallTool/etc.
// return without standing up a real MCPServer.
type fakeRouter struct {
	DefaultRouter
	callToolErr error
}

func (f *fakeRouter) Capabilities() protocol.Capabilities { return protocol.Capabilities{} }
func (f *fakeRouter) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	return []protocol.Tool{{Name: "calculator"}}, nil
}
func (f *fakeRouter) CallTool(ctx context.Context, call protocol.ToolCall) (*protocol.CallToolResult, error) {
	if f.callToolErr != nil {
		return nil, f.callToolErr
	}
	return &protocol.CallToolResult{Content: []protocol.Content{protocol.NewTextContent("4")}}, nil
}
func (f *fakeRouter) ListResources(ctx context.Context) ([]protocol.Resource, error) { return nil, nil }
func (f *fakeRouter) ReadResource(ctx context.Context, uri string) ([]protocol.ResourceContents, error) {
	return nil, nil
}
func (f *fakeRouter) ListPrompts(ctx context.Context) ([]protocol.Prompt, error) { return nil, nil }
func (f *fakeRouter) GetPrompt(ctx context.Context, name string, arguments map[string]string) (*protocol.GetPromptResult, error) {
	return nil, nil
}
func (f *fakeRouter) HandleInitialize(ctx context.Context, clientInfo protocol.Implementation, protocolVersion string) (*protocol.InitializeResult, error) {
	return f.BuildInitializeResult(protocolVersion, f.Capabilities(), f.Instructions())
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{DefaultRouter: DefaultRouter{ServerName: "test", ServerVersion: "0.0.1"}}
}

func TestToJSONRPCErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"tool not found -> invalid request", protocol.NewToolError(protocol.ToolNotFound, "x"), protocol.ErrInvalidRequest},
		{"tool invalid params -> invalid params", protocol.NewToolError(protocol.ToolInvalidParameters, "x"), protocol.ErrInvalidParams},
		{"tool execution error -> internal", protocol.NewToolError(protocol.ToolExecutionError, "x"), protocol.ErrInternal},
		{"resource not found -> invalid request", protocol.NewResourceError(protocol.ResourceNotFound, "x"), protocol.ErrInvalidRequest},
		{"prompt invalid params -> invalid params", protocol.NewPromptError(protocol.PromptInvalidParameters, "x"), protocol.ErrInvalidParams},
		{"unmapped error -> internal", assertErr{}, protocol.ErrInternal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, _ := toJSONRPCError(c.err)
			assert.Equal(t, c.code, code)
		})
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "unmapped" }

func TestDispatchUnknownMethodIsMethodNotFound(t *testing.T) {
	var buf bytes.Buffer
	framer := NewFramer(bytes.NewBufferString(`{"jsonrpc":"2.0","method":"nonsense","id":1}`+"\n"), &buf)

	err := Dispatch(context.Background(), newFakeRouter(), framer)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"code":-32601`)
}

func TestDispatchNotificationGetsNoReply(t *testing.T) {
	var buf bytes.Buffer
	framer := NewFramer(bytes.NewBufferString(`{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n"), &buf)

	err := Dispatch(context.Background(), newFakeRouter(), framer)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestDispatchToolsCallSuccess(t *testing.T) {
	var buf bytes.Buffer
	framer := NewFramer(bytes.NewBufferString(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"calculator","arguments":{}},"id":1}`+"\n"), &buf)

	err := Dispatch(context.Background(), newFakeRouter(), framer)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"result"`)
}
