package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// fakeHandle answers "initialize" with a fixed capability set and everything
// else with an empty success result, so tests can focus on the client's
// capability-gated short-circuit logic rather than wire plumbing.
type fakeHandle struct {
	capabilities protocol.Capabilities
	calls        []string
}

func (f *fakeHandle) Send(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	if msg.Kind == protocol.KindNotification {
		// Initialize fires "notifications/initialized" with no id and no
		// reply expected - record it and stop before touching msg.Request,
		// which is nil for a notification.
		f.calls = append(f.calls, msg.Notification.Method)
		return &protocol.Message{Kind: protocol.KindNil}, nil
	}

	f.calls = append(f.calls, msg.Request.Method)
	id := *msg.Request.ID

	if msg.Request.Method == "initialize" {
		result := protocol.InitializeResult{
			ProtocolVersion: "1.0.0",
			Capabilities:    f.capabilities,
			ServerInfo:      protocol.Implementation{Name: "fake", Version: "0.0.1"},
		}
		return protocol.NewResponse(result, id)
	}
	return protocol.NewResponse(map[string]any{}, id)
}

func TestCallToolFailsLocallyWithoutToolsCapability(t *testing.T) {
	handle := &fakeHandle{capabilities: protocol.Capabilities{}}
	c := New(handle)

	_, err := c.Initialize(context.Background(), protocol.ClientInfo{Name: "test"})
	require.NoError(t, err)

	_, err = c.CallTool(context.Background(), "calculator", nil)
	require.Error(t, err)

	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, protocol.ErrMethodNotFound, clientErr.Code)

	for _, call := range handle.calls {
		assert.NotEqual(t, "tools/call", call, "CallTool must short-circuit locally, never reach the wire")
	}
}

func TestListToolsReturnsEmptyLocallyWithoutCapability(t *testing.T) {
	handle := &fakeHandle{capabilities: protocol.Capabilities{}}
	c := New(handle)
	_, err := c.Initialize(context.Background(), protocol.ClientInfo{Name: "test"})
	require.NoError(t, err)

	result, err := c.ListTools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Tools)
}

func TestCallToolRoundTripsWhenCapabilityAdvertised(t *testing.T) {
	handle := &fakeHandle{capabilities: protocol.Capabilities{Tools: &protocol.ToolsCapability{}}}
	c := New(handle)
	_, err := c.Initialize(context.Background(), protocol.ClientInfo{Name: "test"})
	require.NoError(t, err)

	_, err = c.CallTool(context.Background(), "calculator", map[string]any{"expression": "2+2"})
	require.NoError(t, err)
	assert.Contains(t, handle.calls, "tools/call")
}

func TestOperationsFailBeforeInitialize(t *testing.T) {
	c := New(&fakeHandle{})
	_, err := c.ListTools(context.Background())
	require.Error(t, err)
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrNotInitialized, clientErr.Kind)
}
