package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	msg, err := Parse([]byte(`{"jsonrpc":"2.0","method":"tools/list","params":{},"id":1}`))
	require.NoError(t, err)
	require.Equal(t, KindRequest, msg.Kind)
	assert.Equal(t, "tools/list", msg.Request.Method)
	id, ok := msg.ID()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), id)
}

func TestParseNotification(t *testing.T) {
	msg, err := Parse([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	require.Equal(t, KindNotification, msg.Kind)
	assert.Equal(t, "notifications/initialized", msg.Notification.Method)
	_, ok := msg.ID()
	assert.False(t, ok, "a notification carries no correlation id")
}

func TestParseResponse(t *testing.T) {
	msg, err := Parse([]byte(`{"jsonrpc":"2.0","result":{"ok":true},"id":7}`))
	require.NoError(t, err)
	require.Equal(t, KindResponse, msg.Kind)
	id, ok := msg.ID()
	require.True(t, ok)
	assert.Equal(t, uint64(7), id)
}

func TestParseErrorReply(t *testing.T) {
	msg, err := Parse([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"method not found"},"id":3}`))
	require.NoError(t, err)
	require.Equal(t, KindErrorReply, msg.Kind)
	assert.Equal(t, -32601, msg.ErrorReply.Error.Code)
}

// Error takes precedence over result even if a malformed peer sent both.
func TestParseErrorTakesPrecedenceOverResult(t *testing.T) {
	msg, err := Parse([]byte(`{"jsonrpc":"2.0","result":{},"error":{"code":-32603,"message":"boom"},"id":1}`))
	require.NoError(t, err)
	assert.Equal(t, KindErrorReply, msg.Kind)
}

func TestParseNilSentinel(t *testing.T) {
	msg, err := Parse([]byte(`{"jsonrpc":"2.0"}`))
	require.NoError(t, err)
	assert.Equal(t, KindNil, msg.Kind)
}

func TestParseInvalidShape(t *testing.T) {
	// id with none of method/result/error is not a valid JSON-RPC shape.
	_, err := Parse([]byte(`{"jsonrpc":"2.0","id":5}`))
	assert.Error(t, err)
}

func TestRequestRoundTrip(t *testing.T) {
	msg, err := NewRequest("tools/call", map[string]any{"name": "calculator"}, 42)
	require.NoError(t, err)

	raw, err := msg.Serialize()
	require.NoError(t, err)

	reparsed, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, KindRequest, reparsed.Kind)
	assert.Equal(t, "tools/call", reparsed.Request.Method)
	id, _ := reparsed.ID()
	assert.Equal(t, uint64(42), id)
}

func TestSerializeNilSentinelFails(t *testing.T) {
	msg := &Message{Kind: KindNil}
	_, err := msg.Serialize()
	assert.Error(t, err, "the nil sentinel has no wire representation")
}
