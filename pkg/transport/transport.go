// Package transport implements the client-side conduits a Client can speak
// MCP over - a spawned stdio subprocess or an SSE+HTTP-POST pair - plus the
// pending-request table both share for reply correlation.
package transport

import (
	"context"
	"fmt"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// Transport starts and stops the underlying connection and hands back a
// Handle for sending messages over it.
type Transport interface {
	Start(ctx context.Context) (Handle, error)
	Close(ctx context.Context) error
}

// Handle sends a single message and, for a Request, blocks for its matching
// reply. Implementations must be safe for concurrent use - the client may
// have several requests in flight at once.
type Handle interface {
	Send(ctx context.Context, msg *protocol.Message) (*protocol.Message, error)
}

// ErrorKind discriminates the ways a transport can fail, grounded on the
// reference client's transport error enum.
type ErrorKind int

const (
	ErrNotConnected ErrorKind = iota
	ErrChannelClosed
	ErrUnsupportedMessage
	ErrStdioProcess
	ErrSSEConnection
	ErrHTTPStatus
	ErrSerialization
	ErrIO
	ErrTimeout
)

// Error is the error type every transport implementation in this package
// returns.
type Error struct {
	Kind    ErrorKind
	Status  int // populated only when Kind == ErrHTTPStatus
	Message string
}

func (e *Error) Error() string {
	if e.Kind == ErrHTTPStatus {
		return fmt.Sprintf("http error: %d - %s", e.Status, e.Message)
	}
	return e.Message
}

func newErr(kind ErrorKind, msg string) *Error { return &Error{Kind: kind, Message: msg} }
