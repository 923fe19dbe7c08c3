package transport

import (
	"context"
	"time"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// TimeoutHandle wraps a Handle with a fixed per-call deadline, applied at
// client construction time rather than per-call - matching the reference
// client's with_timeout service layer. A timeout fires locally: the peer is
// never told its reply arrived too late, it is simply ignored when it does
// (PendingRequests.Respond silently drops replies nobody is waiting for).
type TimeoutHandle struct {
	inner   Handle
	timeout time.Duration
}

func WithTimeout(inner Handle, timeout time.Duration) Handle {
	return &TimeoutHandle{inner: inner, timeout: timeout}
}

func (h *TimeoutHandle) Send(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	resp, err := h.inner.Send(ctx, msg)
	if err != nil && ctx.Err() != nil {
		return nil, &Error{Kind: ErrTimeout, Message: "request timed out after " + h.timeout.String()}
	}
	return resp, err
}
