package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// SseTransport opens a GET stream of Server-Sent Events whose first event
// ("endpoint") carries a per-session URL that subsequent outbound requests
// are POSTed to; replies to those POSTs arrive asynchronously as later
// "message" events on the same GET stream and are correlated by id, not by
// the POST's own HTTP response (whose status only signals acceptance; a
// non-2xx status fails the call).
type SseTransport struct {
	URL         string
	Headers     map[string]string
	BearerToken string

	client *http.Client
	handle *sseHandle
}

func NewSseTransport(url string, headers map[string]string, bearerToken string) *SseTransport {
	client, err := GetCustomHTTPClient()
	if err != nil {
		client = http.DefaultClient
	}
	return &SseTransport{URL: url, Headers: headers, BearerToken: bearerToken, client: client}
}

func (t *SseTransport) Start(ctx context.Context) (Handle, error) {
	if t.BearerToken != "" {
		if exp, err := jwtExpiry(t.BearerToken); err == nil && time.Now().After(exp) {
			return nil, &Error{Kind: ErrSSEConnection, Message: "bearer token is expired"}
		}
	}

	baseURL, err := url.Parse(t.URL)
	if err != nil {
		return nil, &Error{Kind: ErrSSEConnection, Message: fmt.Sprintf("invalid SSE URL: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return nil, &Error{Kind: ErrSSEConnection, Message: err.Error()}
	}
	req.Header.Set("Accept", "text/event-stream")
	t.applyHeaders(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrSSEConnection, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &Error{Kind: ErrHTTPStatus, Status: resp.StatusCode, Message: "unexpected status opening SSE stream"}
	}

	h := &sseHandle{
		client:     t.client,
		baseURL:    baseURL,
		headers:    t.Headers,
		bearer:     t.BearerToken,
		body:       resp.Body,
		pending:    NewPendingRequests(),
		endpointCh: make(chan string, 1),
		doneCh:     make(chan struct{}),
		sessionID:  uuid.NewString(),
	}
	t.handle = h
	go h.readLoop()
	return h, nil
}

// Close closes the GET stream; the read loop then fails every pending request.
func (t *SseTransport) Close(ctx context.Context) error {
	if t.handle == nil {
		return nil
	}
	return t.handle.body.Close()
}

func (t *SseTransport) applyHeaders(req *http.Request) {
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	if t.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.BearerToken)
	}
}

type sseHandle struct {
	client    *http.Client
	baseURL   *url.URL
	headers   map[string]string
	bearer    string
	body      io.ReadCloser
	pending   *PendingRequests
	sessionID string

	endpointMu sync.Mutex
	endpoint   string
	endpointCh chan string

	doneCh   chan struct{}
	closeErr error
	closeMu  sync.Mutex
}

func (h *sseHandle) Send(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	if msg.Kind != protocol.KindRequest && msg.Kind != protocol.KindNotification {
		return nil, &Error{Kind: ErrUnsupportedMessage, Message: "transport can only send Request or Notification messages"}
	}

	endpoint, err := h.resolveEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := msg.Serialize()
	if err != nil {
		return nil, &Error{Kind: ErrSerialization, Message: err.Error()}
	}

	var waiter <-chan result
	var id uint64
	if msg.Kind == protocol.KindRequest {
		id, _ = msg.ID()
		waiter = h.pending.Insert(id)
	}

	// The server announces the POST endpoint as a path relative to the SSE
	// stream it was handed over (e.g. "/message?session=..."), so it must be
	// resolved against the stream's own URL before it is dial-able.
	postURL, err := h.resolvePostURL(endpoint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader(raw))
	if err != nil {
		return nil, &Error{Kind: ErrSSEConnection, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Id", h.sessionID)
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	if h.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+h.bearer)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.pending.Respond(id, nil, err)
		return nil, &Error{Kind: ErrSSEConnection, Message: err.Error()}
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		httpErr := &Error{Kind: ErrHTTPStatus, Status: resp.StatusCode, Message: "POST to session endpoint rejected"}
		if msg.Kind == protocol.KindRequest {
			h.pending.Respond(id, nil, httpErr)
		}
		return nil, httpErr
	}

	if msg.Kind == protocol.KindNotification {
		return &protocol.Message{Kind: protocol.KindNil}, nil
	}

	select {
	case res := <-waiter:
		return res.msg, res.err
	case <-ctx.Done():
		// Release the slot so a late reply finds no entry and is dropped.
		h.pending.Respond(id, nil, ctx.Err())
		return nil, ctx.Err()
	case <-h.doneCh:
		return nil, h.fatal()
	}
}

// resolvePostURL resolves the server-announced endpoint - relative or
// absolute - against the base SSE URL, matching the reference client's
// handling of the "endpoint" event.
func (h *sseHandle) resolvePostURL(endpoint string) (string, error) {
	epURL, err := url.Parse(endpoint)
	if err != nil {
		return "", &Error{Kind: ErrSSEConnection, Message: fmt.Sprintf("invalid endpoint %q: %v", endpoint, err)}
	}
	return h.baseURL.ResolveReference(epURL).String(), nil
}

func (h *sseHandle) resolveEndpoint(ctx context.Context) (string, error) {
	h.endpointMu.Lock()
	ep := h.endpoint
	h.endpointMu.Unlock()
	if ep != "" {
		return ep, nil
	}
	select {
	case ep := <-h.endpointCh:
		h.endpointMu.Lock()
		h.endpoint = ep
		h.endpointMu.Unlock()
		return ep, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-h.doneCh:
		return "", h.fatal()
	}
}

// readLoop parses the SSE stream's "event:"/"data:" line pairs. The first
// "endpoint" event unblocks any Send waiting to learn where to POST; every
// "message" event afterwards is a JSON-RPC reply correlated by id.
func (h *sseHandle) readLoop() {
	defer h.body.Close()
	scanner := bufio.NewScanner(h.body)
	scanner.Buffer(make([]byte, 0, readBufferSize), readBufferSize*4)

	var event, data string
	flush := func() {
		if event == "" && data == "" {
			return
		}
		switch event {
		case "endpoint", "":
			select {
			case h.endpointCh <- data:
			default:
			}
		case "message":
			msg, err := protocol.Parse([]byte(data))
			if err != nil {
				logger.Warn("sse transport: dropping unparseable event:", err)
				break
			}
			switch msg.Kind {
			case protocol.KindResponse, protocol.KindErrorReply:
				id, _ := msg.ID()
				h.pending.Respond(id, msg, nil)
			}
		}
		event, data = "", ""
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	flush()
	h.fail(&Error{Kind: ErrNotConnected, Message: "SSE stream closed"})
}

func (h *sseHandle) fail(err error) {
	h.closeMu.Lock()
	if h.closeErr == nil {
		h.closeErr = err
		close(h.doneCh)
		h.pending.Clear(err)
	}
	h.closeMu.Unlock()
}

func (h *sseHandle) fatal() error {
	h.closeMu.Lock()
	defer h.closeMu.Unlock()
	if h.closeErr != nil {
		return h.closeErr
	}
	return &Error{Kind: ErrChannelClosed, Message: "sse transport closed"}
}

// jwtExpiry reads the "exp" claim off a compact JWT without verifying its
// signature - this is a fast local sanity check before opening a connection,
// not an authentication decision, which remains the peer's job.
func jwtExpiry(token string) (time.Time, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a JWT: %w", err)
	}
	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return time.Time{}, err
	}
	if claims.Expiry == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}
	return claims.Expiry.Time(), nil
}
