package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// SSEHandler is the server side of pkg/transport's SseTransport: a GET opens
// a long-lived event stream and announces a per-session POST endpoint; each
// POST carries one JSON-RPC request, which is dispatched synchronously and
// its reply pushed back down the matching GET stream as a "message" event.
// Session bookkeeping is a plain map keyed by a google/uuid session id rather
// than a cookie, mirroring the way the client transport treats the
// "event: endpoint" line as the only thing correlating the two HTTP legs.
type SSEHandler struct {
	router      Router
	bearerToken string

	mu       sync.Mutex
	sessions map[string]chan *protocol.Message
}

func NewSSEHandler(router Router, bearerToken string) *SSEHandler {
	return &SSEHandler{router: router, bearerToken: bearerToken, sessions: make(map[string]chan *protocol.Message)}
}

func (h *SSEHandler) authorize(r *http.Request) bool {
	if h.bearerToken == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+h.bearerToken
}

// ServeSSE handles the GET leg: registers a session, emits the endpoint
// event, then blocks relaying messages until the client disconnects.
func (h *SSEHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sessionID := uuid.NewString()
	ch := make(chan *protocol.Message, 16)
	h.mu.Lock()
	h.sessions[sessionID] = ch
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sessions, sessionID)
		h.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: endpoint\ndata: /message?session=%s\n\n", sessionID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			raw, err := msg.Serialize()
			if err != nil {
				logger.Warn("failed to serialize SSE message:", err)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

// ServeMessage handles the POST leg: decode one frame, dispatch it through
// the same handleMessage path the stdio loop uses, and push any reply onto
// the session's SSE channel. The POST response itself is just an ack - the
// reply always travels over the GET stream, matching the client transport,
// which reads replies only from that stream.
func (h *SSEHandler) ServeMessage(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sessionID := r.URL.Query().Get("session")
	h.mu.Lock()
	ch, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	msg, err := protocol.Parse(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON-RPC frame: %v", err), http.StatusBadRequest)
		return
	}

	reply := handleMessage(r.Context(), h.router, msg)
	w.WriteHeader(http.StatusAccepted)
	if reply != nil {
		select {
		case ch <- reply:
		case <-r.Context().Done():
		}
	}
}

// ListenAndServe runs the SSE+HTTP transport on addr until ctx is cancelled.
func (h *SSEHandler) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/sse", h.ServeSSE)
	mux.HandleFunc("/message", h.ServeMessage)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	logger.Info("SSE transport listening on", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
