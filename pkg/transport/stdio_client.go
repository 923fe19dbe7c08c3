package transport

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// readBufferSize matches the reference server's ByteTransport capacity - big
// enough to hold a line carrying an embedded base64 image without the
// scanner choking on bufio.ErrTooLong.
const readBufferSize = 2 * 1024 * 1024

// StdioTransport spawns a child process and frames newline-delimited JSON
// over its stdin/stdout, the same framing the teacher's own stdio transport
// uses for its server side, run here in the client direction.
type StdioTransport struct {
	Command string
	Args    []string
	Env     map[string]string

	cmd *exec.Cmd
}

func NewStdioTransport(command string, args []string, env map[string]string) *StdioTransport {
	return &StdioTransport{Command: command, Args: args, Env: env}
}

func (t *StdioTransport) Start(ctx context.Context) (Handle, error) {
	cmd := exec.CommandContext(ctx, t.Command, t.Args...)
	if len(t.Env) > 0 {
		env := os.Environ()
		for k, v := range t.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &Error{Kind: ErrStdioProcess, Message: err.Error()}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &Error{Kind: ErrStdioProcess, Message: err.Error()}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &Error{Kind: ErrStdioProcess, Message: err.Error()}
	}

	if err := cmd.Start(); err != nil {
		return nil, &Error{Kind: ErrStdioProcess, Message: err.Error()}
	}
	t.cmd = cmd

	h := &stdioHandle{
		writer:  stdin,
		pending: NewPendingRequests(),
		writeCh: make(chan []byte, 64),
		doneCh:  make(chan struct{}),
	}

	go h.drainStderr(stderr)
	go h.readLoop(stdout)
	go h.writeLoop()

	return h, nil
}

func (t *StdioTransport) Close(ctx context.Context) error {
	if t.cmd == nil || t.cmd.Process == nil {
		return nil
	}
	return t.cmd.Process.Kill()
}

type stdioHandle struct {
	writer   io.WriteCloser
	pending  *PendingRequests
	writeCh  chan []byte
	doneCh   chan struct{}
	closeErr error
	closeMu  sync.Mutex
}

func (h *stdioHandle) Send(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	raw, err := msg.Serialize()
	if err != nil {
		return nil, &Error{Kind: ErrSerialization, Message: err.Error()}
	}
	raw = append(raw, '\n')

	switch msg.Kind {
	case protocol.KindRequest:
		id, _ := msg.ID()
		waiter := h.pending.Insert(id)
		select {
		case h.writeCh <- raw:
		case <-h.doneCh:
			return nil, h.fatal()
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
	case protocol.KindNotification:
		select {
		case h.writeCh <- raw:
		case <-h.doneCh:
			return nil, h.fatal()
		}
		return &protocol.Message{Kind: protocol.KindNil}, nil
	default:
		return nil, &Error{Kind: ErrUnsupportedMessage, Message: "transport can only send Request or Notification messages"}
	}
}

func (h *stdioHandle) writeLoop() {
	for raw := range h.writeCh {
		if _, err := h.writer.Write(raw); err != nil {
			h.fail(&Error{Kind: ErrIO, Message: err.Error()})
			return
		}
	}
}

func (h *stdioHandle) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, readBufferSize), readBufferSize*4)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := protocol.Parse(line)
		if err != nil {
			logger.Warn("stdio transport: dropping unparseable line:", err)
			continue
		}
		switch msg.Kind {
		case protocol.KindResponse:
			id, _ := msg.ID()
			h.pending.Respond(id, msg, nil)
		case protocol.KindErrorReply:
			id, _ := msg.ID()
			h.pending.Respond(id, msg, nil)
		default:
			// Server-initiated requests/notifications are out of scope; drop.
		}
	}
	h.fail(&Error{Kind: ErrNotConnected, Message: "stdio transport child process closed its stdout"})
}

func (h *stdioHandle) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logger.Debug("child stderr:", scanner.Text())
	}
}

func (h *stdioHandle) fail(err error) {
	h.closeMu.Lock()
	if h.closeErr == nil {
		h.closeErr = err
		close(h.doneCh)
		h.pending.Clear(err)
	}
	h.closeMu.Unlock()
}

func (h *stdioHandle) fatal() error {
	h.closeMu.Lock()
	defer h.closeMu.Unlock()
	if h.closeErr != nil {
		return h.closeErr
	}
	return &Error{Kind: ErrChannelClosed, Message: "stdio transport closed"}
}
