package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// frameBufferSize matches the client stdio transport's allowance for a line
// carrying an embedded base64 image; it only seeds the scanner's initial
// buffer. maxFrameSize is the scanner's real hard cap, and what oversized
// frames are actually measured against.
const frameBufferSize = 2 * 1024 * 1024
const maxFrameSize = frameBufferSize * 4

// Framer owns a session's reader and writer exclusively: one Framer reads
// one line at a time and writes one line at a time, so there is never a
// concurrent writer to interleave with a reply mid-flight.
type Framer struct {
	scanner *bufio.Scanner
	writer  *bufio.Writer
	writeMu sync.Mutex
}

func NewFramer(r io.Reader, w io.Writer) *Framer {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, frameBufferSize), maxFrameSize)
	return &Framer{scanner: scanner, writer: bufio.NewWriter(w)}
}

// FrameError is a failure to turn one line into a protocol.Message, carrying
// the JSON-RPC code the dispatch loop replies with: PARSE_ERROR for a line
// that does not decode as a JSON object, INVALID_REQUEST for a missing or
// mismatching jsonrpc version tag or a shape protocol.Parse rejects.
type FrameError struct {
	Code    int
	Message string
}

func (e *FrameError) Error() string { return e.Message }

// ReadMessage reads one newline-delimited line and parses it. io.EOF is
// returned unwrapped so callers can distinguish a clean session end from a
// framing failure.
func (f *Framer) ReadMessage() (*protocol.Message, error) {
	for f.scanner.Scan() {
		line := f.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if len(line) > maxFrameSize {
			logger.Warn("dropping oversized frame:", humanize.Bytes(uint64(len(line))))
			continue
		}

		var probe struct {
			JsonRPC string `json:"jsonrpc"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			return nil, &FrameError{Code: protocol.ErrParse, Message: fmt.Sprintf("invalid JSON: %v", err)}
		}
		if probe.JsonRPC != protocol.JsonRpcVersion {
			return nil, &FrameError{Code: protocol.ErrInvalidRequest, Message: fmt.Sprintf("unsupported jsonrpc version %q", probe.JsonRPC)}
		}

		msg, err := protocol.Parse(line)
		if err != nil {
			return nil, &FrameError{Code: protocol.ErrInvalidRequest, Message: err.Error()}
		}
		return msg, nil
	}
	if err := f.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// WriteMessage serializes and writes one newline-terminated line, flushing
// immediately so a reply is visible to the peer as soon as it is produced.
func (f *Framer) WriteMessage(msg *protocol.Message) error {
	raw, err := msg.Serialize()
	if err != nil {
		return err
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if _, err := f.writer.Write(raw); err != nil {
		return err
	}
	if err := f.writer.WriteByte('\n'); err != nil {
		return err
	}
	return f.writer.Flush()
}
