package protocol

import (
	"encoding/json"
	"fmt"
)

/**
https://modelcontextprotocol.info/specification/draft/basic/lifecycle/
Flow:
	LLM starts up and notices our server in config in mcp.json
	Makes json rpc 'initialize' request : eg {"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"claude-ai","version":"0.1.0"}},"jsonrpc":"2.0","id":0}
	we respond with something telling the LLM what we are: eg {"jsonrpc":"2.0","id":0,"result":{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"serverInfo":{"name":"Demo","version":"1.0.0"}}}
	The above tells the LLM that we are a tools server with name 'Demo'
	The LLM returns two responses usually (actually one 'notification' and one 'request'):
	1) {"method":"notifications/initialized","jsonrpc":"2.0"}
	   This tells us that the LLM has acknowledged our MCP server
	2) {"method":"tools/list","params":{},"jsonrpc":"2.0","id":1}
	   This tells us that the LLM knows we are a tools server and wants to know what tools we have
	We respond with a tools listing, and so on for resources/list and prompts/list.

	Every message on the wire is one line of JSON terminated by '\n'. None of the five
	shapes below carry an explicit "type" tag - which one a line is gets decided purely
	by which of id/method/result/error are present. See Parse below.
*/

// JsonRpcVersion is the only protocol version this package emits or accepts.
const JsonRpcVersion = "2.0"

// Kind discriminates which of the five JSON-RPC shapes a Message holds.
type Kind int

const (
	// KindNil is returned for a line with none of id/method/result/error set -
	// the reply an MCP server sends to a notification is simply "nothing", and
	// on read-back of nothing we model it as this sentinel rather than nil.
	KindNil Kind = iota
	KindRequest
	KindResponse
	KindNotification
	KindErrorReply
)

// JsonRpcRequest represents a JSON-RPC 2.0 request object.
type JsonRpcRequest struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      *uint64         `json:"id,omitempty"`
}

// JsonRpcNotification is a request with no id - no reply is expected.
type JsonRpcNotification struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JsonRpcResponse represents a JSON-RPC 2.0 success response object.
type JsonRpcResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	ID      *uint64         `json:"id,omitempty"`
}

// JsonRpcErrorReply represents a JSON-RPC 2.0 error response object.
type JsonRpcErrorReply struct {
	JsonRPC string        `json:"jsonrpc"`
	Error   *JsonRpcError `json:"error"`
	ID      *uint64       `json:"id,omitempty"`
}

// JsonRpcError is the "error" member of an error reply.
type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JsonRpcError) Error() string {
	return fmt.Sprintf("jsonrpc error: code=%d message=%s", e.Code, e.Message)
}

// Standard error codes defined by the JSON-RPC 2.0 specification. These values
// are part of the wire contract and must never change.
const (
	ErrParse          = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
	ErrServer         = -32000
)

// Message is a parsed JSON-RPC line. Exactly one of Request, Notification,
// Response, ErrorReply is non-nil, selected by Kind; KindNil carries none.
type Message struct {
	Kind         Kind
	Request      *JsonRpcRequest
	Notification *JsonRpcNotification
	Response     *JsonRpcResponse
	ErrorReply   *JsonRpcErrorReply
}

// jsonRpcRaw is the superset shape every line is first unmarshaled into so the
// discriminator can inspect which fields actually showed up on the wire.
type jsonRpcRaw struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Method  *string         `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JsonRpcError   `json:"error,omitempty"`
}

// Parse decodes one line of JSON into a Message. The jsonrpc version field is
// NOT checked here - that is the framer's job, one layer up, since a bad
// version on an otherwise well-shaped message should surface as a
// framing-level error, not a discriminator failure.
func Parse(raw []byte) (*Message, error) {
	var r jsonRpcRaw
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	// error present -> error reply, regardless of anything else set.
	if r.Error != nil {
		return &Message{
			Kind: KindErrorReply,
			ErrorReply: &JsonRpcErrorReply{
				JsonRPC: r.JsonRPC,
				Error:   r.Error,
				ID:      r.ID,
			},
		}, nil
	}

	// result present -> success response.
	if r.Result != nil {
		return &Message{
			Kind: KindResponse,
			Response: &JsonRpcResponse{
				JsonRPC: r.JsonRPC,
				Result:  r.Result,
				ID:      r.ID,
			},
		}, nil
	}

	// method present -> request (id set) or notification (id absent).
	if r.Method != nil {
		if r.ID == nil {
			return &Message{
				Kind: KindNotification,
				Notification: &JsonRpcNotification{
					JsonRPC: r.JsonRPC,
					Method:  *r.Method,
					Params:  r.Params,
				},
			}, nil
		}
		return &Message{
			Kind: KindRequest,
			Request: &JsonRpcRequest{
				JsonRPC: r.JsonRPC,
				Method:  *r.Method,
				Params:  r.Params,
				ID:      r.ID,
			},
		}, nil
	}

	// none of id/method/result/error set -> the nil sentinel.
	if r.ID == nil {
		return &Message{Kind: KindNil}, nil
	}

	return nil, fmt.Errorf("invalid JSON-RPC message shape: id=%v method=%v result=%s error=%v",
		r.ID, r.Method, r.Result, r.Error)
}

// Serialize marshals a Message back to its wire form, without a trailing
// newline - framers own line termination.
func (m *Message) Serialize() ([]byte, error) {
	switch m.Kind {
	case KindRequest:
		return json.Marshal(m.Request)
	case KindNotification:
		return json.Marshal(m.Notification)
	case KindResponse:
		return json.Marshal(m.Response)
	case KindErrorReply:
		return json.Marshal(m.ErrorReply)
	case KindNil:
		return nil, fmt.Errorf("cannot serialize a nil message - it has no wire representation")
	default:
		return nil, fmt.Errorf("unknown message kind %d", m.Kind)
	}
}

// ID returns the correlation id carried by a Request, Response or ErrorReply,
// and false for a Notification or the Nil sentinel.
func (m *Message) ID() (uint64, bool) {
	switch m.Kind {
	case KindRequest:
		if m.Request.ID != nil {
			return *m.Request.ID, true
		}
	case KindResponse:
		if m.Response.ID != nil {
			return *m.Response.ID, true
		}
	case KindErrorReply:
		if m.ErrorReply.ID != nil {
			return *m.ErrorReply.ID, true
		}
	}
	return 0, false
}

// NewRequest builds a Request-kind Message.
func NewRequest(method string, params interface{}, id uint64) (*Message, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Message{
		Kind: KindRequest,
		Request: &JsonRpcRequest{
			JsonRPC: JsonRpcVersion,
			Method:  method,
			Params:  raw,
			ID:      &id,
		},
	}, nil
}

// NewNotification builds a Notification-kind Message.
func NewNotification(method string, params interface{}) (*Message, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Message{
		Kind: KindNotification,
		Notification: &JsonRpcNotification{
			JsonRPC: JsonRpcVersion,
			Method:  method,
			Params:  raw,
		},
	}, nil
}

// NewResponse builds a Response-kind Message.
func NewResponse(result interface{}, id uint64) (*Message, error) {
	raw, err := marshalParams(result)
	if err != nil {
		return nil, err
	}
	return &Message{
		Kind: KindResponse,
		Response: &JsonRpcResponse{
			JsonRPC: JsonRpcVersion,
			Result:  raw,
			ID:      &id,
		},
	}, nil
}

// NewErrorReply builds an ErrorReply-kind Message. id is nil when the error
// occurred before an id could even be parsed off the wire (e.g. parse error).
func NewErrorReply(code int, message string, data interface{}, id *uint64) *Message {
	return &Message{
		Kind: KindErrorReply,
		ErrorReply: &JsonRpcErrorReply{
			JsonRPC: JsonRpcVersion,
			Error:   &JsonRpcError{Code: code, Message: message, Data: data},
			ID:      id,
		},
	}
}

func marshalParams(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
