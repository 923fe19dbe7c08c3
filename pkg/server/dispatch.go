package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/richard-senior/mcpgo/internal/logger"
	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// Dispatch runs the read/handle/write loop for one session: pull a frame,
// route it to router, push back a reply. It is strictly sequential - one
// request is fully handled (including any blocking work the router does)
// before the next frame is read, which is what bounds a single session to
// one request in flight and gives natural backpressure against a slow
// handler without any extra buffering.
func Dispatch(ctx context.Context, router Router, framer *Framer) error {
	for {
		msg, err := framer.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var fe *FrameError
			if errors.As(err, &fe) {
				logger.Warn("frame error:", fe.Message)
				_ = framer.WriteMessage(protocol.NewErrorReply(fe.Code, fe.Message, nil, nil))
				continue
			}
			return err
		}

		reply := handleMessage(ctx, router, msg)
		if reply == nil {
			continue // notifications get no reply at all
		}
		if err := framer.WriteMessage(reply); err != nil {
			return err
		}
	}
}

func handleMessage(ctx context.Context, router Router, msg *protocol.Message) *protocol.Message {
	switch msg.Kind {
	case protocol.KindNotification:
		// Notifications from the peer (e.g. notifications/initialized) are
		// acknowledged by doing nothing - no reply is ever sent.
		logger.Debug("received notification:", msg.Notification.Method)
		return nil
	case protocol.KindRequest:
		return handleRequest(ctx, router, msg.Request)
	case protocol.KindResponse, protocol.KindErrorReply, protocol.KindNil:
		// Bidirectional server-initiated requests are out of scope; anything
		// that looks like a reply to a request we never sent is dropped.
		return nil
	default:
		return nil
	}
}

func handleRequest(ctx context.Context, router Router, req *protocol.JsonRpcRequest) *protocol.Message {
	id := *req.ID
	result, err := dispatchMethod(ctx, router, req.Method, req.Params)
	if err != nil {
		var unknown *unknownMethodError
		if errors.As(err, &unknown) {
			return protocol.NewErrorReply(protocol.ErrMethodNotFound, err.Error(), nil, &id)
		}
		code, message := toJSONRPCError(err)
		return protocol.NewErrorReply(code, message, nil, &id)
	}
	msg, err := protocol.NewResponse(result, id)
	if err != nil {
		return protocol.NewErrorReply(protocol.ErrInternal, err.Error(), nil, &id)
	}
	return msg
}

type unknownMethodError struct{ method string }

func (e *unknownMethodError) Error() string { return "method not found: " + e.method }

func dispatchMethod(ctx context.Context, router Router, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "initialize":
		var p struct {
			ProtocolVersion string                    `json:"protocolVersion"`
			ClientInfo      protocol.Implementation    `json:"clientInfo"`
			Capabilities    map[string]json.RawMessage `json:"capabilities"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "invalid initialize params: %v", err)
		}
		return router.HandleInitialize(ctx, p.ClientInfo, p.ProtocolVersion)

	case "tools/list":
		tools, err := router.ListTools(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.ListToolsResult{Tools: tools}, nil

	case "tools/call":
		var call protocol.ToolCall
		if err := unmarshalParams(params, &call); err != nil {
			return nil, protocol.NewToolError(protocol.ToolInvalidParameters, "invalid tools/call params: %v", err)
		}
		return router.CallTool(ctx, call)

	case "resources/list":
		resources, err := router.ListResources(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.ListResourcesResult{Resources: resources}, nil

	case "resources/read":
		var p struct {
			URI string `json:"uri"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, protocol.NewResourceError(protocol.ResourceExecutionError, "invalid resources/read params: %v", err)
		}
		contents, err := router.ReadResource(ctx, p.URI)
		if err != nil {
			return nil, err
		}
		return protocol.ReadResourceResult{Contents: contents}, nil

	case "prompts/list":
		prompts, err := router.ListPrompts(ctx)
		if err != nil {
			return nil, err
		}
		return protocol.ListPromptsResult{Prompts: prompts}, nil

	case "prompts/get":
		var p struct {
			Name      string            `json:"name"`
			Arguments map[string]string `json:"arguments"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, protocol.NewPromptError(protocol.PromptInvalidParameters, "invalid prompts/get params: %v", err)
		}
		return router.GetPrompt(ctx, p.Name, p.Arguments)

	default:
		if strings.HasPrefix(method, "notifications/") {
			return nil, nil
		}
		return nil, &unknownMethodError{method: method}
	}
}

func unmarshalParams(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
