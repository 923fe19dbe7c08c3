package server

import "github.com/richard-senior/mcpgo/pkg/protocol"

// toJSONRPCError maps a Router/handler error to a JSON-RPC error code.
// NotFound-flavored errors map to INVALID_REQUEST, not METHOD_NOT_FOUND -
// the method (tools/call, resources/read, ...) was found just fine, it's the
// named tool/resource/prompt that wasn't. METHOD_NOT_FOUND is reserved for
// an unrecognized top-level method name, handled separately in dispatch.go.
func toJSONRPCError(err error) (code int, message string) {
	switch e := err.(type) {
	case *protocol.ToolError:
		switch e.Kind {
		case protocol.ToolInvalidParameters:
			return protocol.ErrInvalidParams, e.Msg
		case protocol.ToolNotFound:
			return protocol.ErrInvalidRequest, e.Msg
		default: // ToolExecutionError, ToolSchemaError
			return protocol.ErrInternal, e.Msg
		}
	case *protocol.ResourceError:
		switch e.Kind {
		case protocol.ResourceNotFound:
			return protocol.ErrInvalidRequest, e.Msg
		default:
			return protocol.ErrInternal, e.Msg
		}
	case *protocol.PromptError:
		switch e.Kind {
		case protocol.PromptInvalidParameters:
			return protocol.ErrInvalidParams, e.Msg
		case protocol.PromptNotFound:
			return protocol.ErrInvalidRequest, e.Msg
		default:
			return protocol.ErrInternal, e.Msg
		}
	default:
		return protocol.ErrInternal, err.Error()
	}
}
