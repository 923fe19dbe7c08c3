package protocol

import "fmt"

// ToolErrorKind discriminates the ways a tool handler can fail.
type ToolErrorKind int

const (
	ToolInvalidParameters ToolErrorKind = iota
	ToolExecutionError
	ToolSchemaError
	ToolNotFound
)

// ToolError is returned by a ToolHandler. Its Kind decides which JSON-RPC
// error code the dispatch loop maps it to - see pkg/server/errors.go.
type ToolError struct {
	Kind ToolErrorKind
	Msg  string
}

func (e *ToolError) Error() string { return e.Msg }

func NewToolError(kind ToolErrorKind, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ResourceErrorKind discriminates the ways a resource lookup can fail.
type ResourceErrorKind int

const (
	ResourceExecutionError ResourceErrorKind = iota
	ResourceNotFound
)

type ResourceError struct {
	Kind ResourceErrorKind
	Msg  string
}

func (e *ResourceError) Error() string { return e.Msg }

func NewResourceError(kind ResourceErrorKind, format string, args ...any) *ResourceError {
	return &ResourceError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// PromptErrorKind discriminates the ways a prompt lookup can fail.
type PromptErrorKind int

const (
	PromptInvalidParameters PromptErrorKind = iota
	PromptInternalError
	PromptNotFound
)

type PromptError struct {
	Kind PromptErrorKind
	Msg  string
}

func (e *PromptError) Error() string { return e.Msg }

func NewPromptError(kind PromptErrorKind, format string, args ...any) *PromptError {
	return &PromptError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
