package protocol

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// resourceActiveEpsilon matches the tolerance the reference implementation
// uses when deciding whether a resource's priority counts as "active" (1.0).
const resourceActiveEpsilon = 1e-6

// Implementation identifies either end of a session (client or server).
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientInfo is an alias kept distinct from Implementation at the call sites
// that name a client specifically, even though the wire shape is identical.
type ClientInfo = Implementation

// Capabilities is the set of categories a server advertises during
// initialize. A nil sub-capability means the category is entirely absent,
// not merely empty - that absence is what drives the client's local
// short-circuit behavior.
type Capabilities struct {
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Tools     *ToolsCapability     `json:"tools,omitempty"`
}

type PromptsCapability struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

type ResourcesCapability struct {
	Subscribe   *bool `json:"subscribe,omitempty"`
	ListChanged *bool `json:"listChanged,omitempty"`
}

type ToolsCapability struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

// InitializeResult is what a server returns from the initialize handshake.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    Capabilities   `json:"capabilities"`
	ServerInfo      Implementation `json:"serverInfo"`
	Instructions    string         `json:"instructions,omitempty"`
}

// Tool describes one callable tool in a tools/list response.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"inputSchema"`
}

// ToolCall is the parsed params of a tools/call request.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments,omitempty"`
}

// Annotations qualify a resource or piece of content with audience, priority
// and a freshness timestamp. Priority must sit in [0, 1]; 1.0 (within
// resourceActiveEpsilon) marks the item "active" - see Resource.IsActive.
type Annotations struct {
	Audience  []string `json:"audience,omitempty"`
	Priority  *float64 `json:"priority,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// NewAnnotations validates priority is in [0,1] before constructing.
func NewAnnotations(priority float64, timestamp string) (*Annotations, error) {
	if priority < 0.0 || priority > 1.0 {
		return nil, fmt.Errorf("annotation priority %f out of range [0,1]", priority)
	}
	return &Annotations{Priority: &priority, Timestamp: timestamp}, nil
}

// Resource is a document or other addressable, non-interactive item a server
// publishes. MimeType defaults to and is silently coerced to "text" when the
// caller supplies anything other than "text" or "blob" - mirroring the
// reference implementation, which treats an unrecognized mime category as a
// data-entry mistake rather than a hard error.
type Resource struct {
	URI         string       `json:"uri"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	MimeType    string       `json:"mimeType"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// NewResource validates uri and derives Name from its last path segment when
// name is empty. mimeType is coerced to "text" unless it is exactly "blob".
func NewResource(uri, name, mimeType string) (*Resource, error) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("invalid resource uri %q: %w", uri, err)
	}
	if name == "" {
		segments := strings.Split(strings.TrimRight(parsed.Path, "/"), "/")
		name = segments[len(segments)-1]
	}
	return &Resource{
		URI:      uri,
		Name:     name,
		MimeType: normalizeMimeCategory(mimeType),
	}, nil
}

func normalizeMimeCategory(mimeType string) string {
	if mimeType == "blob" {
		return "blob"
	}
	return "text"
}

// WithDescription returns a copy of r with Description set.
func (r Resource) WithDescription(desc string) Resource {
	r.Description = desc
	return r
}

// WithPriority returns a copy of r with an active-range-validated annotation
// priority set, preserving any existing audience/timestamp.
func (r Resource) WithPriority(priority float64) (Resource, error) {
	ann, err := NewAnnotations(priority, "")
	if err != nil {
		return r, err
	}
	if r.Annotations != nil {
		ann.Audience = r.Annotations.Audience
		ann.Timestamp = r.Annotations.Timestamp
	}
	r.Annotations = ann
	return r, nil
}

// IsActive reports whether the resource's annotation priority is within
// resourceActiveEpsilon of 1.0.
func (r Resource) IsActive() bool {
	if r.Annotations == nil || r.Annotations.Priority == nil {
		return false
	}
	diff := *r.Annotations.Priority - 1.0
	if diff < 0 {
		diff = -diff
	}
	return diff < resourceActiveEpsilon
}

// ResourceContents is the untagged text-or-blob payload returned from
// resources/read. Exactly one of Text or Blob is set, matching MimeType.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// Role identifies the speaker of a PromptMessage.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind discriminates the tagged Content union.
type ContentKind string

const (
	ContentText     ContentKind = "text"
	ContentImage    ContentKind = "image"
	ContentResource ContentKind = "resource"
)

// Content is a single piece of tool-call or prompt-message content, tagged
// by its Type field the way the wire format expects (unlike Message, which
// is untagged - Content always carries an explicit "type").
type Content struct {
	Type        ContentKind       `json:"type"`
	Text        string            `json:"text,omitempty"`
	Data        string            `json:"data,omitempty"`
	MimeType    string            `json:"mimeType,omitempty"`
	Resource    *ResourceContents `json:"resource,omitempty"`
	Annotations *Annotations      `json:"annotations,omitempty"`
}

// NewTextContent builds a text Content.
func NewTextContent(text string) Content {
	return Content{Type: ContentText, Text: text}
}

// NewImageContent validates that data decodes as base64 and mimeType begins
// with "image/" before constructing - an invalid image can otherwise sail
// through JSON marshaling undetected until a client chokes on it far from
// where the mistake was made.
func NewImageContent(data, mimeType string) (Content, error) {
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return Content{}, fmt.Errorf("image content data is not valid base64: %w", err)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Content{}, fmt.Errorf("image content mime type %q must start with \"image/\"", mimeType)
	}
	return Content{Type: ContentImage, Data: data, MimeType: mimeType}, nil
}

// NewResourceContent wraps an embedded resource as Content.
func NewResourceContent(rc ResourceContents) Content {
	return Content{Type: ContentResource, Resource: &rc}
}

// WithAnnotations attaches annotations to a Content value.
func (c Content) WithAnnotations(a Annotations) Content {
	c.Annotations = &a
	return c
}

// PromptArgument describes one named, optionally-required prompt parameter.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt describes one reusable prompt template in a prompts/list response.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptMessage is one turn of a rendered prompt, returned from prompts/get.
type PromptMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// NewTextPromptMessage builds a text PromptMessage.
func NewTextPromptMessage(role Role, text string) PromptMessage {
	return PromptMessage{Role: role, Content: NewTextContent(text)}
}

// NewImagePromptMessage validates the image content before attaching it -
// see NewImageContent.
func NewImagePromptMessage(role Role, data, mimeType string) (PromptMessage, error) {
	content, err := NewImageContent(data, mimeType)
	if err != nil {
		return PromptMessage{}, err
	}
	return PromptMessage{Role: role, Content: content}, nil
}

// CallToolResult is the result envelope for tools/call. Execution failures
// (the tool ran but produced an error) are reported via IsError=true with a
// human-readable Content entry, NOT as a JSON-RPC error - that is reserved
// for protocol/transport-level failures (unknown tool, bad arguments).
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// ListToolsResult is the result envelope for tools/list.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// ListResourcesResult is the result envelope for resources/list.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ReadResourceResult is the result envelope for resources/read.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// ListPromptsResult is the result envelope for prompts/list.
type ListPromptsResult struct {
	Prompts []Prompt `json:"prompts"`
}

// GetPromptResult is the result envelope for prompts/get.
type GetPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}
