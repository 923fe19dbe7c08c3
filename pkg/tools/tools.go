// Package tools holds the example tool plug-ins that exercise the server's
// dispatch loop end to end - a calculator, a stateful counter, an Apifox
// HTTP-proxy tool, an HTML-to-Markdown converter, and a headless-browser
// screenshot tool. None of this is part of the protocol core; it exists to
// give the core something real to dispatch to.
package tools

import (
	"context"
	"sort"
	"sync"

	"github.com/deckarep/golang-set/v2"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// Handler is the plug-in contract a tool satisfies to be registered with a
// Registry and, through it, exposed over tools/list and tools/call.
type Handler interface {
	Descriptor() protocol.Tool
	Call(ctx context.Context, arguments any) (*protocol.CallToolResult, error)
}

// Registry is a name-keyed collection of Handlers. Registration order is not
// preserved on purpose - tools/list always returns entries sorted by name so
// two runs of the same server produce byte-identical listings.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	names    mapset.Set[string]
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler), names: mapset.NewSet[string]()}
}

func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
	r.names.Add(name)
}

func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := r.names.ToSlice()
	sort.Strings(names)
	tools := make([]protocol.Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, r.handlers[name].Descriptor())
	}
	return tools
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
