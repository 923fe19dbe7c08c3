package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// Counter is a tiny piece of server-side state shared across calls within
// one process - a minimal stand-in for the reference implementation's own
// counter example, which exists purely to prove a tool handler can carry
// state between invocations rather than being purely functional.
type Counter struct {
	mu    sync.Mutex
	value int
}

func NewCounter() *Counter { return &Counter{} }

// Increment, Decrement and GetValue are each registered under their own
// tool name, the same three-operation split the reference CounterRouter
// exposes.
func (c *Counter) Increment() counterOp {
	return counterOp{counter: c, name: "increment", apply: func(v int) int { return v + 1 }}
}

func (c *Counter) Decrement() counterOp {
	return counterOp{counter: c, name: "decrement", apply: func(v int) int { return v - 1 }}
}

func (c *Counter) GetValue() counterOp {
	return counterOp{counter: c, name: "get_value", apply: func(v int) int { return v }}
}

// counterOp is a Handler bound to one of the three named operations above;
// apply is applied under the counter's lock and its return value becomes the
// new stored value (a no-op identity function for get_value).
type counterOp struct {
	counter *Counter
	name    string
	apply   func(int) int
}

func (c counterOp) Descriptor() protocol.Tool {
	return protocol.Tool{
		Name:        c.name,
		Description: "Counter operation: " + c.name,
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}, "required": []string{}},
	}
}

func (c counterOp) Call(ctx context.Context, arguments any) (*protocol.CallToolResult, error) {
	c.counter.mu.Lock()
	c.counter.value = c.apply(c.counter.value)
	v := c.counter.value
	c.counter.mu.Unlock()

	return &protocol.CallToolResult{
		Content: []protocol.Content{protocol.NewTextContent(fmt.Sprintf("%d", v))},
	}, nil
}
