package transport

import (
	"sync"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

// result is what a pending slot resolves to: either a reply message or a
// transport-level error that means no reply will ever arrive.
type result struct {
	msg *protocol.Message
	err error
}

// PendingRequests is the correlation table shared by every client transport:
// each in-flight request gets a one-shot channel keyed by its id, and the
// transport's read loop resolves that channel the moment a reply with a
// matching id shows up - regardless of what order replies arrive in.
//
// Deliberately NOT compared against "the last id issued" - that shortcut is
// a known bug in the reference client (it works only when there is exactly
// one request in flight) and this table exists precisely so it is never
// needed.
type PendingRequests struct {
	mu   sync.Mutex
	slot map[uint64]chan result
}

func NewPendingRequests() *PendingRequests {
	return &PendingRequests{slot: make(map[uint64]chan result)}
}

// Insert registers a one-shot slot for id and returns the channel to wait on.
// Callers must Insert before the request is written to the wire, to close
// the race against an implausibly fast reply.
func (p *PendingRequests) Insert(id uint64) <-chan result {
	ch := make(chan result, 1)
	p.mu.Lock()
	p.slot[id] = ch
	p.mu.Unlock()
	return ch
}

// Respond delivers a reply (or error) to the slot for id, if one is still
// pending. A reply for an id nobody is waiting on - e.g. the caller already
// timed out and walked away - is silently dropped, matching the reference
// implementation's "late reply after cancellation" behavior.
func (p *PendingRequests) Respond(id uint64, msg *protocol.Message, err error) {
	p.mu.Lock()
	ch, ok := p.slot[id]
	if ok {
		delete(p.slot, id)
	}
	p.mu.Unlock()
	if ok {
		ch <- result{msg: msg, err: err}
	}
}

// Clear fails every still-pending request with err, used when the underlying
// connection drops out from under them.
func (p *PendingRequests) Clear(err error) {
	p.mu.Lock()
	slots := p.slot
	p.slot = make(map[uint64]chan result)
	p.mu.Unlock()
	for _, ch := range slots {
		ch <- result{err: err}
	}
}
