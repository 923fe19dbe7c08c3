package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/mcpgo/pkg/protocol"
)

func TestPendingRequestsExactIDCorrelation(t *testing.T) {
	p := NewPendingRequests()

	chA := p.Insert(1)
	chB := p.Insert(2)

	msgB, err := protocol.NewResponse(map[string]any{"ok": true}, 2)
	require.NoError(t, err)
	p.Respond(2, msgB, nil)

	select {
	case r := <-chB:
		require.NoError(t, r.err)
		id, _ := r.msg.ID()
		assert.Equal(t, uint64(2), id)
	default:
		t.Fatal("expected slot 2 to resolve")
	}

	select {
	case <-chA:
		t.Fatal("slot 1 must not resolve from a reply addressed to id 2")
	default:
	}
}

func TestPendingRequestsRespondToUnknownIDIsDropped(t *testing.T) {
	p := NewPendingRequests()
	// No Insert for id 99 - this must not panic or block.
	p.Respond(99, nil, nil)
}

func TestPendingRequestsClearFailsEverythingPending(t *testing.T) {
	p := NewPendingRequests()
	ch := p.Insert(1)

	boom := errors.New("connection closed")
	p.Clear(boom)

	r := <-ch
	assert.ErrorIs(t, r.err, boom)
}
