// Package client implements the buffering state machine a collaborative
// editor uses to stay causally consistent with a server while at most one
// operation is ever in flight.
package client

import (
	"sync"

	"github.com/coreseekdev/polyphony/pkg/document"
	"github.com/coreseekdev/polyphony/pkg/ot"
	"github.com/coreseekdev/polyphony/pkg/wire"
)

// State describes how a Session currently relates to the server: whether
// it has anything in flight, and whether local edits have piled up behind
// that in-flight operation.
type State int

const (
	// StateSynchronized means the client has no outstanding operation and
	// any local edit can be sent immediately.
	StateSynchronized State = iota
	// StateAwaitingAck means one operation has been sent and not yet
	// acknowledged.
	StateAwaitingAck
	// StateAwaitingWithBuffer means an operation is in flight and further
	// local edits have been composed into a buffer behind it.
	StateAwaitingWithBuffer
)

// EventType identifies a notable moment in a Session's lifecycle.
type EventType int

const (
	// EventConnected fires when the embedder tells the session its
	// transport has come up. The core never triggers this itself -
	// reconnection policy is out of scope - but it's part of the event
	// taxonomy embedders can rely on reporting through.
	EventConnected EventType = iota
	// EventDisconnected is EventConnected's counterpart.
	EventDisconnected
	// EventOpIncoming fires when a foreign operation arrives from the
	// server, before it has been rebased against local state.
	EventOpIncoming
	// EventOpApplied fires once a (possibly rebased) operation has been
	// folded into the local document.
	EventOpApplied
	// EventError fires when Receive cannot decode, transform, or append
	// an incoming message. The session remains valid for future calls.
	EventError
)

// EventFunc is notified of session lifecycle events. It may be nil.
type EventFunc func(evt EventType, op *ot.Op)

// SendFunc transmits an already wire-encoded operation to the server. It
// may call back into the Session (directly, as an in-process harness does,
// or indirectly via a round trip through a real transport) so it must
// never be invoked while the session's lock is held.
type SendFunc func(data []byte) error

// Session is one client's view of a collaborative document: a local copy
// of the history plus the bookkeeping needed to keep at most one operation
// in flight to the server at a time.
type Session struct {
	mu       sync.Mutex
	Doc      *document.Doc
	ClientID uint32
	Send     SendFunc
	Event    EventFunc

	ackRequired bool
	anticipated *ot.Op
	buffer      *ot.Op
}

// NewSession returns a client Session backed by doc, identified by
// clientID, transmitting through send.
func NewSession(doc *document.Doc, clientID uint32, send SendFunc) *Session {
	return &Session{Doc: doc, ClientID: clientID, Send: send}
}

// State reports the session's current position in the buffering state
// machine.
func (c *Session) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Session) state() State {
	switch {
	case c.anticipated == nil:
		return StateSynchronized
	case c.buffer == nil:
		return StateAwaitingAck
	default:
		return StateAwaitingWithBuffer
	}
}

// Apply applies a local edit: it is stamped with this client's ID, folded
// into the local document immediately (so the editor sees it right away),
// and either sent to the server or queued behind whatever is already in
// flight.
func (c *Session) Apply(op *ot.Op) error {
	c.mu.Lock()
	op.ClientID = c.ClientID
	if err := c.Doc.Append(op); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.bufferOp(op); err != nil {
		c.mu.Unlock()
		return err
	}
	var toSend []byte
	if !c.ackRequired {
		var err error
		toSend, err = c.prepareSend(nil)
		if err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()

	if toSend != nil {
		return c.Send(toSend)
	}
	return nil
}

// Receive processes one incoming server message: either an acknowledgment
// of this client's own in-flight operation, or a foreign operation that
// must be rebased against local state before it can be applied.
func (c *Session) Receive(data []byte) error {
	op, err := wire.DecodeOp(data)
	if err != nil {
		c.fireError(nil)
		return err
	}

	c.mu.Lock()

	if op.ClientID == c.ClientID {
		c.ackRequired = false
		hash := op.Hash
		toSend, err := c.prepareSend(&hash)
		c.mu.Unlock()
		if err != nil {
			c.fireError(op)
			return err
		}
		if toSend != nil {
			return c.Send(toSend)
		}
		return nil
	}

	// The op is a foreign edit, not our own acknowledgment: fire
	// OpIncoming before running the two rebasing transforms, matching the
	// order the protocol describes, and release the lock first since
	// Event must never be called while it is held.
	c.mu.Unlock()
	if c.Event != nil {
		c.Event(EventOpIncoming, op)
	}
	c.mu.Lock()

	prevAnticipated := c.anticipated
	inter, err := c.xformAnticipated(op)
	if err != nil {
		c.mu.Unlock()
		c.fireError(op)
		return ot.ErrXformFailed
	}
	apply, err := c.xformBuffer(inter)
	if err != nil {
		c.anticipated = prevAnticipated
		c.mu.Unlock()
		c.fireError(op)
		return ot.ErrXformFailed
	}
	if err := c.Doc.Append(apply); err != nil {
		c.mu.Unlock()
		c.fireError(op)
		return ot.ErrAppendFailed
	}
	c.mu.Unlock()

	if c.Event != nil {
		c.Event(EventOpApplied, apply)
	}
	return nil
}

// fireError notifies Event of a Receive failure. It must only be called
// with the session lock released, matching every other Event call site.
func (c *Session) fireError(op *ot.Op) {
	if c.Event != nil {
		c.Event(EventError, op)
	}
}

// bufferOp folds op into the pending local buffer, composing it with
// whatever is already queued there.
func (c *Session) bufferOp(op *ot.Op) error {
	if c.buffer == nil {
		c.buffer = op.Dup()
		return nil
	}
	composed, err := ot.Compose(c.buffer, op)
	if err != nil {
		return ot.ErrBufferFailed
	}
	c.buffer = composed
	return nil
}

// prepareSend promotes the pending buffer to the anticipated (in-flight)
// slot and returns its wire encoding, or nil if there is nothing buffered.
// A non-nil receivedHash rebases the buffer's declared parent onto the
// hash the server just confirmed. The caller sends the returned bytes
// after releasing the session lock.
func (c *Session) prepareSend(receivedHash *ot.Hash) ([]byte, error) {
	if c.buffer == nil {
		c.anticipated = nil
		return nil, nil
	}
	if receivedHash != nil {
		c.buffer.Parent = *receivedHash
	}
	data, err := wire.EncodeOp(c.buffer)
	if err != nil {
		return nil, err
	}
	c.anticipated = c.buffer
	c.buffer = nil
	c.ackRequired = true
	return data, nil
}

// xformAnticipated rebases an incoming server operation against whatever
// this client still has in flight, returning the piece of it that should
// be applied locally next.
func (c *Session) xformAnticipated(received *ot.Op) (*ot.Op, error) {
	if c.anticipated == nil {
		return received, nil
	}
	inter, newAnticipated, err := ot.Transform(received, c.anticipated)
	if err != nil {
		return nil, err
	}
	c.anticipated = newAnticipated
	return inter, nil
}

// xformBuffer rebases an already-anticipated-transformed operation against
// this client's pending local buffer.
func (c *Session) xformBuffer(inter *ot.Op) (*ot.Op, error) {
	if c.buffer == nil {
		return inter, nil
	}
	newBuffer, apply, err := ot.Transform(c.buffer, inter)
	if err != nil {
		return nil, err
	}
	c.buffer = newBuffer
	return apply, nil
}
