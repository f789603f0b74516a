// Package server hosts the authoritative side of a collaborative document:
// it receives operations from any number of clients, rebases them against
// history they may not have seen yet, and broadcasts the result.
package server

import (
	"sync"

	"github.com/coreseekdev/polyphony/pkg/document"
	"github.com/coreseekdev/polyphony/pkg/ot"
	"github.com/coreseekdev/polyphony/pkg/wire"
)

// EventType identifies what kind of thing happened to a Session's document.
type EventType int

const (
	// EventOpAppended fires whenever an operation, original or rebased,
	// is folded into the document history.
	EventOpAppended EventType = iota
	// EventError fires whenever Receive cannot decode, rebase, or append
	// an incoming client message. The offending client is also sent an
	// errorCode object over Send; the session remains valid afterward.
	EventError
)

// EventFunc is notified of session lifecycle events. It may be nil.
type EventFunc func(evt EventType, op *ot.Op)

// SendFunc broadcasts an already wire-encoded message (an operation or an
// error object) to every connected client. It may call back into the
// Session (directly, as an in-process harness does, or via a round trip
// through a real transport), so it must never be invoked while the
// session's lock is held.
type SendFunc func(data []byte) error

// Session is the authoritative side of one document's collaboration. A
// single Session is not bound to any particular transport: callers wire it
// to a broadcast function and feed it incoming client messages.
type Session struct {
	mu    sync.Mutex
	Doc   *document.Doc
	Send  SendFunc
	Event EventFunc
}

// NewSession returns a Session backed by doc, broadcasting through send.
func NewSession(doc *document.Doc, send SendFunc) *Session {
	return &Session{Doc: doc, Send: send}
}

// Receive decodes one incoming client message and processes it. Decode
// failures and processing failures are both reported back to clients as a
// wire error object via Send, and also returned to the caller.
func (s *Session) Receive(data []byte) error {
	op, err := wire.DecodeOp(data)
	if err != nil {
		s.sendErr(ot.CodeOf(err))
		s.fireError(nil)
		return err
	}

	out, err := s.handle(op)
	if err != nil {
		s.sendErr(ot.CodeOf(err))
		s.fireError(op)
		return err
	}
	return s.Send(out)
}

// fireError notifies Event of a Receive failure. It must only be called
// with the session lock released, matching handle's own Event call site.
func (s *Session) fireError(op *ot.Op) {
	if s.Event != nil {
		s.Event(EventError, op)
	}
}

// handle decides whether op can be appended directly or must first be
// rebased against history the client's parent hash doesn't cover, appends
// the result, and returns its wire encoding. The document lock is held
// only across the decision and the append, never across the broadcast.
func (s *Session) handle(op *ot.Op) ([]byte, error) {
	s.mu.Lock()

	result := op
	if op.Parent != s.Doc.Head() {
		composedSince, err := s.Doc.ComposeAfter(op.Parent)
		if err != nil {
			s.mu.Unlock()
			return nil, ot.ErrXformFailed
		}
		_, opPrime, err := ot.Transform(composedSince, op)
		if err != nil {
			s.mu.Unlock()
			return nil, ot.ErrXformFailed
		}
		result = opPrime
	}

	if err := s.Doc.Append(result); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	if s.Event != nil {
		s.Event(EventOpAppended, result)
	}
	data, err := wire.EncodeOp(result)
	if err != nil {
		return nil, ot.ErrAppendFailed
	}
	return data, nil
}

func (s *Session) sendErr(code ot.ErrCode) {
	if code == ot.ErrNone {
		return
	}
	data, err := wire.EncodeErr(code)
	if err != nil {
		return
	}
	_ = s.Send(data)
}
