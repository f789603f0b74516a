// Package transport hosts multiple documents behind network connections:
// a Broker owns one server.Session per document, and a connection's
// incoming bytes are routed to the right session by document ID.
package transport

import (
	"errors"
	"sync"

	"github.com/coreseekdev/polyphony/pkg/document"
	"github.com/coreseekdev/polyphony/pkg/ot"
	"github.com/coreseekdev/polyphony/pkg/server"
	"github.com/coreseekdev/polyphony/pkg/wire"
)

// ErrUnknownDoc is returned when a connection references a document the
// broker has not been told to open.
var ErrUnknownDoc = errors.New("transport: unknown document")

// Conn is anything a Broker can address a message to: a single network
// connection, a test double, or an in-process client.
type Conn interface {
	// ID uniquely identifies this connection within its document.
	ID() string
	// Send delivers an already wire-encoded message to this connection.
	// Broker never calls Send while holding its own lock.
	Send(data []byte) error
}

// docRoom is one document's server session plus the connections currently
// subscribed to its broadcasts.
type docRoom struct {
	mu      sync.Mutex
	recvMu  sync.Mutex
	session *server.Session
	conns   map[string]Conn
}

// Broker multiplexes any number of documents and any number of connections
// per document over a single process. It is the piece SPEC_FULL.md calls
// the embedder's responsibility for serializing "all entries into the
// server document, one op at a time": each docRoom hands its session's
// Send callback a broadcast that fans out to every subscribed connection.
type Broker struct {
	mu    sync.RWMutex
	rooms map[string]*docRoom
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{rooms: make(map[string]*docRoom)}
}

// OpenDoc creates a document room with the given maximum size (0 means
// unbounded), or returns the existing room if docID is already open.
func (b *Broker) OpenDoc(docID string, maxSize int) *docRoom {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room, ok := b.rooms[docID]; ok {
		return room
	}

	room := &docRoom{conns: make(map[string]Conn)}
	room.session = server.NewSession(document.New(maxSize), room.broadcast)
	b.rooms[docID] = room
	return room
}

// Join subscribes conn to docID's broadcasts, opening the document with an
// unbounded size if it does not exist yet, and catches conn up with the
// document's full history so far as a wire-encoded op array.
func (b *Broker) Join(docID string, conn Conn) *docRoom {
	room := b.OpenDoc(docID, 0)
	room.mu.Lock()
	room.conns[conn.ID()] = conn
	room.mu.Unlock()

	if history := room.session.Doc.History(); len(history) > 0 {
		if data, err := wire.EncodeDoc(history); err == nil {
			_ = conn.Send(data)
		}
	}
	return room
}

// Leave unsubscribes conn from docID. It is a no-op if docID or conn are
// not currently registered.
func (b *Broker) Leave(docID string, connID string) {
	b.mu.RLock()
	room, ok := b.rooms[docID]
	b.mu.RUnlock()
	if !ok {
		return
	}
	room.mu.Lock()
	delete(room.conns, connID)
	room.mu.Unlock()
}

// Receive routes an incoming wire message for docID into that document's
// server session. Calls for the same document run one at a time, the
// session's broadcast included, so every connection sees the same order.
func (b *Broker) Receive(docID string, data []byte) error {
	b.mu.RLock()
	room, ok := b.rooms[docID]
	b.mu.RUnlock()
	if !ok {
		return ErrUnknownDoc
	}
	room.recvMu.Lock()
	defer room.recvMu.Unlock()
	return room.session.Receive(data)
}

// Preload seeds a freshly opened document with initial text. It must be
// called before any connection joins, since it appends directly to the
// document history rather than going through a client session.
func (b *Broker) Preload(docID string, maxSize int, text string) error {
	room := b.OpenDoc(docID, maxSize)
	if text == "" {
		return nil
	}
	op := ot.NewOp()
	op.Insert(text)
	return room.session.Doc.Append(op)
}

// Snapshot returns the current text of docID, or "" if it does not exist.
func (b *Broker) Snapshot(docID string) string {
	b.mu.RLock()
	room, ok := b.rooms[docID]
	b.mu.RUnlock()
	if !ok {
		return ""
	}
	return room.session.Doc.Text()
}

// broadcast is the server.SendFunc wired to this room's session: it fans
// the encoded message out to every subscribed connection, dropping the
// room's own lock first since Conn.Send may re-enter the broker.
func (r *docRoom) broadcast(data []byte) error {
	r.mu.Lock()
	conns := make([]Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.Send(data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
