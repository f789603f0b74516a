// Package e2e wires a server session and several client sessions together
// in-process, without a real transport, so the full client/server protocol
// can be exercised deterministically in tests.
package e2e

import (
	"github.com/coreseekdev/polyphony/pkg/client"
	"github.com/coreseekdev/polyphony/pkg/document"
	"github.com/coreseekdev/polyphony/pkg/server"
)

// Harness is a server and a fixed set of clients, connected by direct
// function calls instead of sockets: a client's Send hands the message
// straight to the server's Receive, and the server's broadcast hands it
// straight to every client's Receive.
type Harness struct {
	Server  *server.Session
	Clients []*client.Session
}

// New builds a harness with n clients, IDs 1..n, all starting from an
// empty document.
func New(n int) *Harness {
	return NewWithMaxSize(n, 0)
}

// NewWithMaxSize builds a harness whose server document enforces maxSize
// (0 means unbounded).
func NewWithMaxSize(n, maxSize int) *Harness {
	h := &Harness{}
	srvDoc := document.New(maxSize)
	h.Server = server.NewSession(srvDoc, func(data []byte) error {
		for _, c := range h.Clients {
			// A client never needs to rebase a message that only echoes
			// its own already-applied edit back at it through Receive; it
			// still must, to clear ackRequired and flush the buffer, so
			// every client is delivered every broadcast.
			if err := c.Receive(data); err != nil {
				return err
			}
		}
		return nil
	})

	for i := 1; i <= n; i++ {
		id := uint32(i)
		clientDoc := document.New(0)
		h.Clients = append(h.Clients, client.NewSession(clientDoc, id, h.Server.Receive))
	}
	return h
}
