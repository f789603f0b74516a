package transport

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketServer accepts connections at /ws?doc=<id> and wires each one
// into a Broker room for that document. One server handles any number of
// concurrently open documents.
type WebSocketServer struct {
	Broker *Broker
}

// NewWebSocketServer returns a server backed by broker.
func NewWebSocketServer(broker *Broker) *WebSocketServer {
	return &WebSocketServer{Broker: broker}
}

// RegisterHandler mounts the websocket endpoint on mux.
func (s *WebSocketServer) RegisterHandler(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handle)
}

func (s *WebSocketServer) handle(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("doc")
	if docID == "" {
		http.Error(w, "missing doc query parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[transport] upgrade failed: %v", err)
		return
	}

	wc := &wsConn{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.Broker.Join(docID, wc)
	log.Printf("[transport] %s joined %s", wc.id, docID)

	go wc.writePump()
	wc.readPump(s.Broker, docID)
}

// wsConn adapts a single gorilla/websocket connection to the Broker's Conn
// interface, decoupling writes (which happen from the broker's broadcast
// goroutine) from reads (which happen on this connection's own goroutine)
// via a buffered channel, the same split the teacher's transport used.
type wsConn struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.send <- data:
		return nil
	default:
		return nil
	}
}

func (c *wsConn) readPump(broker *Broker, docID string) {
	defer func() {
		broker.Leave(docID, c.id)
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.send)
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := broker.Receive(docID, data); err != nil {
			log.Printf("[transport] %s: receive error: %v", c.id, err)
		}
	}
}

func (c *wsConn) writePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
