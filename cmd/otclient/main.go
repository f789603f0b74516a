// Command otclient is a minimal terminal client for a collaboratively
// edited document: each line typed on stdin replaces the whole buffer,
// and the resulting document is echoed back after every remote change.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/coreseekdev/polyphony/pkg/client"
	"github.com/coreseekdev/polyphony/pkg/difftool"
	"github.com/coreseekdev/polyphony/pkg/document"
	"github.com/coreseekdev/polyphony/pkg/ot"
	"github.com/coreseekdev/polyphony/pkg/wire"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	doc := flag.String("doc", "scratch", "document id")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "doc=" + *doc}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("otclient: dial: %v", err)
	}
	defer conn.Close()

	id := uuid.New()
	clientID := binary.BigEndian.Uint32(id[:4])
	sess := client.NewSession(document.New(0), clientID, func(data []byte) error {
		return conn.WriteMessage(websocket.TextMessage, data)
	})
	sess.Event = func(evt client.EventType, op *ot.Op) {
		if evt == client.EventOpApplied {
			fmt.Printf("\r%s\n> ", sess.Doc.Text())
		}
	}

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("otclient: connection closed: %v", err)
				os.Exit(0)
			}

			// A leading '[' is the history catch-up sent right after
			// joining; everything else is a single op or error object.
			trimmed := bytesTrimLeadingSpace(data)
			if len(trimmed) > 0 && trimmed[0] == '[' {
				if err := wire.DecodeDoc(trimmed, sess.Doc.Append); err != nil {
					log.Printf("otclient: catch-up: %v", err)
				}
				fmt.Printf("\r%s\n> ", sess.Doc.Text())
				continue
			}
			if err := sess.Receive(data); err != nil {
				log.Printf("otclient: receive: %v", err)
			}
		}
	}()

	fmt.Println("type a line and press enter to replace the document; Ctrl-D to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		current := sess.Doc.Text()
		if line == current {
			continue
		}
		op := difftool.FromDiff(current, line)
		if err := sess.Apply(op); err != nil {
			log.Printf("otclient: apply: %v", err)
		}
	}
}

func bytesTrimLeadingSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r') {
		b = b[1:]
	}
	return b
}
