// Command otserver hosts any number of collaboratively edited documents
// over WebSocket, each reachable at /ws?doc=<id>.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreseekdev/polyphony/internal/config"
	"github.com/coreseekdev/polyphony/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("otserver: %v", err)
		}
		cfg = loaded
	}

	broker := transport.NewBroker()
	for docID, content := range cfg.Docs {
		if err := broker.Preload(docID, cfg.MaxDocSize, content); err != nil {
			log.Fatalf("otserver: preload %s: %v", docID, err)
		}
	}

	mux := http.NewServeMux()
	wsServer := transport.NewWebSocketServer(broker)
	wsServer.RegisterHandler(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("otserver: shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("otserver: shutdown error: %v", err)
		}
	}()

	log.Printf("otserver: listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("otserver: %v", err)
	}
}
