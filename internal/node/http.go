package node

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"nhooyr.io/websocket"

	"github.com/framewiresh/framewire/internal/auth"
	"github.com/framewiresh/framewire/internal/metrics"
	"github.com/framewiresh/framewire/internal/stream"
)

// runHTTPServer starts an HTTP server that upgrades /ws connections to
// WebSocket ingest streams after validating the token, and exposes
// Prometheus metrics on /metrics.
func (n *Node) runHTTPServer(ctx context.Context, addr string) error {
	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if !auth.ValidateToken(n.dataDir, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		wsConn, err := websocket.Accept(w, r, nil)
		if err != nil {
			slog.Error("websocket accept error", "err", err)
			return
		}
		// Frames carry their own cap; do not let the library impose one.
		wsConn.SetReadLimit(-1)

		n.handleStream(r.Context(), stream.NewWS(r.Context(), wsConn), r.RemoteAddr)
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	slog.Info("http server listening", "addr", addr)

	// Shut down gracefully when ctx is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
