package node

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/framewiresh/framewire/internal/decoder"
	"github.com/framewiresh/framewire/internal/metrics"
	"github.com/framewiresh/framewire/internal/store"
	"github.com/framewiresh/framewire/internal/stream"
)

// handleConn wraps a raw connection in a Stream and hands it to the decoder.
func (n *Node) handleConn(ctx context.Context, conn net.Conn) {
	remote := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	n.handleStream(ctx, stream.NewConn(conn), remote)
}

// handleStream registers a persistent decoder on s and blocks until the
// stream ends. Each connection is served by exactly one call.
func (n *Node) handleStream(ctx context.Context, s stream.Stream, remote string) {
	connID := uuid.NewString()
	log := slog.With("conn", connID, "remote", remote)

	metrics.ConnOpened()
	defer metrics.ConnClosed()
	defer s.Destroy()

	reg, err := decoder.Register(s, n.opts, func(msg any, err error) {
		if err != nil {
			kind := decoder.Kind(err)
			metrics.RecordError(kind)
			log.Warn("decode error", "kind", kind, "err", err)
			return
		}
		metrics.RecordMessage()
		n.journalMessage(ctx, log, connID, msg)
	})
	if err != nil {
		log.Error("register failed", "err", err)
		return
	}

	log.Info("stream registered")
	<-reg.Done()
	log.Info("stream closed")
}

func (n *Node) journalMessage(ctx context.Context, log *slog.Logger, connID string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		// Cannot happen for values produced by json.Unmarshal.
		log.Error("re-encoding message", "err", err)
		return
	}
	log.Info("message received", "bytes", len(payload))

	if n.journal == nil {
		return
	}
	err = n.journal.Append(ctx, store.Message{
		ID:         uuid.NewString(),
		ConnID:     connID,
		ReceivedAt: time.Now().UTC(),
		Payload:    string(payload),
	})
	if err != nil {
		log.Error("journal append failed", "err", err)
	}
}
