package client

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"nhooyr.io/websocket"

	"github.com/framewiresh/framewire/internal/decoder"
	"github.com/framewiresh/framewire/internal/protocol"
	"github.com/framewiresh/framewire/internal/stream"
)

// Target describes where to connect: a local Unix socket, a TCP address, or
// a WebSocket endpoint. Exactly one field should be set.
type Target struct {
	Socket string // Unix socket path, or a data dir containing framewire.sock
	Addr   string // TCP host:port
	URL    string // ws:// or wss:// endpoint (http/https accepted and converted)
	Token  string // ingest token for WebSocket targets
}

// Connect establishes the byte stream for the target. The caller is
// responsible for destroying it.
func (t *Target) Connect(ctx context.Context) (stream.Stream, error) {
	switch {
	case t.Socket != "":
		path := t.Socket
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			path = filepath.Join(path, "framewire.sock")
		}
		conn, err := net.Dial("unix", path)
		if err != nil {
			return nil, fmt.Errorf("connecting to local socket: %w", err)
		}
		return stream.NewConn(conn), nil

	case t.Addr != "":
		conn, err := net.Dial("tcp", t.Addr)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", t.Addr, err)
		}
		return stream.NewConn(conn), nil

	case t.URL != "":
		wsURL := normalizeWSURL(t.URL)
		if t.Token != "" {
			sep := "?"
			if strings.Contains(wsURL, "?") {
				sep = "&"
			}
			wsURL += sep + "token=" + t.Token
		}
		conn, _, err := websocket.Dial(ctx, wsURL, nil)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", t.URL, err)
		}
		// Remove the default read limit so large frames are not rejected.
		conn.SetReadLimit(-1)
		return stream.NewWS(ctx, conn), nil
	}

	return nil, fmt.Errorf("no target specified")
}

// normalizeWSURL converts http(s) schemes to ws(s) and appends the /ws path
// when the URL does not already carry it.
func normalizeWSURL(raw string) string {
	out := raw
	if strings.HasPrefix(out, "https://") {
		out = "wss://" + strings.TrimPrefix(out, "https://")
	} else if strings.HasPrefix(out, "http://") {
		out = "ws://" + strings.TrimPrefix(out, "http://")
	}
	if !strings.HasSuffix(out, "/ws") {
		out = strings.TrimSuffix(out, "/") + "/ws"
	}
	return out
}

// Send connects, frames msg onto the wire, and disconnects.
func Send(ctx context.Context, t *Target, msg any) error {
	s, err := t.Connect(ctx)
	if err != nil {
		return err
	}
	defer s.Destroy()
	return protocol.Send(s, msg)
}

// ReceiveNext connects and waits for the next valid message on the target.
func ReceiveNext(ctx context.Context, t *Target, opts decoder.ReceiveOptions) (any, error) {
	s, err := t.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Destroy()
	return decoder.Receive(ctx, s, opts)
}
