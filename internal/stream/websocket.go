package stream

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"nhooyr.io/websocket"
)

// WS adapts a WebSocket connection to Stream. Frames ride inside binary
// messages; message boundaries carry no meaning at this layer, so bytes left
// over from one message are served to later Reads.
type WS struct {
	conn      *websocket.Conn
	ctx       context.Context
	rest      []byte
	destroyed atomic.Bool
}

// NewWS wraps the given WebSocket connection.
func NewWS(ctx context.Context, conn *websocket.Conn) *WS {
	return &WS{conn: conn, ctx: ctx}
}

// Read returns the next available bytes, pulling another WebSocket message
// when the remainder of the previous one is exhausted. A normal closure is
// reported as io.EOF, matching net.Conn conventions.
func (s *WS) Read(p []byte) (int, error) {
	for len(s.rest) == 0 {
		_, data, err := s.conn.Read(s.ctx)
		if err != nil {
			var closeErr websocket.CloseError
			if errors.As(err, &closeErr) {
				return 0, io.EOF
			}
			return 0, err
		}
		s.rest = data
	}
	n := copy(p, s.rest)
	s.rest = s.rest[n:]
	return n, nil
}

// Write sends p as a single binary message.
func (s *WS) Write(p []byte) (int, error) {
	if err := s.conn.Write(s.ctx, websocket.MessageBinary, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Destroy sends a normal closure and closes the WebSocket. Idempotent.
func (s *WS) Destroy() error {
	if s.destroyed.Swap(true) {
		return nil
	}
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

// Destroyed reports whether Destroy has been called.
func (s *WS) Destroyed() bool {
	return s.destroyed.Load()
}
