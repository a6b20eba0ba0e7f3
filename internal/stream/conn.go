package stream

import (
	"net"
	"sync/atomic"
)

// Conn adapts a net.Conn (TCP, Unix socket, net.Pipe) to Stream.
type Conn struct {
	conn      net.Conn
	destroyed atomic.Bool
}

// NewConn wraps the given connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{conn: c}
}

func (c *Conn) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

func (c *Conn) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

// Destroy closes the underlying connection. Idempotent.
func (c *Conn) Destroy() error {
	if c.destroyed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// Destroyed reports whether Destroy has been called.
func (c *Conn) Destroyed() bool {
	return c.destroyed.Load()
}
