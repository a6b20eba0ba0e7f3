// Package stream abstracts the duplex byte channels that frames travel
// over: TCP, Unix sockets, WebSockets, or in-memory pipes. A Stream carries
// no message boundaries of its own; framing is layered on top.
package stream

import "io"

// Stream is a duplex byte channel. Destroy tears the channel down and
// Destroyed reports whether that has happened. Reading, writing, and
// destroying are the only operations the framing layer performs on it.
type Stream interface {
	io.Reader
	io.Writer
	Destroy() error
	Destroyed() bool
}
