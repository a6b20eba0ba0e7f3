package decoder

import (
	"errors"
	"io"
	"sync"

	"github.com/framewiresh/framewire/internal/stream"
)

const readChunkSize = 32 * 1024

// Registration binds a stream to a running decoder. One goroutine pumps the
// stream and owns the accumulation buffer, so outcomes for a stream fire in
// order and never concurrently with each other.
type Registration struct {
	stream stream.Stream
	dec    *Decoder

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Register subscribes fn to decoded messages on s. Argument problems are
// reported synchronously, before any read is issued. The registration ends
// on its own when the stream ends, fails, or (in one-shot mode) after the
// first delivery.
func Register(s stream.Stream, opts Options, fn Callback) (*Registration, error) {
	if s == nil {
		return nil, &ArgumentError{Reason: "stream must be a readable"}
	}
	dec, err := NewDecoder(opts, fn)
	if err != nil {
		return nil, err
	}
	dec.destroy = func() { _ = s.Destroy() }

	r := &Registration{
		stream: s,
		dec:    dec,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.pump()
	return r, nil
}

// Close stops delivery. The pump exits at the next read event; it does not
// destroy the stream.
func (r *Registration) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Done is closed when the pump goroutine has exited.
func (r *Registration) Done() <-chan struct{} { return r.done }

// pump is the registration's single logical thread of execution: it feeds
// every received chunk to the decoder and forwards stream errors verbatim.
func (r *Registration) pump() {
	defer close(r.done)
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.stream.Read(chunk)
		select {
		case <-r.stop:
			return
		default:
		}
		if n > 0 {
			r.dec.Feed(chunk[:n])
			// Stop after a one-shot delivery or a destroy-on-error
			// outcome; reading a stream we just destroyed would
			// manufacture a second, self-inflicted transport error.
			if r.dec.done || r.dec.killed {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) { // clean end of stream carries no outcome
				r.dec.fail(err)
			}
			return
		}
	}
}
