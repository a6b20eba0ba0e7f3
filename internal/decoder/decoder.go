// Package decoder implements the incremental frame decoder: a state machine
// that reassembles arbitrarily chunked bytes into length-prefixed frames,
// decodes each payload as JSON, optionally applies a schema gate, and hands
// every outcome to a callback, exactly one outcome per complete frame.
package decoder

import (
	"encoding/binary"
	"encoding/json"

	"github.com/framewiresh/framewire/internal/protocol"
	"github.com/framewiresh/framewire/internal/schema"
)

// Mode selects whether a registration survives its first delivery.
type Mode int

const (
	// Persistent keeps delivering until the stream ends or is destroyed.
	Persistent Mode = iota
	// OneShot delivers at most one outcome, then ignores further input.
	OneShot
)

// Callback receives one delivery outcome: a decoded message or a typed
// error, never both. It runs inline on the goroutine feeding the decoder,
// so it must not block indefinitely.
type Callback func(msg any, err error)

// Options configures a decoder.
type Options struct {
	// MaxBufferSize caps buffered unparsed bytes. 0 means unbounded.
	MaxBufferSize int
	// Mode selects persistent or one-shot delivery.
	Mode Mode
	// DestroyOnError destroys the bound stream after any error outcome.
	DestroyOnError bool
	// Schema, when set, gates every decoded message.
	Schema schema.Validator
}

func (o Options) validate() error {
	if o.MaxBufferSize < 0 {
		return &ArgumentError{Reason: "maxBufferSize must be a non-negative whole number"}
	}
	if o.Mode != Persistent && o.Mode != OneShot {
		return &ArgumentError{Reason: "mode must be Persistent or OneShot"}
	}
	return nil
}

// Decoder accumulates raw bytes and parses them into discrete frames. It is
// not safe for concurrent use: exactly one goroutine may feed it. The
// accumulation buffer is owned exclusively by the decoder and consumed in
// complete prefix+payload units, in arrival order.
type Decoder struct {
	opts Options
	fn   Callback

	buf     []byte
	pending uint32 // payload length of the frame being assembled
	known   bool   // pending holds a real prefix
	done    bool   // one-shot delivery already happened
	killed  bool   // DestroyOnError fired; the error was terminal

	destroy func() // tears down the bound stream; set by Register
}

// NewDecoder returns a decoder delivering outcomes to fn.
func NewDecoder(opts Options, fn Callback) (*Decoder, error) {
	if fn == nil {
		return nil, &ArgumentError{Reason: "callback must be non-nil"}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Decoder{opts: opts, fn: fn}, nil
}

// Feed appends one chunk of received bytes and drains every complete frame
// already buffered, dispatching outcomes in arrival order. Chunk boundaries
// carry no meaning: a frame may span many chunks and one chunk may complete
// many frames.
func (d *Decoder) Feed(p []byte) {
	if d.done || d.killed {
		return
	}
	d.buf = append(d.buf, p...)

	// The cap is checked before any parse attempt so a flood of garbage
	// cannot be consumed piecemeal.
	if d.opts.MaxBufferSize > 0 && len(d.buf) > d.opts.MaxBufferSize {
		d.deliver(nil, &OverflowError{Limit: d.opts.MaxBufferSize, Buffered: len(d.buf)})
		return
	}

	for !d.done && !d.killed {
		if !d.known {
			if len(d.buf) < protocol.PrefixLen {
				return
			}
			d.pending = binary.BigEndian.Uint32(d.buf[:protocol.PrefixLen])
			d.known = true
		}

		total := uint64(protocol.PrefixLen) + uint64(d.pending)
		if uint64(len(d.buf)) < total {
			return
		}

		payload := make([]byte, d.pending)
		copy(payload, d.buf[protocol.PrefixLen:total])
		// Remaining bytes slide forward, preserving arrival order.
		d.buf = append(d.buf[:0], d.buf[total:]...)
		d.known = false

		d.dispatch(payload)
	}
}

// Buffered reports how many unparsed bytes the decoder is holding.
func (d *Decoder) Buffered() int { return len(d.buf) }

func (d *Decoder) dispatch(payload []byte) {
	var msg any
	if err := json.Unmarshal(payload, &msg); err != nil {
		d.deliver(nil, &PayloadError{Raw: string(payload), Err: err})
		return
	}
	if d.opts.Schema != nil {
		if violation := d.opts.Schema.Validate(msg); violation != nil {
			d.deliver(nil, &ViolationError{Violation: violation})
			return
		}
	}
	d.deliver(msg, nil)
}

// fail forwards a stream-level error as the outcome, bypassing framing.
func (d *Decoder) fail(err error) {
	if d.done || d.killed {
		return
	}
	d.deliver(nil, &TransportError{Err: err})
}

func (d *Decoder) deliver(msg any, err error) {
	if d.opts.Mode == OneShot {
		d.done = true
	}
	// A destroy-on-error outcome is terminal: the stream is torn down
	// before the callback runs and nothing further is delivered, not even
	// frames already buffered.
	if err != nil && d.opts.DestroyOnError {
		d.killed = true
		if d.destroy != nil {
			d.destroy()
		}
	}
	d.fn(msg, err)
}
