package decoder

import (
	"context"
	"time"

	"github.com/framewiresh/framewire/internal/stream"
)

// ReceiveOptions configures Receive. The embedded Options apply as given,
// except Mode, which is always forced to OneShot.
type ReceiveOptions struct {
	Options
	// Timeout bounds the wait for the next valid message. 0 means no limit.
	Timeout time.Duration
}

type outcome struct {
	msg any
	err error
}

// Receive waits for the next valid message on s. It settles exactly once:
// with the decoded message, with the frame-level error that preempted it,
// with a TimeoutError once Timeout elapses, or with ctx's error. The timeout
// timer is stopped on every settlement path, so no stale timer outlives the
// call. Receive never destroys s: after a timeout or ctx settlement the
// reading goroutine stays blocked on the silent stream until the caller
// destroys it.
func Receive(ctx context.Context, s stream.Stream, opts ReceiveOptions) (any, error) {
	if s == nil {
		return nil, &ArgumentError{Reason: "stream must be a readable"}
	}
	if opts.Timeout < 0 {
		return nil, &ArgumentError{Reason: "timeout must be a non-negative duration"}
	}
	opts.Mode = OneShot

	// Buffered so the one-shot pump never blocks on a settled call.
	ch := make(chan outcome, 1)
	reg, err := Register(s, opts.Options, func(msg any, err error) {
		ch <- outcome{msg: msg, err: err}
	})
	if err != nil {
		return nil, err
	}
	defer reg.Close()

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case out := <-ch:
		return out.msg, out.err
	case <-timeout:
		return nil, &TimeoutError{After: opts.Timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
