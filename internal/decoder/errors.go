package decoder

import (
	"fmt"
	"time"

	"github.com/framewiresh/framewire/internal/schema"
)

// ArgumentError reports a malformed argument at a call site. It is returned
// synchronously, before any stream interaction.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string { return e.Reason }

// TransportError wraps an error raised by the underlying stream. It is
// forwarded to the callback verbatim, bypassing framing logic.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport error: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// OverflowError reports that buffered unparsed bytes exceeded MaxBufferSize.
type OverflowError struct {
	Limit    int // configured cap in bytes
	Buffered int // bytes held when the cap was exceeded
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("frame buffer overflow: %d bytes buffered, cap %d bytes (%d KB)",
		e.Buffered, e.Limit, e.Limit/1024)
}

// PayloadError reports a frame payload that is not valid JSON text.
// Raw preserves the payload for diagnostics.
type PayloadError struct {
	Raw string
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid message payload %q: %v", e.Raw, e.Err)
}
func (e *PayloadError) Unwrap() error { return e.Err }

// ViolationError reports a decoded message that failed the schema gate.
type ViolationError struct {
	Violation *schema.Violation
}

func (e *ViolationError) Error() string { return "schema violation: " + e.Violation.String() }

// TimeoutError reports that no complete valid message arrived in time.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no message received within %s", e.After)
}

// Kind classifies a delivery error for logs and metrics.
func Kind(err error) string {
	switch err.(type) {
	case *ArgumentError:
		return "argument"
	case *TransportError:
		return "transport"
	case *OverflowError:
		return "overflow"
	case *PayloadError:
		return "invalid_message"
	case *ViolationError:
		return "schema_violation"
	case *TimeoutError:
		return "timeout"
	default:
		return "unknown"
	}
}
