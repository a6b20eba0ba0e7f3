package protocol

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Wire format
// ---------------------------------------------------------------------------

func TestWireFormat(t *testing.T) {
	buf, err := EncodeMessage(map[string]any{"type": "ping"})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}

	// Prefix: 4-byte big-endian length, then exactly that many payload bytes.
	if len(buf) < PrefixLen {
		t.Fatalf("frame length = %d, want >= %d", len(buf), PrefixLen)
	}
	length := binary.BigEndian.Uint32(buf[:PrefixLen])
	if int(length) != len(buf)-PrefixLen {
		t.Errorf("length field = %d, want %d", length, len(buf)-PrefixLen)
	}
	if want := `{"type":"ping"}`; string(buf[PrefixLen:]) != want {
		t.Errorf("payload = %q, want %q", buf[PrefixLen:], want)
	}
}

func TestAppendFrameRaw(t *testing.T) {
	payload := []byte("test")
	wire := AppendFrame(nil, payload)

	if len(wire) != PrefixLen+len(payload) {
		t.Fatalf("wire length = %d, want %d", len(wire), PrefixLen+len(payload))
	}
	if got := binary.BigEndian.Uint32(wire[:PrefixLen]); got != uint32(len(payload)) {
		t.Errorf("wire length field = %d, want %d", got, len(payload))
	}
	if !bytes.Equal(wire[PrefixLen:], payload) {
		t.Errorf("wire payload = %q, want %q", wire[PrefixLen:], payload)
	}
}

func TestAppendFrameEmptyPayload(t *testing.T) {
	wire := AppendFrame(nil, nil)
	if len(wire) != PrefixLen {
		t.Fatalf("wire length = %d, want %d", len(wire), PrefixLen)
	}
	if got := binary.BigEndian.Uint32(wire); got != 0 {
		t.Errorf("length field = %d, want 0", got)
	}
}

// ---------------------------------------------------------------------------
// Send / ReadFrame round trip
// ---------------------------------------------------------------------------

func TestSendReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Send(&buf, map[string]any{"n": 42}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	payload, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if want := `{"n":42}`; string(payload) != want {
		t.Errorf("payload = %q, want %q", payload, want)
	}
}

func TestSendMultipleFramesBackToBack(t *testing.T) {
	var buf bytes.Buffer
	for _, msg := range []any{1, "two", []any{3.0}} {
		if err := Send(&buf, msg); err != nil {
			t.Fatalf("Send(%v): %v", msg, err)
		}
	}

	want := []string{`1`, `"two"`, `[3]`}
	for i, w := range want {
		payload, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame #%d: %v", i, err)
		}
		if string(payload) != w {
			t.Errorf("frame #%d payload = %q, want %q", i, payload, w)
		}
	}
}

func TestSendNilWriter(t *testing.T) {
	err := Send(nil, "x")
	if err != ErrNotWritable {
		t.Fatalf("err = %v, want ErrNotWritable", err)
	}
}

func TestSendUnserializableMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := Send(&buf, func() {}); err == nil {
		t.Fatal("expected error for unserializable message, got nil")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes despite encode failure", buf.Len())
	}
}

// ---------------------------------------------------------------------------
// ReadFrame edge cases
// ---------------------------------------------------------------------------

func TestReadFrameEOFReturnsNilNil(t *testing.T) {
	payload, err := ReadFrame(bytes.NewReader(nil))
	if payload != nil {
		t.Errorf("payload = %v, want nil", payload)
	}
	if err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestReadFramePartialPrefixEOFReturnsNilNil(t *testing.T) {
	// Only 3 of the 4 prefix bytes arrive before EOF.
	payload, err := ReadFrame(bytes.NewReader([]byte{0x00, 0x00, 0x00}))
	if payload != nil {
		t.Errorf("payload = %v, want nil", payload)
	}
	if err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	wire := AppendFrame(nil, []byte("hello"))
	_, err := ReadFrame(bytes.NewReader(wire[:len(wire)-2]))
	if err == nil {
		t.Fatal("expected error for truncated payload, got nil")
	}
}

func TestReadFrameMaxPayloadReject(t *testing.T) {
	var prefix [PrefixLen]byte
	binary.BigEndian.PutUint32(prefix[:], MaxPayload+1)

	_, err := ReadFrame(bytes.NewReader(prefix[:]))
	if err == nil {
		t.Fatal("expected error for oversized payload, got nil")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("error = %q, want it to contain 'too large'", err.Error())
	}
}
