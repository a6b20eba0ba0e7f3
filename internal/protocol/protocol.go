package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// PrefixLen is the size of the length prefix carried by every frame.
	PrefixLen = 4

	// MaxPayload bounds a single frame accepted by ReadFrame. The
	// incremental decoder enforces its own configurable cap instead.
	MaxPayload uint32 = 64 * 1024 * 1024 // 64 MB
)

// ErrNotWritable is returned by Send when no writer is supplied.
var ErrNotWritable = errors.New("stream must be a writable")

// AppendFrame appends a big-endian length prefix followed by payload to dst
// and returns the extended slice.
// Wire format: [length:u32 BE][payload]
func AppendFrame(dst, payload []byte) []byte {
	var prefix [PrefixLen]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	dst = append(dst, prefix[:]...)
	return append(dst, payload...)
}

// EncodeMessage serializes msg to JSON and frames it into one contiguous
// buffer, ready for a single write.
func EncodeMessage(msg any) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	return AppendFrame(make([]byte, 0, PrefixLen+len(payload)), payload), nil
}

// Send frames msg and writes prefix plus payload to w as a single write.
func Send(w io.Writer, msg any) error {
	if w == nil {
		return ErrNotWritable
	}
	buf, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// ReadFrame reads a single frame payload from the reader, blocking until it
// is complete. Returns (nil, nil) on clean EOF at a frame boundary.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [PrefixLen]byte
	_, err := io.ReadFull(r, prefix[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading frame prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length > MaxPayload {
		return nil, fmt.Errorf("frame payload too large: %d bytes", length)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("reading frame payload: %w", err)
		}
	}
	return payload, nil
}
