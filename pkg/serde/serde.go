// Package serde implements the wire format from spec.md 6: a u64
// little-endian length prefix followed by a CBOR-encoded payload.
// pkg/ring.Elem implements encoding.BinaryMarshaler so CBOR encodes it
// with its K-bit two's-complement packing instead of its own integer
// encoding; it has no BinaryUnmarshaler, and pkg/fxp.Elem has no binary
// marshaler of its own. The framing follows the teacher's
// pkg/protocol/handler.go round-message envelope convention.
package serde

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

const maxFrameBytes = 1 << 30

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{}.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal encodes v as CBOR.
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}

// WriteFrame writes a u64-LE length prefix followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("serde: write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("serde: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads a u64-LE length prefix and then exactly that many
// bytes, never silently truncating.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("serde: read frame header: %w", err)
	}
	n := binary.LittleEndian.Uint64(hdr[:])
	if n > maxFrameBytes {
		return nil, fmt.Errorf("serde: frame of %d bytes exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("serde: read frame payload: %w", err)
	}
	return buf, nil
}

// MarshalFrame encodes v as CBOR and wraps it in a length-prefixed frame.
func MarshalFrame(v interface{}) ([]byte, error) {
	payload, err := Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serde: marshal: %w", err)
	}
	out := make([]byte, 0, 8+len(payload))
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(len(payload)))
	out = append(out, hdr[:]...)
	out = append(out, payload...)
	return out, nil
}

// UnmarshalFrame reads one length-prefixed CBOR frame from r into v.
func UnmarshalFrame(r io.Reader, v interface{}) error {
	payload, err := ReadFrame(r)
	if err != nil {
		return err
	}
	return Unmarshal(payload, v)
}

// NewBufferedReader wraps r for frame-at-a-time reads without
// re-allocating a bufio.Reader per call.
func NewBufferedReader(r io.Reader) *bufio.Reader { return bufio.NewReader(r) }
