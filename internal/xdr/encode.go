package xdr

import (
	"bytes"
	"encoding/binary"
)

// Encoder accumulates XDR-encoded values into a byte buffer in declaration
// order. It never fails: every primitive it writes has a fixed or
// length-prefixed representation, so there is nothing for a write to reject.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the accumulated, encoded record.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// WriteUint32 encodes an unsigned 32-bit integer (RFC 4506 §4.1).
func (e *Encoder) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// WriteInt32 encodes a signed 32-bit integer (RFC 4506 §4.1).
func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

// WriteUint64 encodes an unsigned 64-bit hyper integer (RFC 4506 §4.5).
func (e *Encoder) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// WriteInt64 encodes a signed 64-bit hyper integer (RFC 4506 §4.5).
func (e *Encoder) WriteInt64(v int64) {
	e.WriteUint64(uint64(v))
}

// WriteBool encodes a boolean as a 0/1 uint32 (RFC 4506 §4.4).
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.WriteUint32(1)
	} else {
		e.WriteUint32(0)
	}
}

// WriteEnum encodes an enumeration tag as an int32 (RFC 4506 §4.3). Callers
// are responsible for only passing values in the declared set; decoding is
// where membership is actually enforced.
func (e *Encoder) WriteEnum(v int32) {
	e.WriteInt32(v)
}

// writePadding pads n bytes of content out to the next 4-byte boundary.
func (e *Encoder) writePadding(n int) {
	pad := (4 - (n % 4)) % 4
	if pad == 0 {
		return
	}
	var zero [4]byte
	e.buf.Write(zero[:pad])
}

// WriteFixedOpaque encodes fixed-length opaque data: raw bytes padded to a
// 4-byte boundary, with no length prefix (RFC 4506 §4.9).
func (e *Encoder) WriteFixedOpaque(data []byte) {
	e.buf.Write(data)
	e.writePadding(len(data))
}

// WriteOpaque encodes variable-length opaque data: a 4-byte length prefix,
// the bytes, then zero padding to a 4-byte boundary (RFC 4506 §4.10).
func (e *Encoder) WriteOpaque(data []byte) {
	e.WriteUint32(uint32(len(data)))
	e.WriteFixedOpaque(data)
}

// WriteString encodes a string using the same representation as variable
// opaque data (RFC 4506 §4.11).
func (e *Encoder) WriteString(s string) {
	e.WriteOpaque([]byte(s))
}

// WriteRaw appends already-encoded bytes verbatim. Used when a union arm or
// nested structure has been encoded by its own Encoder.
func (e *Encoder) WriteRaw(b []byte) {
	e.buf.Write(b)
}
