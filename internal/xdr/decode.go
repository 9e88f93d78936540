package xdr

import (
	"bytes"
	"encoding/binary"
)

// maxOpaqueLength bounds any single opaque/string field decoded off the
// wire, guarding against a malicious or corrupt length prefix driving an
// oversized allocation. VXI-11 payloads are bounded by maxRecvSize (commonly
// a few hundred KB); Portmap payloads are a few bytes.
const maxOpaqueLength = 16 * 1024 * 1024

// Decoder consumes XDR-encoded values from a fixed buffer in declaration
// order. All methods report MalformedXdrError on a short buffer, a bad
// length prefix, non-zero padding bytes, or (ReadEnum) an undeclared tag.
type Decoder struct {
	r *bytes.Reader
}

// NewDecoder returns a Decoder reading from data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(data)}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return d.r.Len()
}

func (d *Decoder) readFull(n int) ([]byte, error) {
	if d.r.Len() < n {
		return nil, newMalformed("need %d bytes, have %d", n, d.r.Len())
	}
	buf := make([]byte, n)
	if _, err := d.r.Read(buf); err != nil {
		return nil, newMalformed("read %d bytes: %v", n, err)
	}
	return buf, nil
}

// ReadUint32 decodes an unsigned 32-bit integer (RFC 4506 §4.1).
func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadInt32 decodes a signed 32-bit integer (RFC 4506 §4.1).
func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUint32()
	return int32(v), err
}

// ReadUint64 decodes an unsigned 64-bit hyper integer (RFC 4506 §4.5).
func (d *Decoder) ReadUint64() (uint64, error) {
	b, err := d.readFull(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadInt64 decodes a signed 64-bit hyper integer (RFC 4506 §4.5).
func (d *Decoder) ReadInt64() (int64, error) {
	v, err := d.ReadUint64()
	return int64(v), err
}

// ReadBool decodes a boolean (RFC 4506 §4.4): any non-zero value is true.
func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadUint32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadEnum decodes an enumeration tag and checks it against the declared
// value set (RFC 4506 §4.3). An empty allowed set skips the membership
// check, for unions whose discriminant space is open-ended.
func (d *Decoder) ReadEnum(allowed ...int32) (int32, error) {
	v, err := d.ReadInt32()
	if err != nil {
		return 0, err
	}
	if len(allowed) == 0 {
		return v, nil
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return 0, newMalformed("enum value %d not in declared set %v", v, allowed)
}

func (d *Decoder) skipPadding(n int) error {
	pad := (4 - (n % 4)) % 4
	if pad == 0 {
		return nil
	}
	b, err := d.readFull(pad)
	if err != nil {
		return newMalformed("short padding: %v", err)
	}
	for _, c := range b {
		if c != 0 {
			return newMalformed("non-zero padding byte 0x%02x", c)
		}
	}
	return nil
}

// ReadFixedOpaque decodes n bytes of fixed-length opaque data, consuming the
// trailing zero padding to the next 4-byte boundary (RFC 4506 §4.9).
func (d *Decoder) ReadFixedOpaque(n int) ([]byte, error) {
	data, err := d.readFull(n)
	if err != nil {
		return nil, err
	}
	if err := d.skipPadding(n); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadOpaque decodes variable-length opaque data: a 4-byte length prefix,
// the bytes, then zero padding (RFC 4506 §4.10).
func (d *Decoder) ReadOpaque() ([]byte, error) {
	length, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length > maxOpaqueLength {
		return nil, newMalformed("opaque length %d exceeds maximum %d", length, maxOpaqueLength)
	}
	return d.ReadFixedOpaque(int(length))
}

// ReadString decodes a string using the same representation as variable
// opaque data (RFC 4506 §4.11).
func (d *Decoder) ReadString() (string, error) {
	data, err := d.ReadOpaque()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
