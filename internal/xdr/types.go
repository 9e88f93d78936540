package xdr

// Marshaler is implemented by types that know how to lay themselves out in
// XDR field order. Structures implement it directly; discriminated unions
// use it to encode their selected arm after the discriminant.
type Marshaler interface {
	MarshalXDR(e *Encoder)
}

// Unmarshaler is the decode-side counterpart of Marshaler.
type Unmarshaler interface {
	UnmarshalXDR(d *Decoder) error
}

// Encode is a convenience wrapper that runs v.MarshalXDR against a fresh
// Encoder and returns the resulting bytes.
func Encode(v Marshaler) []byte {
	e := NewEncoder()
	v.MarshalXDR(e)
	return e.Bytes()
}

// Decode is a convenience wrapper that runs v.UnmarshalXDR against a Decoder
// over data.
func Decode(data []byte, v Unmarshaler) error {
	return v.UnmarshalXDR(NewDecoder(data))
}
