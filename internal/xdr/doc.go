// Package xdr implements RFC 4506 External Data Representation encoding and
// decoding. It is the wire format shared by every ONC RPC program this
// module speaks to: Portmap and the three VXI-11 channels.
//
// Key characteristics of XDR:
//   - Big-endian byte order for all multi-byte integers
//   - 4-byte alignment for all data types
//   - Variable-length data is preceded by a 4-byte length
//   - Strings and opaque data are padded to 4-byte boundaries with zero bytes
//
// Decoding is strict: a non-zero padding byte, a declared length that runs
// past the remaining buffer, or an undeclared enum value are all reported as
// MalformedXdr rather than silently accepted.
//
// This package has no dependency on any particular RPC program; Portmap and
// VXI-11 each build their own typed structures on top of the primitives here.
package xdr
