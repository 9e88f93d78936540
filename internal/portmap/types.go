// Package portmap implements a client for the portmapper (program 100000,
// version 2), used to resolve the VXI-11 Core channel's TCP port before a
// session can connect.
//
// References:
//   - RFC 1057 Section A (Port Mapper Program Protocol)
package portmap

// Program and version identify the portmapper service itself.
const (
	Program uint32 = 100000
	Version uint32 = 2
)

// Procedure numbers (RFC 1057 Section A). CALLIT (5) is intentionally
// never called by this client: it exists to forward RPC calls to other
// programs on the target host, which is not something a VXI-11 client has
// any use for, and modern portmapper implementations restrict or disable
// it anyway.
const (
	ProcNull    uint32 = 0
	ProcSet     uint32 = 1
	ProcUnset   uint32 = 2
	ProcGetport uint32 = 3
	ProcDump    uint32 = 4
)

// Transport protocol identifiers (IPPROTO values per RFC 1057).
const (
	ProtoTCP uint32 = 6
	ProtoUDP uint32 = 17
)

// Port is the well-known portmapper port.
const Port = 111
