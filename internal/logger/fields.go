package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// These keys are shared across the RPC transport, Portmap client, and VXI-11
// session layers. Use these keys consistently across all log statements for
// log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // correlation ID for a session or broadcast round

	// ========================================================================
	// RPC / Protocol
	// ========================================================================
	KeyProgram   = "program"   // ONC RPC program number
	KeyVersion   = "version"   // ONC RPC program version
	KeyProcedure = "procedure" // procedure name or number
	KeyXID       = "xid"       // RPC transaction ID
	KeyAuth      = "auth"      // authentication flavor

	// ========================================================================
	// Transport
	// ========================================================================
	KeyNetwork    = "network"     // tcp or udp
	KeyClientIP   = "client_ip"   // remote/peer address
	KeyClientPort = "client_port" // remote/peer port
	KeyLocalAddr  = "local_addr"  // local bind address
	KeyBytesRead  = "bytes_read"
	KeyBytesSent  = "bytes_sent"

	// ========================================================================
	// VXI-11 Session
	// ========================================================================
	KeyLinkID  = "link_id"  // VXI-11 link identifier
	KeyDevice  = "device"   // device string, e.g. "inst0"
	KeyFlags   = "flags"    // device flags bitmask
	KeyReason  = "reason"   // device_read reason bitmask

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyAttempt    = "attempt"
)

// TraceID returns a slog.Attr for the session correlation ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// Program returns a slog.Attr for an ONC RPC program number.
func Program(prog uint32) slog.Attr { return slog.Any(KeyProgram, prog) }

// Version returns a slog.Attr for an ONC RPC program version.
func Version(vers uint32) slog.Attr { return slog.Any(KeyVersion, vers) }

// Procedure returns a slog.Attr for a procedure name or number.
func Procedure(name string) slog.Attr { return slog.String(KeyProcedure, name) }

// XID returns a slog.Attr for an RPC transaction ID, formatted as hex.
func XID(xid uint32) slog.Attr { return slog.String(KeyXID, fmt.Sprintf("0x%08x", xid)) }

// Auth returns a slog.Attr for the authentication flavor.
func Auth(flavor uint32) slog.Attr { return slog.Any(KeyAuth, flavor) }

// Network returns a slog.Attr for the transport kind (tcp/udp).
func Network(n string) slog.Attr { return slog.String(KeyNetwork, n) }

// ClientIP returns a slog.Attr for the remote address.
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// ClientPort returns a slog.Attr for the remote port.
func ClientPort(port int) slog.Attr { return slog.Int(KeyClientPort, port) }

// LocalAddr returns a slog.Attr for the local bind address.
func LocalAddr(addr string) slog.Attr { return slog.String(KeyLocalAddr, addr) }

// BytesRead returns a slog.Attr for bytes read off the wire.
func BytesRead(n int) slog.Attr { return slog.Int(KeyBytesRead, n) }

// BytesSent returns a slog.Attr for bytes written to the wire.
func BytesSent(n int) slog.Attr { return slog.Int(KeyBytesSent, n) }

// LinkID returns a slog.Attr for a VXI-11 link identifier.
func LinkID(id int32) slog.Attr { return slog.Any(KeyLinkID, id) }

// Device returns a slog.Attr for the VXI-11 device string.
func Device(name string) slog.Attr { return slog.String(KeyDevice, name) }

// Flags returns a slog.Attr for the device flags bitmask.
func Flags(flags int32) slog.Attr { return slog.Any(KeyFlags, flags) }

// Reason returns a slog.Attr for the device_read reason bitmask.
func Reason(reason int32) slog.Attr { return slog.Any(KeyReason, reason) }

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr { return slog.Int(KeyErrorCode, code) }

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }
