// Package rpc implements the ONC RPC (RFC 5531) call/reply message layer
// that both Portmap and VXI-11 are built on. It knows nothing about either
// protocol's procedures; it only knows how to build a CALL message and parse
// the REPLY that comes back.
package rpc

import (
	"github.com/marmos91/vxi11/internal/xdr"
)

// Message type discriminant (RFC 5531 §9, msg_type).
const (
	Call  uint32 = 0
	Reply uint32 = 1
)

// Reply discriminant (RFC 5531 §9, reply_stat).
const (
	MsgAccepted uint32 = 0
	MsgDenied   uint32 = 1
)

// Accept status (RFC 5531 §9, accept_stat). Returned only when
// ReplyState == MsgAccepted.
const (
	Success      uint32 = 0
	ProgUnavail  uint32 = 1
	ProgMismatch uint32 = 2
	ProcUnavail  uint32 = 3
	GarbageArgs  uint32 = 4
	SystemErr    uint32 = 5
)

// Reject status (RFC 5531 §9, reject_stat). Returned only when
// ReplyState == MsgDenied.
const (
	RPCMismatch uint32 = 0
	AuthError   uint32 = 1
)

// Auth status (RFC 5531 §9, auth_stat). Only meaningful when RejectState ==
// AuthError.
const (
	AuthOK           uint32 = 0
	AuthBadCred      uint32 = 1
	AuthRejectedCred uint32 = 2
	AuthBadVerf      uint32 = 3
	AuthRejectedVerf uint32 = 4
	AuthTooWeak      uint32 = 5
)

// RPCVersion is the only ONC RPC protocol version, fixed since RFC 1057.
const RPCVersion uint32 = 2

// CallMsg is an outbound RPC call. Procedure argument bytes are supplied
// pre-encoded by the caller (Portmap and VXI-11 each XDR-encode their own
// argument structs) so this package stays ignorant of any specific program.
type CallMsg struct {
	XID       uint32
	Program   uint32
	Version   uint32
	Procedure uint32
	Cred      Auth
	Verf      Auth
	Args      []byte
}

// Encode lays out the call per RFC 5531 §9's call_body, with the RPC
// message header (xid, msg_type) prepended.
func (c *CallMsg) Encode() []byte {
	e := xdr.NewEncoder()
	e.WriteUint32(c.XID)
	e.WriteUint32(Call)
	e.WriteUint32(RPCVersion)
	e.WriteUint32(c.Program)
	e.WriteUint32(c.Version)
	e.WriteUint32(c.Procedure)
	c.Cred.encode(e)
	c.Verf.encode(e)
	e.WriteRaw(c.Args)
	return e.Bytes()
}

// CallHeader is a parsed inbound RPC call, used by the interrupt channel's
// client-as-server role: the VXI-11 client never serves any other
// procedure, so this is a minimal single-procedure call reader rather than
// a general dispatch layer.
type CallHeader struct {
	XID       uint32
	Program   uint32
	Version   uint32
	Procedure uint32
	Cred      Auth
	Verf      Auth
	Args      []byte
}

// DecodeCall parses a full RPC call message (header plus body) out of a
// single, already-defragmented buffer.
func DecodeCall(data []byte) (*CallHeader, error) {
	d := xdr.NewDecoder(data)

	xid, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	msgType, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if msgType != Call {
		return nil, newProtocolError("expected msg_type CALL, got %d", msgType)
	}
	rpcVersion, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if rpcVersion != RPCVersion {
		return nil, newRPCMismatchError(RPCVersion, RPCVersion)
	}
	program, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	version, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	procedure, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	cred, err := decodeAuth(d)
	if err != nil {
		return nil, err
	}
	verf, err := decodeAuth(d)
	if err != nil {
		return nil, err
	}

	return &CallHeader{
		XID:       xid,
		Program:   program,
		Version:   version,
		Procedure: procedure,
		Cred:      cred,
		Verf:      verf,
		Args:      data[len(data)-d.Remaining():],
	}, nil
}

// EncodeAcceptedReply lays out a MSG_ACCEPTED / SUCCESS reply carrying
// results as the already-XDR-encoded procedure result.
func EncodeAcceptedReply(xid uint32, results []byte) []byte {
	e := xdr.NewEncoder()
	e.WriteUint32(xid)
	e.WriteUint32(Reply)
	e.WriteUint32(MsgAccepted)
	NoAuth().encode(e)
	e.WriteUint32(Success)
	e.WriteRaw(results)
	return e.Bytes()
}

// MismatchInfo carries the [low, high] supported-version range that
// accompanies an RPC_MISMATCH rejection or a PROG_MISMATCH acceptance.
type MismatchInfo struct {
	Low  uint32
	High uint32
}

// ReplyMsg is a parsed inbound RPC reply. Exactly one of the Accept* /
// Reject* field groups is meaningful, selected by ReplyState and, within a
// denial, by RejectState.
type ReplyMsg struct {
	XID uint32

	ReplyState uint32 // MsgAccepted or MsgDenied

	// Populated when ReplyState == MsgAccepted.
	Verf       Auth
	AcceptStat uint32
	Mismatch   MismatchInfo // valid when AcceptStat == ProgMismatch

	// Populated when ReplyState == MsgDenied.
	RejectState uint32
	RPCMismatch MismatchInfo // valid when RejectState == RPCMismatch
	AuthStat    uint32       // valid when RejectState == AuthError

	// Results holds whatever bytes followed accept_stat == SUCCESS; the
	// caller decodes it against the procedure-specific result type.
	Results []byte
}

// DecodeReply parses a full RPC reply message (the message header plus
// body) out of a single, already-defragmented buffer.
func DecodeReply(data []byte) (*ReplyMsg, error) {
	d := xdr.NewDecoder(data)

	xid, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	msgType, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if msgType != Reply {
		return nil, newProtocolError("expected msg_type REPLY, got %d", msgType)
	}

	reply := &ReplyMsg{XID: xid}

	replyState, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	reply.ReplyState = replyState

	switch replyState {
	case MsgAccepted:
		verf, err := decodeAuth(d)
		if err != nil {
			return nil, err
		}
		reply.Verf = verf

		acceptStat, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		reply.AcceptStat = acceptStat

		switch acceptStat {
		case Success:
			reply.Results = data[len(data)-d.Remaining():]
		case ProgMismatch:
			low, err := d.ReadUint32()
			if err != nil {
				return nil, err
			}
			high, err := d.ReadUint32()
			if err != nil {
				return nil, err
			}
			reply.Mismatch = MismatchInfo{Low: low, High: high}
		case ProgUnavail, ProcUnavail, GarbageArgs, SystemErr:
			// No further body.
		default:
			return nil, newProtocolError("unrecognized accept_stat %d", acceptStat)
		}

	case MsgDenied:
		rejectState, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		reply.RejectState = rejectState

		switch rejectState {
		case RPCMismatch:
			low, err := d.ReadUint32()
			if err != nil {
				return nil, err
			}
			high, err := d.ReadUint32()
			if err != nil {
				return nil, err
			}
			reply.RPCMismatch = MismatchInfo{Low: low, High: high}
		case AuthError:
			stat, err := d.ReadUint32()
			if err != nil {
				return nil, err
			}
			reply.AuthStat = stat
		default:
			return nil, newProtocolError("unrecognized reject_stat %d", rejectState)
		}

	default:
		return nil, newProtocolError("unrecognized reply_stat %d", replyState)
	}

	return reply, nil
}

// AsError converts a non-success reply into a Go error, or returns nil for
// a successful accepted reply.
func (r *ReplyMsg) AsError() error {
	switch r.ReplyState {
	case MsgAccepted:
		switch r.AcceptStat {
		case Success:
			return nil
		case ProgMismatch:
			return newProgMismatchError(r.Mismatch.Low, r.Mismatch.High)
		case ProgUnavail:
			return newProgUnavailError()
		case ProcUnavail:
			return newProcUnavailError()
		case GarbageArgs:
			return newGarbageArgsError()
		default:
			return newSystemError()
		}
	case MsgDenied:
		if r.RejectState == RPCMismatch {
			return newRPCMismatchError(r.RPCMismatch.Low, r.RPCMismatch.High)
		}
		return newAuthError(r.AuthStat)
	default:
		return newSystemError()
	}
}
