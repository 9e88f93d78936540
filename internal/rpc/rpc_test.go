package rpc

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/vxi11/internal/xdr"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

func validAuthUnixCredentials() *UnixAuth {
	return &UnixAuth{
		Stamp:       uint32(time.Now().Unix()),
		MachineName: "testhost",
		UID:         1000,
		GID:         1000,
		GIDs:        []uint32{4, 24, 27, 30},
	}
}

func encodeAuthUnix(auth *UnixAuth) []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.BigEndian, auth.Stamp)

	nameLen := uint32(len(auth.MachineName))
	_ = binary.Write(buf, binary.BigEndian, nameLen)
	buf.WriteString(auth.MachineName)
	padding := (4 - (nameLen % 4)) % 4
	for i := uint32(0); i < padding; i++ {
		buf.WriteByte(0)
	}

	_ = binary.Write(buf, binary.BigEndian, auth.UID)
	_ = binary.Write(buf, binary.BigEndian, auth.GID)

	_ = binary.Write(buf, binary.BigEndian, uint32(len(auth.GIDs)))
	for _, gid := range auth.GIDs {
		_ = binary.Write(buf, binary.BigEndian, gid)
	}

	return buf.Bytes()
}

// buildAcceptedReply hand-assembles a minimal RFC 5531 accepted reply so
// DecodeReply can be tested without going through CallMsg.Encode first.
func buildAcceptedReply(xid uint32, acceptStat uint32, tail []byte) []byte {
	e := xdr.NewEncoder()
	e.WriteUint32(xid)
	e.WriteUint32(Reply)
	e.WriteUint32(MsgAccepted)
	NoAuth().encode(e)
	e.WriteUint32(acceptStat)
	e.WriteRaw(tail)
	return e.Bytes()
}

// ============================================================================
// ParseUnixAuth Tests
// ============================================================================

func TestParseUnixAuth(t *testing.T) {
	t.Run("ParsesValidCredentials", func(t *testing.T) {
		original := validAuthUnixCredentials()
		body := encodeAuthUnix(original)

		parsed, err := ParseUnixAuth(body)
		require.NoError(t, err)
		assert.Equal(t, original.Stamp, parsed.Stamp)
		assert.Equal(t, original.MachineName, parsed.MachineName)
		assert.Equal(t, original.UID, parsed.UID)
		assert.Equal(t, original.GID, parsed.GID)
		assert.Equal(t, original.GIDs, parsed.GIDs)
	})

	t.Run("ParsesRootCredentials", func(t *testing.T) {
		auth := &UnixAuth{
			Stamp:       uint32(time.Now().Unix()),
			MachineName: "testhost",
			UID:         0,
			GID:         0,
			GIDs:        []uint32{},
		}
		body := encodeAuthUnix(auth)

		parsed, err := ParseUnixAuth(body)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), parsed.UID)
		assert.Equal(t, uint32(0), parsed.GID)
		assert.Empty(t, parsed.GIDs)
	})

	t.Run("RejectsExcessiveGroups", func(t *testing.T) {
		buf := new(bytes.Buffer)
		_ = binary.Write(buf, binary.BigEndian, uint32(12345))
		_ = binary.Write(buf, binary.BigEndian, uint32(8))
		_, _ = buf.WriteString("testhost")
		_ = binary.Write(buf, binary.BigEndian, uint32(1000))
		_ = binary.Write(buf, binary.BigEndian, uint32(1000))
		_ = binary.Write(buf, binary.BigEndian, uint32(17)) // Too many groups

		_, err := ParseUnixAuth(buf.Bytes())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many gids")
	})

	t.Run("RejectsLongMachineName", func(t *testing.T) {
		buf := new(bytes.Buffer)
		_ = binary.Write(buf, binary.BigEndian, uint32(12345))
		_ = binary.Write(buf, binary.BigEndian, uint32(256)) // Too long

		_, err := ParseUnixAuth(buf.Bytes())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "machine name too long")
	})

	t.Run("RejectsEmptyBody", func(t *testing.T) {
		_, err := ParseUnixAuth([]byte{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})
}

func TestUnixAuthString(t *testing.T) {
	auth := &UnixAuth{
		Stamp:       12345,
		MachineName: "testhost",
		UID:         1000,
		GID:         1000,
		GIDs:        []uint32{4, 24, 27, 30},
	}

	str := auth.String()
	assert.Contains(t, str, "testhost")
	assert.Contains(t, str, "1000")
	assert.Contains(t, str, "[4 24 27 30]")
}

func TestAuthFlavors(t *testing.T) {
	assert.Equal(t, uint32(0), AuthNull)
	assert.Equal(t, uint32(1), AuthUnix)
	assert.Equal(t, uint32(2), AuthShort)
	assert.Equal(t, uint32(3), AuthDES)
}

// ============================================================================
// CallMsg / ReplyMsg Tests
// ============================================================================

func TestCallMsgEncodeLayout(t *testing.T) {
	call := &CallMsg{
		XID:       0x12345678,
		Program:   0x0607AF,
		Version:   1,
		Procedure: 10,
		Cred:      NoAuth(),
		Verf:      NoAuth(),
		Args:      []byte{0xAA, 0xBB, 0xCC, 0xDD},
	}
	encoded := call.Encode()

	require.GreaterOrEqual(t, len(encoded), 28)
	assert.Equal(t, call.XID, binary.BigEndian.Uint32(encoded[0:4]))
	assert.Equal(t, Call, binary.BigEndian.Uint32(encoded[4:8]))
	assert.Equal(t, RPCVersion, binary.BigEndian.Uint32(encoded[8:12]))
	assert.Equal(t, call.Program, binary.BigEndian.Uint32(encoded[12:16]))
	assert.Equal(t, call.Version, binary.BigEndian.Uint32(encoded[16:20]))
	assert.Equal(t, call.Procedure, binary.BigEndian.Uint32(encoded[20:24]))
	// Trailing 4 bytes are the caller-supplied, already-encoded args.
	assert.Equal(t, call.Args, encoded[len(encoded)-4:])
}

func TestDecodeReplySuccess(t *testing.T) {
	payload := []byte{0, 0, 0, 7} // some opaque result
	raw := buildAcceptedReply(0xCAFEBABE, Success, payload)

	reply, err := DecodeReply(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), reply.XID)
	assert.Equal(t, MsgAccepted, reply.ReplyState)
	assert.Equal(t, Success, reply.AcceptStat)
	assert.Equal(t, payload, reply.Results)
	assert.NoError(t, reply.AsError())
}

func TestDecodeReplyProgMismatch(t *testing.T) {
	// S5: server replies ACCEPTED/PROG_MISMATCH{low=1,high=1}.
	e := xdr.NewEncoder()
	e.WriteUint32(1)
	e.WriteUint32(1)
	raw := buildAcceptedReply(0x1, ProgMismatch, e.Bytes())

	reply, err := DecodeReply(raw)
	require.NoError(t, err)
	assert.Equal(t, ProgMismatch, reply.AcceptStat)
	assert.Equal(t, uint32(1), reply.Mismatch.Low)
	assert.Equal(t, uint32(1), reply.Mismatch.High)

	asErr := reply.AsError()
	require.Error(t, asErr)
	assert.True(t, IsCode(asErr, ErrCodeProgMismatch))
}

func TestDecodeReplyRejectedRPCMismatch(t *testing.T) {
	e := xdr.NewEncoder()
	e.WriteUint32(0xAB)
	e.WriteUint32(Reply)
	e.WriteUint32(MsgDenied)
	e.WriteUint32(RPCMismatch)
	e.WriteUint32(2)
	e.WriteUint32(2)

	reply, err := DecodeReply(e.Bytes())
	require.NoError(t, err)
	assert.Equal(t, MsgDenied, reply.ReplyState)
	assert.Equal(t, RPCMismatch, reply.RejectState)

	asErr := reply.AsError()
	require.Error(t, asErr)
	assert.True(t, IsCode(asErr, ErrCodeRPCMismatch))
}

func TestDecodeReplyRejectedAuthError(t *testing.T) {
	e := xdr.NewEncoder()
	e.WriteUint32(0x1)
	e.WriteUint32(Reply)
	e.WriteUint32(MsgDenied)
	e.WriteUint32(AuthError)
	e.WriteUint32(AuthBadCred)

	reply, err := DecodeReply(e.Bytes())
	require.NoError(t, err)

	asErr := reply.AsError()
	require.Error(t, asErr)
	assert.True(t, IsCode(asErr, ErrCodeAuth))
}

func TestDecodeReplyRejectsWrongMsgType(t *testing.T) {
	e := xdr.NewEncoder()
	e.WriteUint32(0x1)
	e.WriteUint32(Call) // a CALL, not a REPLY
	_, err := DecodeReply(e.Bytes())
	require.Error(t, err)
}

// ============================================================================
// XID generator
// ============================================================================

func TestXIDGeneratorProducesUniqueValues(t *testing.T) {
	gen := NewXIDGenerator()
	seen := make(map[uint32]bool)
	for i := 0; i < 1000; i++ {
		xid := gen.Next()
		assert.False(t, seen[xid], "xid %d repeated", xid)
		seen[xid] = true
	}
}
