package portmap

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/vxi11/internal/transport"
	"github.com/marmos91/vxi11/internal/xdr"
)

// makeSuccessReply builds a minimal RFC 5531 accepted/success reply body,
// echoing xid and carrying data as the result payload.
func makeSuccessReply(xid uint32, data []byte) []byte {
	buf := make([]byte, 24+len(data))
	binary.BigEndian.PutUint32(buf[0:4], xid)
	binary.BigEndian.PutUint32(buf[4:8], 1)  // msg_type = REPLY
	binary.BigEndian.PutUint32(buf[8:12], 0) // reply_stat = MSG_ACCEPTED
	binary.BigEndian.PutUint32(buf[12:16], 0)
	binary.BigEndian.PutUint32(buf[16:20], 0)
	binary.BigEndian.PutUint32(buf[20:24], 0) // accept_stat = SUCCESS
	copy(buf[24:], data)
	return buf
}

func readCallXID(t *testing.T, raw []byte) uint32 {
	t.Helper()
	require.GreaterOrEqual(t, len(raw), 4)
	return binary.BigEndian.Uint32(raw[0:4])
}

// fakeDiscoveryMetrics is a test double for metrics.DiscoveryMetrics that
// records its single call for assertions.
type fakeDiscoveryMetrics struct {
	calls    int
	replies  int
	duration time.Duration
}

func (f *fakeDiscoveryMetrics) RecordDiscoveryRound(repliesReceived int, duration time.Duration) {
	f.calls++
	f.replies = repliesReceived
	f.duration = duration
}

// TestGetPortTCP is S1: GETPORT over TCP unicast for (0x0607AF, 1, TCP, 0),
// the server replies SUCCESS with port 6162.
func TestGetPortTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		require.NoError(t, err)
		defer conn.Close()

		stream := transport.NewStream(conn)
		raw, err := stream.ReadRecord()
		require.NoError(t, err)

		xid := readCallXID(t, raw)

		e := xdr.NewEncoder()
		e.WriteUint32(6162)
		require.NoError(t, stream.WriteRecord(makeSuccessReply(xid, e.Bytes())))
	}()

	client, err := DialTCP(ln.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	defer client.Close()

	port, err := client.GetPort(0x0607AF, 1, ProtoTCP, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(6162), port)

	<-serverDone
}

func TestGetPortTCPNotRegistered(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		stream := transport.NewStream(conn)
		raw, err := stream.ReadRecord()
		if err != nil {
			return
		}
		xid := binary.BigEndian.Uint32(raw[0:4])
		e := xdr.NewEncoder()
		e.WriteUint32(0)
		_ = stream.WriteRecord(makeSuccessReply(xid, e.Bytes()))
	}()

	client, err := DialTCP(ln.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	defer client.Close()

	port, err := client.GetPort(999999, 1, ProtoTCP, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), port)
}

// TestCollectPorts is S6: broadcast GETPORT collects replies from
// multiple peers, yielding both ports (their order is not checked), then
// ends once the idle deadline elapses.
func TestCollectPorts(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{})
	require.NoError(t, err)
	defer listener.Close()

	listenerAddr := listener.LocalAddr().(*net.UDPAddr)

	var gotXID uint32
	gotCall := make(chan struct{})
	go func() {
		buf := make([]byte, 65535)
		n, peer, err := listener.ReadFromUDP(buf)
		require.NoError(t, err)
		gotXID = binary.BigEndian.Uint32(buf[0:4])
		close(gotCall)

		hostA, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
		require.NoError(t, err)
		connA, err := net.DialUDP("udp", hostA, peer)
		require.NoError(t, err)
		defer connA.Close()

		e := xdr.NewEncoder()
		e.WriteUint32(6162)
		_, _ = connA.Write(makeSuccessReply(gotXID, e.Bytes()))

		connB, err := net.DialUDP("udp", hostA, peer)
		require.NoError(t, err)
		defer connB.Close()
		e2 := xdr.NewEncoder()
		e2.WriteUint32(7000)
		_, _ = connB.Write(makeSuccessReply(gotXID, e2.Bytes()))

		_ = n
	}()

	fm := &fakeDiscoveryMetrics{}
	collector, err := CollectPorts(0x0607AF, 1, ProtoTCP, listenerAddr.String(), 500*time.Millisecond, fm)
	require.NoError(t, err)

	<-gotCall

	var results []Discovered
	for {
		d, ok := collector.Next()
		if !ok {
			break
		}
		results = append(results, d)
	}

	require.Len(t, results, 2)
	assert.ElementsMatch(t, []uint32{6162, 7000}, []uint32{results[0].Port, results[1].Port})

	assert.Equal(t, 1, fm.calls)
	assert.Equal(t, 2, fm.replies)
	assert.GreaterOrEqual(t, fm.duration, 500*time.Millisecond)
}

func TestMappingRoundTrip(t *testing.T) {
	m := &Mapping{Prog: 0x0607AF, Vers: 1, Prot: ProtoTCP, Port: 6162}
	encoded := xdr.Encode(m)
	assert.Len(t, encoded, 16)

	decoded := &Mapping{}
	require.NoError(t, xdr.Decode(encoded, decoded))
	assert.Equal(t, m, decoded)
}
