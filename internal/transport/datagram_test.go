package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatagramSendRecvRoundTrip(t *testing.T) {
	server, err := ListenDatagram()
	require.NoError(t, err)
	defer server.Close()

	client, err := ListenDatagram()
	require.NoError(t, err)
	defer client.Close()

	serverAddr := server.conn.LocalAddr().(*net.UDPAddr)
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	require.NoError(t, client.Send(payload, serverAddr))

	require.NoError(t, server.SetDeadline(time.Now().Add(2*time.Second)))
	data, _, err := server.Recv()
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

// TestResponseCollectorYieldsRepliesThenTimesOut mirrors S6: a broadcast
// query collects replies from multiple peers and then, once no new
// traffic arrives within the idle deadline, ends the iteration.
func TestResponseCollectorYieldsRepliesThenTimesOut(t *testing.T) {
	listener, err := ListenDatagram()
	require.NoError(t, err)
	defer listener.Close()

	listenerAddr := listener.conn.LocalAddr().(*net.UDPAddr)

	peerA, err := ListenDatagram()
	require.NoError(t, err)
	defer peerA.Close()
	peerB, err := ListenDatagram()
	require.NoError(t, err)
	defer peerB.Close()

	require.NoError(t, peerA.Send([]byte{0x18, 0x12}, listenerAddr)) // port 6162
	require.NoError(t, peerB.Send([]byte{0x1B, 0x58}, listenerAddr)) // port 7000

	collector := &ResponseCollector{datagram: listener, idleDeadline: 500 * time.Millisecond}

	var responses []Response
	for {
		resp, ok := collector.Next()
		if !ok {
			break
		}
		responses = append(responses, resp)
	}

	require.Len(t, responses, 2)
	assert.Equal(t, []byte{0x18, 0x12}, responses[0].Data)
	assert.Equal(t, []byte{0x1B, 0x58}, responses[1].Data)
}

func TestResponseCollectorEndsAfterFirstCallWhenDone(t *testing.T) {
	listener, err := ListenDatagram()
	require.NoError(t, err)
	defer listener.Close()

	collector := &ResponseCollector{datagram: listener, idleDeadline: 50 * time.Millisecond, done: true}
	_, ok := collector.Next()
	assert.False(t, ok)
}
