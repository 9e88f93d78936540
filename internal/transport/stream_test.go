package transport

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenLoopback(t *testing.T) (net.Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln, ln.Addr().String()
}

// TestReadRecordReassemblesFragments is S4: two fragments, first header
// 0x00000010 (16 bytes, not last), second header 0x80000008 (8 bytes,
// last). Expected: a single 24-byte assembled record.
func TestReadRecordReassemblesFragments(t *testing.T) {
	ln, addr := listenLoopback(t)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		require.NoError(t, err)
		defer conn.Close()

		first := make([]byte, 16)
		for i := range first {
			first[i] = byte(i)
		}
		second := make([]byte, 8)
		for i := range second {
			second[i] = byte(100 + i)
		}

		var header1, header2 [4]byte
		binary.BigEndian.PutUint32(header1[:], 0x00000010)
		binary.BigEndian.PutUint32(header2[:], 0x80000008)

		_, _ = conn.Write(header1[:])
		_, _ = conn.Write(first)
		_, _ = conn.Write(header2[:])
		_, _ = conn.Write(second)
	}()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	stream := NewStream(conn)
	record, err := stream.ReadRecord()
	require.NoError(t, err)
	assert.Len(t, record, 24)
	assert.Equal(t, byte(0), record[0])
	assert.Equal(t, byte(15), record[15])
	assert.Equal(t, byte(100), record[16])
	assert.Equal(t, byte(107), record[23])

	<-serverDone
}

func TestWriteRecordSingleFragment(t *testing.T) {
	ln, addr := listenLoopback(t)
	defer ln.Close()

	payload := []byte("device_write payload")
	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		defer conn.Close()

		var header [4]byte
		_, _ = io.ReadFull(conn, header[:])
		headerVal := binary.BigEndian.Uint32(header[:])

		assert.True(t, headerVal&0x80000000 != 0, "single write must set last-fragment bit")
		length := headerVal & 0x7FFFFFFF

		body := make([]byte, length)
		_, _ = io.ReadFull(conn, body)
		received <- body
	}()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	stream := NewStream(conn)
	require.NoError(t, stream.WriteRecord(payload))

	select {
	case body := <-received:
		assert.Equal(t, payload, body)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received a fragment")
	}
}

func TestReadRecordUnexpectedEOF(t *testing.T) {
	ln, addr := listenLoopback(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		// Close immediately without writing a header.
		conn.Close()
	}()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	stream := NewStream(conn)
	_, err = stream.ReadRecord()
	require.Error(t, err)
	var eofErr *UnexpectedEOFError
	assert.ErrorAs(t, err, &eofErr)
}
