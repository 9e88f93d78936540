// Package transport implements the two wire transports VXI-11 runs over:
// TCP with RPC record marking, and UDP datagrams with none. Both sit below
// internal/rpc and know nothing about RPC message structure -- they deal
// purely in logical records (stream) or datagrams (UDP).
package transport

import (
	"encoding/binary"
	"io"
	"net"
	"time"
)

// maxRecordSize bounds the accumulated length of a single logical record,
// matching the 31-bit fragment length field's own ceiling (RFC 1057 record
// marking).
const maxRecordSize = 1<<31 - 1

// lastFragmentBit marks the final fragment of a logical record in the
// 4-byte fragment header.
const lastFragmentBit = 0x80000000

// fragmentLengthMask extracts the fragment's payload length from the
// header, independent of the last-fragment flag.
const fragmentLengthMask = 0x7FFFFFFF

// Stream is a record-marked TCP transport: ReadRecord reassembles however
// many fragments the server chose to split its reply across; WriteRecord
// always emits the whole record as a single fragment, which every VXI-11
// server this client has been tested against accepts.
type Stream struct {
	conn net.Conn
}

// NewStream wraps an established TCP connection.
func NewStream(conn net.Conn) *Stream {
	return &Stream{conn: conn}
}

// Close closes the underlying connection.
func (s *Stream) Close() error {
	return s.conn.Close()
}

// SetDeadline sets both read and write deadlines on the underlying
// connection.
func (s *Stream) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

// RemoteAddr returns the peer address of the underlying connection.
func (s *Stream) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// readFragmentHeader reads and decodes one 4-byte fragment header.
func (s *Stream) readFragmentHeader() (last bool, length uint32, err error) {
	var buf [4]byte
	if _, err := io.ReadFull(s.conn, buf[:]); err != nil {
		return false, 0, &UnexpectedEOFError{Reason: "fragment header: " + err.Error()}
	}
	header := binary.BigEndian.Uint32(buf[:])
	return header&lastFragmentBit != 0, header & fragmentLengthMask, nil
}

// ReadRecord reads one logical record: it loops reading fragment headers
// and appending fragment payloads until a fragment with the last-fragment
// flag set is consumed.
func (s *Stream) ReadRecord() ([]byte, error) {
	var record []byte

	for {
		last, length, err := s.readFragmentHeader()
		if err != nil {
			return nil, err
		}

		if uint64(len(record))+uint64(length) > maxRecordSize {
			return nil, &TooLargeError{Length: length}
		}

		fragment := make([]byte, length)
		if _, err := io.ReadFull(s.conn, fragment); err != nil {
			return nil, &UnexpectedEOFError{Reason: "fragment payload: " + err.Error()}
		}
		record = append(record, fragment...)

		if last {
			return record, nil
		}
	}
}

// WriteRecord writes data as a single fragment with the last-fragment flag
// set.
func (s *Stream) WriteRecord(data []byte) error {
	if len(data) > maxRecordSize {
		return &TooLargeError{Length: uint32(len(data))}
	}

	header := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(header[0:4], lastFragmentBit|uint32(len(data)))
	copy(header[4:], data)

	_, err := s.conn.Write(header)
	return err
}

// WriteMessage satisfies rpc.ClientConn by writing data as one record.
func (s *Stream) WriteMessage(data []byte) error {
	return s.WriteRecord(data)
}

// ReadMessage satisfies rpc.ClientConn by reading one reassembled record.
func (s *Stream) ReadMessage() ([]byte, error) {
	return s.ReadRecord()
}

// DialStream opens a TCP connection to addr.
func DialStream(network, addr string, timeout time.Duration) (*Stream, error) {
	conn, err := net.DialTimeout(network, addr, timeout)
	if err != nil {
		return nil, err
	}
	return NewStream(conn), nil
}
