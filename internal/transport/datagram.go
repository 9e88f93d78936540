package transport

import (
	"net"
	"time"
)

// maxDatagramSize is the largest UDP payload this client will attempt to
// read; well above anything Portmap or VXI-11 ever sends in one message.
const maxDatagramSize = 65535

// Datagram is a UDP transport: one packet in, one packet out, no record
// marking. Used for both unicast Portmap queries and broadcast discovery.
type Datagram struct {
	conn *net.UDPConn
}

// NewDatagram wraps an established UDP socket.
func NewDatagram(conn *net.UDPConn) *Datagram {
	return &Datagram{conn: conn}
}

// Close closes the underlying socket.
func (d *Datagram) Close() error {
	return d.conn.Close()
}

// SetDeadline sets both read and write deadlines.
func (d *Datagram) SetDeadline(t time.Time) error {
	return d.conn.SetDeadline(t)
}

// Send writes data as a single datagram to addr.
func (d *Datagram) Send(data []byte, addr *net.UDPAddr) error {
	_, err := d.conn.WriteToUDP(data, addr)
	return err
}

// Recv blocks for a single datagram and returns its payload and source.
// Callers needing a timeout must call SetDeadline first.
func (d *Datagram) Recv() ([]byte, *net.UDPAddr, error) {
	buf := make([]byte, maxDatagramSize)
	n, addr, err := d.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], addr, nil
}

// WriteMessage satisfies rpc.ClientConn by writing data to the socket's
// connected peer.
func (d *Datagram) WriteMessage(data []byte) error {
	_, err := d.conn.Write(data)
	return err
}

// ReadMessage satisfies rpc.ClientConn by reading one datagram from the
// socket's connected peer.
func (d *Datagram) ReadMessage() ([]byte, error) {
	buf := make([]byte, maxDatagramSize)
	n, err := d.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// DialDatagram opens a UDP socket connected to addr (used for unicast
// Portmap queries, where there is exactly one expected peer).
func DialDatagram(addr string) (*Datagram, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}
	return NewDatagram(conn), nil
}

// ListenDatagram opens an unconnected, broadcast-capable UDP socket bound
// to an ephemeral local port, for sending to a broadcast address and
// collecting replies from multiple peers.
func ListenDatagram() (*Datagram, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}
	return NewDatagram(conn), nil
}

// Response is one reply received during a broadcast collection pass.
type Response struct {
	Data []byte
	Peer *net.UDPAddr
}

// ResponseCollector lazily iterates replies to a broadcast datagram. Each
// call to Next resets an idle deadline; the iterator ends the first time
// that deadline is exceeded without a new packet arriving, which is the
// only termination signal broadcast discovery has (there is no reply
// count to wait for).
type ResponseCollector struct {
	datagram     *Datagram
	idleDeadline time.Duration
	done         bool
}

// Next blocks until either a reply arrives (true, populated Response) or
// the idle deadline elapses with nothing new (false, zero Response). Once
// it returns false it always returns false; callers should stop calling
// it and close the underlying Datagram.
func (c *ResponseCollector) Next() (Response, bool) {
	if c.done {
		return Response{}, false
	}

	if err := c.datagram.SetDeadline(time.Now().Add(c.idleDeadline)); err != nil {
		c.done = true
		return Response{}, false
	}

	data, peer, err := c.datagram.Recv()
	if err != nil {
		c.done = true
		return Response{}, false
	}

	return Response{Data: data, Peer: peer}, true
}

// Broadcast sends data to broadcastAddr on a fresh broadcast-capable
// socket and returns an iterator over the replies that arrive before
// idleDeadline elapses with no new traffic.
func Broadcast(data []byte, broadcastAddr string, idleDeadline time.Duration) (*ResponseCollector, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", broadcastAddr)
	if err != nil {
		return nil, err
	}

	datagram, err := ListenDatagram()
	if err != nil {
		return nil, err
	}

	if err := enableBroadcast(datagram.conn); err != nil {
		_ = datagram.Close()
		return nil, err
	}

	if err := datagram.Send(data, udpAddr); err != nil {
		_ = datagram.Close()
		return nil, err
	}

	return &ResponseCollector{datagram: datagram, idleDeadline: idleDeadline}, nil
}
