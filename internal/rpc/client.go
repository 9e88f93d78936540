package rpc

import "time"

// ClientConn is the narrow capability an RPC client needs from a
// transport: write one message, read one message, set a deadline. Both
// transport.Stream (record-marked TCP) and transport.Datagram (connected
// UDP) satisfy it, which is what lets Client stay transport-agnostic
// instead of growing a generic parameter for every call.
type ClientConn interface {
	WriteMessage(data []byte) error
	ReadMessage() ([]byte, error)
	SetDeadline(t time.Time) error
}

// Client binds a (program, version) pair to a ClientConn and drives the
// call/reply round trip described in RFC 5531: generate an xid, encode and
// send the call, read one reply, assert the xid matches, and turn any
// non-success status into a typed error.
type Client struct {
	conn    ClientConn
	program uint32
	version uint32
	xid     *XIDGenerator
	cred    Auth
	verf    Auth
}

// NewClient binds conn to (program, version) with AUTH_NULL credentials
// and verifier, the default every VXI-11 call uses.
func NewClient(conn ClientConn, program, version uint32) *Client {
	return &Client{
		conn:    conn,
		program: program,
		version: version,
		xid:     NewXIDGenerator(),
		cred:    NoAuth(),
		verf:    NoAuth(),
	}
}

// SetCredentials overrides the credential and verifier sent with every
// subsequent call. Both must round-trip unmodified if supplied.
func (c *Client) SetCredentials(cred, verf Auth) {
	c.cred = cred
	c.verf = verf
}

// Call encodes and sends a single RPC call carrying args as the
// already-XDR-encoded procedure arguments, then returns the opaque result
// payload from a successful reply. timeout of zero means no deadline.
func (c *Client) Call(procedure uint32, args []byte, timeout time.Duration) ([]byte, error) {
	xid := c.xid.Next()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	call := &CallMsg{
		XID:       xid,
		Program:   c.program,
		Version:   c.version,
		Procedure: procedure,
		Cred:      c.cred,
		Verf:      c.verf,
		Args:      args,
	}
	if err := c.conn.WriteMessage(call.Encode()); err != nil {
		return nil, err
	}

	raw, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	reply, err := DecodeReply(raw)
	if err != nil {
		return nil, err
	}
	if reply.XID != xid {
		return nil, NewXIDMismatchError(xid, reply.XID)
	}
	if err := reply.AsError(); err != nil {
		return nil, err
	}
	return reply.Results, nil
}
