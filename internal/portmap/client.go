package portmap

import (
	"fmt"
	"net"
	"time"

	"github.com/marmos91/vxi11/internal/rpc"
	"github.com/marmos91/vxi11/internal/transport"
	"github.com/marmos91/vxi11/internal/xdr"
	"github.com/marmos91/vxi11/pkg/metrics"
)

// Client is a portmapper client bound to a single TCP or UDP connection.
type Client struct {
	rpc   *rpc.Client
	close func() error
}

// DialTCP connects to a portmapper over TCP.
func DialTCP(addr string, timeout time.Duration) (*Client, error) {
	stream, err := transport.DialStream("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("portmap: dial tcp %s: %w", addr, err)
	}
	return &Client{rpc: rpc.NewClient(stream, Program, Version), close: stream.Close}, nil
}

// DialUDP connects to a portmapper over UDP.
func DialUDP(addr string) (*Client, error) {
	datagram, err := transport.DialDatagram(addr)
	if err != nil {
		return nil, fmt.Errorf("portmap: dial udp %s: %w", addr, err)
	}
	return &Client{rpc: rpc.NewClient(datagram, Program, Version), close: datagram.Close}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.close()
}

// GetPort resolves the TCP or UDP port registered for (prog, vers, prot),
// or 0 if no such mapping is registered.
func (c *Client) GetPort(prog, vers, prot uint32, timeout time.Duration) (uint32, error) {
	args := &Mapping{Prog: prog, Vers: vers, Prot: prot}
	result, err := c.rpc.Call(ProcGetport, xdr.Encode(args), timeout)
	if err != nil {
		return 0, err
	}
	return decodeGetportResult(result)
}

// Discovered is one reply collected during a broadcast GETPORT query.
type Discovered struct {
	Port uint32
	Peer *net.UDPAddr
}

// Collector lazily iterates GETPORT replies arriving in response to a
// broadcast query (S6): each call to Next either returns the next peer's
// answer or, once idleDeadline elapses with no new traffic, ends the
// iteration. There is no reply count to wait for, so the idle deadline is
// the only termination signal broadcast discovery has.
type Collector struct {
	collector *transport.ResponseCollector
	xid       uint32
	metrics   metrics.DiscoveryMetrics
	start     time.Time
	replies   int
	reported  bool
}

// Next blocks for the next reply. A reply from an unrelated xid, or one
// that fails to parse, is skipped rather than surfaced -- broadcast
// traffic on a shared UDP port can include unrelated chatter. Once the
// idle deadline ends the round, the round is reported to metrics (if
// configured) exactly once.
func (c *Collector) Next() (Discovered, bool) {
	for {
		resp, ok := c.collector.Next()
		if !ok {
			c.reportRound()
			return Discovered{}, false
		}

		reply, err := rpc.DecodeReply(resp.Data)
		if err != nil || reply.XID != c.xid {
			continue
		}
		if err := reply.AsError(); err != nil {
			continue
		}
		port, err := decodeGetportResult(reply.Results)
		if err != nil {
			continue
		}
		c.replies++
		return Discovered{Port: port, Peer: resp.Peer}, true
	}
}

func (c *Collector) reportRound() {
	if c.metrics == nil || c.reported {
		return
	}
	c.reported = true
	c.metrics.RecordDiscoveryRound(c.replies, time.Since(c.start))
}

// CollectPorts broadcasts a GETPORT query for (prog, vers, prot) to
// broadcastAddr (typically "255.255.255.255:111") and returns a Collector
// over the replies. m is optional; a nil value disables reporting.
func CollectPorts(prog, vers, prot uint32, broadcastAddr string, idleDeadline time.Duration, m metrics.DiscoveryMetrics) (*Collector, error) {
	xid := rpc.NewXIDGenerator().Next()
	args := &Mapping{Prog: prog, Vers: vers, Prot: prot}
	call := &rpc.CallMsg{
		XID:       xid,
		Program:   Program,
		Version:   Version,
		Procedure: ProcGetport,
		Cred:      rpc.NoAuth(),
		Verf:      rpc.NoAuth(),
		Args:      xdr.Encode(args),
	}

	collector, err := transport.Broadcast(call.Encode(), broadcastAddr, idleDeadline)
	if err != nil {
		return nil, fmt.Errorf("portmap: broadcast: %w", err)
	}
	return &Collector{collector: collector, xid: xid, metrics: m, start: time.Now()}, nil
}
