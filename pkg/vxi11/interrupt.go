package vxi11

import (
	"fmt"
	"net"
	"time"

	"github.com/marmos91/vxi11/internal/rpc"
	"github.com/marmos91/vxi11/internal/transport"
	"github.com/marmos91/vxi11/internal/xdr"
)

// intrVersion is the Interrupt channel's RPC version.
const intrVersion uint32 = 1

// intrProgram is the program number the client advertises to the device
// in create_intr_chan; the interrupt channel is served on program
// 0x0607AF like every other VXI-11 channel.
const intrProgram = Program

// intrProtocolTCP is the progFamily value create_intr_chan expects for a
// TCP listener (Device_RemoteFunc's progFamily enum: TCP=0, UDP=1).
const intrProtocolTCP uint32 = 0

const procDeviceIntrSrq uint32 = 30

// InterruptChannel is the client's side of VXI-11's inverted RPC channel:
// the client binds a listener and acts as the RPC server, accepting
// exactly one connection from the device and servicing device_intr_srq
// calls on it. create_intr_chan tells the device this listener's address;
// the device is expected to connect back to deliver service requests.
type InterruptChannel struct {
	listener net.Listener
	conn     net.Conn
	stream   *transport.Stream
	srq      chan []byte
	closed   chan struct{}
}

// ListenInterruptChannel binds a TCP listener on localAddr (commonly
// "host-ip:0" to let the OS choose a port) and returns the channel ready
// to Accept the device's connection.
func ListenInterruptChannel(localAddr string) (*InterruptChannel, error) {
	ln, err := net.Listen("tcp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("vxi11: listen interrupt channel: %w", err)
	}
	return &InterruptChannel{
		listener: ln,
		srq:      make(chan []byte, 1),
		closed:   make(chan struct{}),
	}, nil
}

// Addr returns the listener's bound address, for passing to
// CoreChannel.CreateIntrChan.
func (i *InterruptChannel) Addr() *net.TCPAddr {
	return i.listener.Addr().(*net.TCPAddr)
}

// Accept blocks for the device's single incoming connection, then starts
// servicing device_intr_srq calls on it in the background. Per §4.9, the
// caller is responsible for checking the peer matches the device's known
// address before trusting interrupts delivered on it.
func (i *InterruptChannel) Accept() (net.Addr, error) {
	conn, err := i.listener.Accept()
	if err != nil {
		return nil, fmt.Errorf("vxi11: accept interrupt channel: %w", err)
	}
	i.conn = conn
	i.stream = transport.NewStream(conn)
	go i.serve()
	return conn.RemoteAddr(), nil
}

func (i *InterruptChannel) serve() {
	for {
		raw, err := i.stream.ReadRecord()
		if err != nil {
			close(i.srq)
			return
		}

		call, err := rpc.DecodeCall(raw)
		if err != nil {
			continue
		}
		if call.Procedure != procDeviceIntrSrq {
			continue
		}

		args := &DeviceIntrSrqParms{}
		if err := xdr.Decode(call.Args, args); err != nil {
			continue
		}

		reply := rpc.EncodeAcceptedReply(call.XID, nil)
		if err := i.stream.WriteRecord(reply); err != nil {
			close(i.srq)
			return
		}

		select {
		case i.srq <- args.Handle:
		case <-i.closed:
			return
		}
	}
}

// NextInterrupt blocks until the device delivers a service request,
// returning the opaque handle it registered via device_enable_srq, or
// false once the channel has been closed or the connection dropped, or
// when a positive timeout elapses first. A timeout <= 0 waits
// indefinitely.
func (i *InterruptChannel) NextInterrupt(timeout time.Duration) ([]byte, bool) {
	if timeout <= 0 {
		handle, ok := <-i.srq
		return handle, ok
	}
	select {
	case handle, ok := <-i.srq:
		return handle, ok
	case <-time.After(timeout):
		return nil, false
	}
}

// Close tears down the accepted connection and the listener.
func (i *InterruptChannel) Close() error {
	close(i.closed)
	if i.conn != nil {
		_ = i.conn.Close()
	}
	return i.listener.Close()
}
