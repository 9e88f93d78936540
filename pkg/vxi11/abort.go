package vxi11

import (
	"fmt"
	"time"

	"github.com/marmos91/vxi11/internal/rpc"
	"github.com/marmos91/vxi11/internal/transport"
	"github.com/marmos91/vxi11/internal/xdr"
)

// AbortVersion is the Abort channel's RPC version.
const AbortVersion uint32 = 1

const procDeviceAbort uint32 = 1

// AbortChannel is a connection to a device's Abort channel, a second TCP
// connection carrying the single device_abort procedure. Per §4.8, a
// failure to establish it is not fatal to a session: abort simply becomes
// unavailable and later calls fail with ErrChannelNotEstablished.
type AbortChannel struct {
	stream *transport.Stream
	rpc    *rpc.Client
}

// DialAbortChannel connects to the Abort channel at addr (host, abort
// port returned by create_link).
func DialAbortChannel(addr string, timeout time.Duration) (*AbortChannel, error) {
	stream, err := transport.DialStream("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("vxi11: dial abort channel %s: %w", addr, err)
	}
	return &AbortChannel{
		stream: stream,
		rpc:    rpc.NewClient(stream, Program, AbortVersion),
	}, nil
}

// Close releases the underlying TCP connection.
func (a *AbortChannel) Close() error {
	return a.stream.Close()
}

// DeviceAbort performs device_abort (proc 1), aborting an in-progress
// operation on linkID.
func (a *AbortChannel) DeviceAbort(linkID Device_Link, timeout time.Duration) error {
	args := &DeviceLinkParms{LinkID: linkID}
	raw, err := a.rpc.Call(procDeviceAbort, xdr.Encode(args), timeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}
