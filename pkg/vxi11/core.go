package vxi11

import (
	"fmt"
	"time"

	"github.com/marmos91/vxi11/internal/rpc"
	"github.com/marmos91/vxi11/internal/transport"
	"github.com/marmos91/vxi11/internal/xdr"
)

// Program is the VXI-11 RPC program number (0x0607AF) shared by the Core,
// Abort, and Interrupt channels.
const Program uint32 = 0x0607AF

// CoreVersion is the Core channel's RPC version.
const CoreVersion uint32 = 1

const (
	procCreateLink      uint32 = 10
	procDeviceWrite     uint32 = 11
	procDeviceRead      uint32 = 12
	procDeviceReadStb   uint32 = 13
	procDeviceTrigger   uint32 = 14
	procDeviceClear     uint32 = 15
	procDeviceRemote    uint32 = 16
	procDeviceLocal     uint32 = 17
	procDeviceLock      uint32 = 18
	procDeviceUnlock    uint32 = 19
	procDeviceEnableSrq uint32 = 20
	procDeviceDocmd     uint32 = 22
	procDestroyLink     uint32 = 23
	procCreateIntrChan  uint32 = 25
	procDestroyIntrChan uint32 = 26
)

// CoreChannel is a connected VXI-11 Core channel, carrying every
// operation defined on program 0x0607AF version 1.
type CoreChannel struct {
	stream *transport.Stream
	rpc    *rpc.Client
}

// DialCoreChannel connects to a Core channel listening at addr.
func DialCoreChannel(addr string, timeout time.Duration) (*CoreChannel, error) {
	stream, err := transport.DialStream("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("vxi11: dial core channel %s: %w", addr, err)
	}
	return &CoreChannel{
		stream: stream,
		rpc:    rpc.NewClient(stream, Program, CoreVersion),
	}, nil
}

// Close releases the underlying TCP connection.
func (c *CoreChannel) Close() error {
	return c.stream.Close()
}

// CreateLink performs create_link (proc 10), establishing a link to
// device (e.g. "inst0") and returning the link id, abort channel port,
// and maximum single-fragment receive size the device will accept.
func (c *CoreChannel) CreateLink(clientID int32, lockDevice bool, lockTimeout time.Duration, device string, timeout time.Duration) (*CreateLinkResp, error) {
	args := &CreateLinkParms{
		ClientID:    clientID,
		LockDevice:  lockDevice,
		LockTimeout: uint32(lockTimeout.Milliseconds()),
		Device:      device,
	}
	raw, err := c.rpc.Call(procCreateLink, xdr.Encode(args), timeout)
	if err != nil {
		return nil, err
	}
	resp := &CreateLinkResp{}
	if err := xdr.Decode(raw, resp); err != nil {
		return nil, err
	}
	if err := newDeviceError(resp.Error); err != nil {
		return nil, err
	}
	return resp, nil
}

// DestroyLink performs destroy_link (proc 23), releasing linkID.
func (c *CoreChannel) DestroyLink(linkID Device_Link, timeout time.Duration) error {
	args := &DeviceLinkParms{LinkID: linkID}
	raw, err := c.rpc.Call(procDestroyLink, xdr.Encode(args), timeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}

// DeviceWrite performs device_write (proc 11), splitting data into
// fragments no larger than maxFragment and setting FlagEnd only on the
// final fragment. It returns the total number of bytes the device
// accepted.
func (c *CoreChannel) DeviceWrite(linkID Device_Link, data []byte, flags Flags, timeout, lockTimeout time.Duration, maxFragment uint32) (uint32, error) {
	if maxFragment == 0 {
		maxFragment = uint32(len(data))
	}
	if len(data) == 0 {
		return c.writeFragment(linkID, nil, flags|FlagEnd, timeout, lockTimeout)
	}

	var total uint32
	for offset := 0; offset < len(data); {
		end := offset + int(maxFragment)
		if end > len(data) {
			end = len(data)
		}
		fragment := data[offset:end]
		fragFlags := flags &^ FlagEnd
		if end == len(data) {
			fragFlags |= FlagEnd
		}

		n, err := c.writeFragment(linkID, fragment, fragFlags, timeout, lockTimeout)
		if err != nil {
			return total, err
		}
		total += n
		offset = end
	}
	return total, nil
}

func (c *CoreChannel) writeFragment(linkID Device_Link, data []byte, flags Flags, timeout, lockTimeout time.Duration) (uint32, error) {
	args := &DeviceWriteParms{
		LinkID:      linkID,
		Timeout:     uint32(timeout.Milliseconds()),
		LockTimeout: uint32(lockTimeout.Milliseconds()),
		Flags:       flags,
		Data:        data,
	}
	raw, err := c.rpc.Call(procDeviceWrite, xdr.Encode(args), timeout)
	if err != nil {
		return 0, err
	}
	resp := &DeviceWriteResp{}
	if err := xdr.Decode(raw, resp); err != nil {
		return 0, err
	}
	if err := newDeviceError(resp.Error); err != nil {
		return resp.Size, err
	}
	return resp.Size, nil
}

// DeviceRead performs one or more device_read (proc 12) calls, accumulating
// fragments until the reply reports reasonEnd, reasonChr or reasonReqCnt,
// and returns the accumulated payload. A reply whose reason mask is entirely zero with
// no wire error is translated to DevOutputBufFull: the device has more data
// buffered than fits in requestSize and no terminator condition fired.
func (c *CoreChannel) DeviceRead(linkID Device_Link, requestSize uint32, flags Flags, termChar byte, timeout, lockTimeout time.Duration) ([]byte, error) {
	var accumulated []byte

	for {
		if uint32(len(accumulated)) >= requestSize {
			break
		}
		remaining := requestSize - uint32(len(accumulated))
		args := &DeviceReadParms{
			LinkID:      linkID,
			RequestSize: remaining,
			Timeout:     uint32(timeout.Milliseconds()),
			LockTimeout: uint32(lockTimeout.Milliseconds()),
			Flags:       flags,
			TermChar:    termChar,
		}
		raw, err := c.rpc.Call(procDeviceRead, xdr.Encode(args), timeout)
		if err != nil {
			return accumulated, err
		}
		resp := &DeviceReadResp{}
		if err := xdr.Decode(raw, resp); err != nil {
			return accumulated, err
		}
		if err := newDeviceError(resp.Error); err != nil {
			return accumulated, err
		}

		accumulated = append(accumulated, resp.Data...)

		if resp.Reason&reasonEnd != 0 {
			return accumulated, nil
		}
		if resp.Reason&(reasonReqCnt|reasonChr) != 0 {
			return accumulated, nil
		}
		if resp.Reason == 0 {
			return accumulated, newDevOutputBufFullError()
		}
	}
	return accumulated, nil
}

// DeviceReadStb performs device_read_stb (proc 13), returning the
// device's IEEE 488.2 status byte.
func (c *CoreChannel) DeviceReadStb(linkID Device_Link, timeout time.Duration) (byte, error) {
	args := &DeviceLinkParms{LinkID: linkID}
	raw, err := c.rpc.Call(procDeviceReadStb, xdr.Encode(args), timeout)
	if err != nil {
		return 0, err
	}
	resp := &DeviceReadStbResp{}
	if err := xdr.Decode(raw, resp); err != nil {
		return 0, err
	}
	if err := newDeviceError(resp.Error); err != nil {
		return 0, err
	}
	return resp.STB, nil
}

func (c *CoreChannel) genericCall(proc uint32, linkID Device_Link, flags Flags, timeout, lockTimeout time.Duration) error {
	args := &DeviceGenericParms{
		LinkID:      linkID,
		Flags:       flags,
		LockTimeout: uint32(lockTimeout.Milliseconds()),
		Timeout:     uint32(timeout.Milliseconds()),
	}
	raw, err := c.rpc.Call(proc, xdr.Encode(args), timeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}

// DeviceTrigger performs device_trigger (proc 14).
func (c *CoreChannel) DeviceTrigger(linkID Device_Link, flags Flags, timeout, lockTimeout time.Duration) error {
	return c.genericCall(procDeviceTrigger, linkID, flags, timeout, lockTimeout)
}

// DeviceClear performs device_clear (proc 15).
func (c *CoreChannel) DeviceClear(linkID Device_Link, flags Flags, timeout, lockTimeout time.Duration) error {
	return c.genericCall(procDeviceClear, linkID, flags, timeout, lockTimeout)
}

// DeviceRemote performs device_remote (proc 16).
func (c *CoreChannel) DeviceRemote(linkID Device_Link, flags Flags, timeout, lockTimeout time.Duration) error {
	return c.genericCall(procDeviceRemote, linkID, flags, timeout, lockTimeout)
}

// DeviceLocal performs device_local (proc 17).
func (c *CoreChannel) DeviceLocal(linkID Device_Link, flags Flags, timeout, lockTimeout time.Duration) error {
	return c.genericCall(procDeviceLocal, linkID, flags, timeout, lockTimeout)
}

// DeviceLock performs device_lock (proc 18). With FlagWaitLock set, the
// device blocks up to lockTimeout for a contended lock instead of
// returning LockedByAnother immediately.
func (c *CoreChannel) DeviceLock(linkID Device_Link, flags Flags, lockTimeout time.Duration) error {
	args := &DeviceLockParms{
		LinkID:      linkID,
		Flags:       flags,
		LockTimeout: uint32(lockTimeout.Milliseconds()),
	}
	raw, err := c.rpc.Call(procDeviceLock, xdr.Encode(args), lockTimeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}

// DeviceUnlock performs device_unlock (proc 19).
func (c *CoreChannel) DeviceUnlock(linkID Device_Link, timeout time.Duration) error {
	args := &DeviceLinkParms{LinkID: linkID}
	raw, err := c.rpc.Call(procDeviceUnlock, xdr.Encode(args), timeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}

// DeviceEnableSrq performs device_enable_srq (proc 20), arming or
// disarming service request delivery on an already-established
// interrupt channel. handle is echoed back uninterpreted on
// device_intr_srq.
func (c *CoreChannel) DeviceEnableSrq(linkID Device_Link, enable bool, handle []byte, timeout time.Duration) error {
	args := &DeviceEnableSrqParms{LinkID: linkID, Enable: enable, Handle: handle}
	raw, err := c.rpc.Call(procDeviceEnableSrq, xdr.Encode(args), timeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}

// DeviceDocmd performs device_docmd (proc 22), a device-specific
// out-of-band command.
func (c *CoreChannel) DeviceDocmd(linkID Device_Link, cmdCode int32, networkOrder bool, dataSize int32, data []byte, flags Flags, timeout, lockTimeout time.Duration) ([]byte, error) {
	args := &DeviceDocmdParms{
		LinkID:       linkID,
		Flags:        flags,
		Timeout:      uint32(timeout.Milliseconds()),
		LockTimeout:  uint32(lockTimeout.Milliseconds()),
		CmdCode:      cmdCode,
		NetworkOrder: networkOrder,
		DataSize:     dataSize,
		Data:         data,
	}
	raw, err := c.rpc.Call(procDeviceDocmd, xdr.Encode(args), timeout)
	if err != nil {
		return nil, err
	}
	resp := &DeviceDocmdResp{}
	if err := xdr.Decode(raw, resp); err != nil {
		return nil, err
	}
	if err := newDeviceError(resp.Error); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateIntrChan performs create_intr_chan (proc 25), telling the device
// where to connect to deliver service requests.
func (c *CoreChannel) CreateIntrChan(hostAddr uint32, hostPort uint16, timeout time.Duration) error {
	args := &CreateIntrChanParms{
		HostAddr:   hostAddr,
		HostPort:   uint32(hostPort),
		ProgNum:    intrProgram,
		ProgVers:   intrVersion,
		ProgFamily: intrProtocolTCP,
	}
	raw, err := c.rpc.Call(procCreateIntrChan, xdr.Encode(args), timeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}

// DestroyIntrChan performs destroy_intr_chan (proc 26).
func (c *CoreChannel) DestroyIntrChan(timeout time.Duration) error {
	raw, err := c.rpc.Call(procDestroyIntrChan, nil, timeout)
	if err != nil {
		return err
	}
	result := &DeviceErrorResult{}
	if err := xdr.Decode(raw, result); err != nil {
		return err
	}
	return newDeviceError(result.Error)
}
