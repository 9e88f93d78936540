package vxi11

import "github.com/marmos91/vxi11/internal/xdr"

// Device_Link is the opaque link identifier a device hands back from
// create_link and that every subsequent Core call must present.
type Device_Link int32

// CreateLinkParms is the create_link (proc 10) argument.
type CreateLinkParms struct {
	ClientID     int32
	LockDevice   bool
	LockTimeout  uint32
	Device       string
}

func (p *CreateLinkParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(p.ClientID)
	e.WriteBool(p.LockDevice)
	e.WriteUint32(p.LockTimeout)
	e.WriteString(p.Device)
}

func (p *CreateLinkParms) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if p.ClientID, err = d.ReadInt32(); err != nil {
		return err
	}
	if p.LockDevice, err = d.ReadBool(); err != nil {
		return err
	}
	if p.LockTimeout, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.Device, err = d.ReadString(); err != nil {
		return err
	}
	return nil
}

// CreateLinkResp is the create_link (proc 10) result.
type CreateLinkResp struct {
	Error       int32
	LinkID      Device_Link
	AbortPort   uint16
	MaxRecvSize uint32
}

func (r *CreateLinkResp) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(r.Error)
	e.WriteInt32(int32(r.LinkID))
	e.WriteUint32(uint32(r.AbortPort))
	e.WriteUint32(r.MaxRecvSize)
}

func (r *CreateLinkResp) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if r.Error, err = d.ReadInt32(); err != nil {
		return err
	}
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	r.LinkID = Device_Link(linkID)
	port, err := d.ReadUint32()
	if err != nil {
		return err
	}
	r.AbortPort = uint16(port)
	if r.MaxRecvSize, err = d.ReadUint32(); err != nil {
		return err
	}
	return nil
}

// DeviceWriteParms is the device_write (proc 11) argument. Data is a
// single fragment; the caller chunks a larger payload across multiple
// calls, setting Flags&FlagEnd only on the final one.
type DeviceWriteParms struct {
	LinkID  Device_Link
	Timeout uint32
	LockTimeout uint32
	Flags   Flags
	Data    []byte
}

func (p *DeviceWriteParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(int32(p.LinkID))
	e.WriteUint32(p.Timeout)
	e.WriteUint32(p.LockTimeout)
	e.WriteInt32(int32(p.Flags))
	e.WriteOpaque(p.Data)
}

func (p *DeviceWriteParms) UnmarshalXDR(d *xdr.Decoder) error {
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.LinkID = Device_Link(linkID)
	if p.Timeout, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.LockTimeout, err = d.ReadUint32(); err != nil {
		return err
	}
	flags, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.Flags = Flags(flags)
	if p.Data, err = d.ReadOpaque(); err != nil {
		return err
	}
	return nil
}

// DeviceWriteResp is the device_write (proc 11) result.
type DeviceWriteResp struct {
	Error int32
	Size  uint32
}

func (r *DeviceWriteResp) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(r.Error)
	e.WriteUint32(r.Size)
}

func (r *DeviceWriteResp) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if r.Error, err = d.ReadInt32(); err != nil {
		return err
	}
	if r.Size, err = d.ReadUint32(); err != nil {
		return err
	}
	return nil
}

// DeviceReadParms is the device_read (proc 12) argument.
type DeviceReadParms struct {
	LinkID      Device_Link
	RequestSize uint32
	Timeout     uint32
	LockTimeout uint32
	Flags       Flags
	TermChar    byte
}

func (p *DeviceReadParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(int32(p.LinkID))
	e.WriteUint32(p.RequestSize)
	e.WriteUint32(p.Timeout)
	e.WriteUint32(p.LockTimeout)
	e.WriteInt32(int32(p.Flags))
	e.WriteInt32(int32(p.TermChar))
}

func (p *DeviceReadParms) UnmarshalXDR(d *xdr.Decoder) error {
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.LinkID = Device_Link(linkID)
	if p.RequestSize, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.Timeout, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.LockTimeout, err = d.ReadUint32(); err != nil {
		return err
	}
	flags, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.Flags = Flags(flags)
	term, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.TermChar = byte(term)
	return nil
}

// DeviceReadResp is the device_read (proc 12) result. Reason is the
// bitmask described by reasonReqCnt/reasonChr/reasonEnd.
type DeviceReadResp struct {
	Error  int32
	Reason deviceReadReason
	Data   []byte
}

func (r *DeviceReadResp) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(r.Error)
	e.WriteInt32(int32(r.Reason))
	e.WriteOpaque(r.Data)
}

func (r *DeviceReadResp) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if r.Error, err = d.ReadInt32(); err != nil {
		return err
	}
	reason, err := d.ReadInt32()
	if err != nil {
		return err
	}
	r.Reason = deviceReadReason(reason)
	if r.Data, err = d.ReadOpaque(); err != nil {
		return err
	}
	return nil
}

// DeviceGenericParms is the shared argument shape of device_trigger,
// device_clear, device_remote and device_local.
type DeviceGenericParms struct {
	LinkID      Device_Link
	Flags       Flags
	LockTimeout uint32
	Timeout     uint32
}

func (p *DeviceGenericParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(int32(p.LinkID))
	e.WriteInt32(int32(p.Flags))
	e.WriteUint32(p.LockTimeout)
	e.WriteUint32(p.Timeout)
}

func (p *DeviceGenericParms) UnmarshalXDR(d *xdr.Decoder) error {
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.LinkID = Device_Link(linkID)
	flags, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.Flags = Flags(flags)
	if p.LockTimeout, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.Timeout, err = d.ReadUint32(); err != nil {
		return err
	}
	return nil
}

// DeviceErrorResult is the bare-error result shape shared by device_trigger,
// device_clear, device_remote, device_local, device_lock, device_unlock,
// device_enable_srq and destroy_link.
type DeviceErrorResult struct {
	Error int32
}

func (r *DeviceErrorResult) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(r.Error)
}

func (r *DeviceErrorResult) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	r.Error, err = d.ReadInt32()
	return err
}

// DeviceLinkParms is the bare-link argument shared by destroy_link and
// device_read_stb.
type DeviceLinkParms struct {
	LinkID Device_Link
}

func (p *DeviceLinkParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(int32(p.LinkID))
}

func (p *DeviceLinkParms) UnmarshalXDR(d *xdr.Decoder) error {
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.LinkID = Device_Link(linkID)
	return nil
}

// DeviceReadStbResp is the device_read_stb (proc 13) result.
type DeviceReadStbResp struct {
	Error int32
	STB   byte
}

func (r *DeviceReadStbResp) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(r.Error)
	e.WriteInt32(int32(r.STB))
}

func (r *DeviceReadStbResp) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if r.Error, err = d.ReadInt32(); err != nil {
		return err
	}
	stb, err := d.ReadInt32()
	if err != nil {
		return err
	}
	r.STB = byte(stb)
	return nil
}

// DeviceLockParms is the device_lock (proc 18) argument.
type DeviceLockParms struct {
	LinkID      Device_Link
	Flags       Flags
	LockTimeout uint32
}

func (p *DeviceLockParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(int32(p.LinkID))
	e.WriteInt32(int32(p.Flags))
	e.WriteUint32(p.LockTimeout)
}

func (p *DeviceLockParms) UnmarshalXDR(d *xdr.Decoder) error {
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.LinkID = Device_Link(linkID)
	flags, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.Flags = Flags(flags)
	if p.LockTimeout, err = d.ReadUint32(); err != nil {
		return err
	}
	return nil
}

// DeviceEnableSrqParms is the device_enable_srq (proc 20) argument.
type DeviceEnableSrqParms struct {
	LinkID  Device_Link
	Enable  bool
	Handle  []byte
}

func (p *DeviceEnableSrqParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(int32(p.LinkID))
	e.WriteBool(p.Enable)
	e.WriteOpaque(p.Handle)
}

func (p *DeviceEnableSrqParms) UnmarshalXDR(d *xdr.Decoder) error {
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.LinkID = Device_Link(linkID)
	if p.Enable, err = d.ReadBool(); err != nil {
		return err
	}
	if p.Handle, err = d.ReadOpaque(); err != nil {
		return err
	}
	return nil
}

// DeviceDocmdParms is the device_docmd (proc 22) argument.
type DeviceDocmdParms struct {
	LinkID      Device_Link
	Flags       Flags
	Timeout     uint32
	LockTimeout uint32
	CmdCode     int32
	NetworkOrder bool
	DataSize    int32
	Data        []byte
}

func (p *DeviceDocmdParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(int32(p.LinkID))
	e.WriteInt32(int32(p.Flags))
	e.WriteUint32(p.Timeout)
	e.WriteUint32(p.LockTimeout)
	e.WriteInt32(p.CmdCode)
	e.WriteBool(p.NetworkOrder)
	e.WriteInt32(p.DataSize)
	e.WriteOpaque(p.Data)
}

func (p *DeviceDocmdParms) UnmarshalXDR(d *xdr.Decoder) error {
	linkID, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.LinkID = Device_Link(linkID)
	flags, err := d.ReadInt32()
	if err != nil {
		return err
	}
	p.Flags = Flags(flags)
	if p.Timeout, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.LockTimeout, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.CmdCode, err = d.ReadInt32(); err != nil {
		return err
	}
	if p.NetworkOrder, err = d.ReadBool(); err != nil {
		return err
	}
	if p.DataSize, err = d.ReadInt32(); err != nil {
		return err
	}
	if p.Data, err = d.ReadOpaque(); err != nil {
		return err
	}
	return nil
}

// DeviceDocmdResp is the device_docmd (proc 22) result.
type DeviceDocmdResp struct {
	Error int32
	Data  []byte
}

func (r *DeviceDocmdResp) MarshalXDR(e *xdr.Encoder) {
	e.WriteInt32(r.Error)
	e.WriteOpaque(r.Data)
}

func (r *DeviceDocmdResp) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if r.Error, err = d.ReadInt32(); err != nil {
		return err
	}
	if r.Data, err = d.ReadOpaque(); err != nil {
		return err
	}
	return nil
}

// CreateIntrChanParms is the create_intr_chan (proc 25) argument --
// Device_RemoteFunc on the wire -- naming the host and port where the
// client's interrupt channel listener accepts the device's connection.
type CreateIntrChanParms struct {
	HostAddr   uint32
	HostPort   uint32
	ProgNum    uint32
	ProgVers   uint32
	ProgFamily uint32 // TCP=0, UDP=1
}

func (p *CreateIntrChanParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteUint32(p.HostAddr)
	e.WriteUint32(p.HostPort)
	e.WriteUint32(p.ProgNum)
	e.WriteUint32(p.ProgVers)
	e.WriteUint32(p.ProgFamily)
}

func (p *CreateIntrChanParms) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	if p.HostAddr, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.HostPort, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.ProgNum, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.ProgVers, err = d.ReadUint32(); err != nil {
		return err
	}
	if p.ProgFamily, err = d.ReadUint32(); err != nil {
		return err
	}
	return nil
}

// DeviceIntrSrqParms is the device_intr_srq (proc 30) argument the
// device sends on the interrupt channel, carrying the opaque handle
// registered by device_enable_srq.
type DeviceIntrSrqParms struct {
	Handle []byte
}

func (p *DeviceIntrSrqParms) MarshalXDR(e *xdr.Encoder) {
	e.WriteOpaque(p.Handle)
}

func (p *DeviceIntrSrqParms) UnmarshalXDR(d *xdr.Decoder) error {
	var err error
	p.Handle, err = d.ReadOpaque()
	return err
}
