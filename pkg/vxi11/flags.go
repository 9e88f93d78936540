package vxi11

// Flags is the VXI-11 device flag bitfield, passed on most Core channel
// calls. Only the bits this client's callers actually need to set are
// named; unnamed bits are preserved if set directly on a Flags value.
type Flags int32

const (
	// FlagWaitLock (bit 0): if set, a lock-contention call blocks up to
	// lock_timeout instead of failing immediately with LockedByAnother.
	FlagWaitLock Flags = 1 << 0

	// FlagEnd (bit 3): marks this device_write as terminating a message.
	FlagEnd Flags = 1 << 3

	// FlagTermCharSet (bit 7): termChar is meaningful on this
	// device_read.
	FlagTermCharSet Flags = 1 << 7
)

// Has reports whether all bits of other are set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// deviceReadReason is the bitmask carried in a Device_ReadResp.
type deviceReadReason int32

const (
	reasonReqCnt deviceReadReason = 1 << 0 // requested size reached
	reasonChr    deviceReadReason = 1 << 1 // terminator character received
	reasonEnd    deviceReadReason = 1 << 2 // message terminator
)
