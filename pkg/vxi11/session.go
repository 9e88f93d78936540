package vxi11

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/marmos91/vxi11/internal/logger"
	"github.com/marmos91/vxi11/internal/portmap"
	"github.com/marmos91/vxi11/pkg/metrics"
)

// activeLinks counts links currently established across every Session
// in this process, for the SetActiveLinks gauge -- a single session's
// own create_link/destroy_link pair isn't enough to report a gauge
// that's meant to reflect total concurrent links under one metrics sink.
var activeLinks atomic.Int32

// defaultTermChar, defaultReqSize and defaultFlags are the §4.10 connect
// defaults: '\n' termination, TERMCHAR_SET armed, 512-byte read chunks.
const (
	defaultTermChar byte   = '\n'
	defaultReqSize  uint32 = 512
	defaultFlags    Flags  = FlagTermCharSet
)

// Options configures Connect. A zero Options uses every §4.10 default.
type Options struct {
	ClientID       int32
	LockDevice     bool
	Device         string // defaults to "inst0"
	IOTimeout      time.Duration
	LockTimeout    time.Duration
	TermChar       byte
	RequestSize    uint32
	Flags          Flags
	EnableIntrChan bool
	IntrLocalAddr  string // local bind address for the interrupt listener

	// Metrics is optional; a nil value disables instrumentation with no
	// overhead beyond a nil check per call.
	Metrics metrics.CoreMetrics
}

func (o Options) withDefaults() Options {
	if o.Device == "" {
		o.Device = "inst0"
	}
	if o.IOTimeout == 0 {
		o.IOTimeout = 10 * time.Second
	}
	if o.LockTimeout == 0 {
		o.LockTimeout = 10 * time.Second
	}
	if o.TermChar == 0 {
		o.TermChar = defaultTermChar
	}
	if o.RequestSize == 0 {
		o.RequestSize = defaultReqSize
	}
	if o.Flags == 0 {
		o.Flags = defaultFlags
	}
	if o.IntrLocalAddr == "" {
		o.IntrLocalAddr = ":0"
	}
	return o
}

// Session is the facade over a single VXI-11 instrument connection: the
// Core channel plus the optional Abort and Interrupt channels, bound to
// one link id. It is not safe for concurrent use except for calling
// Abort from a second goroutine to cancel an in-flight Core operation,
// per the resource model.
type Session struct {
	opts        Options
	core        *CoreChannel
	abort       *AbortChannel
	intr        *InterruptChannel
	linkID      Device_Link
	maxRecvSize uint32          // from create_link; caps device_write fragment size (§3 invariant #4)
	ctx         context.Context // carries the session's LogContext (trace id, device, link id)
	linkCounted bool            // true once Connect has incremented the activeLinks gauge
}

// Connect performs the §4.10 connection sequence: Portmap lookup of the
// Core channel's port, create_link, and a best-effort Abort channel
// connection. Every call is logged against a session-scoped trace id so
// a multi-instrument deployment's logs can be correlated per session.
func Connect(ip string, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	lc := logger.NewLogContext(ip).WithTrace(xid.New().String())
	ctx := logger.WithContext(context.Background(), lc)

	pm, err := portmap.DialTCP(net.JoinHostPort(ip, "111"), opts.IOTimeout)
	if err != nil {
		return nil, fmt.Errorf("vxi11: connect: portmap dial: %w", err)
	}
	defer pm.Close()

	port, err := pm.GetPort(Program, CoreVersion, portmap.ProtoTCP, opts.IOTimeout)
	if err != nil {
		return nil, fmt.Errorf("vxi11: connect: portmap getport: %w", err)
	}
	if port == 0 {
		return nil, newPortMapLookupError(ip)
	}

	coreAddr := net.JoinHostPort(ip, fmt.Sprintf("%d", port))
	core, err := DialCoreChannel(coreAddr, opts.IOTimeout)
	if err != nil {
		return nil, fmt.Errorf("vxi11: connect: core channel dial: %w", err)
	}

	link, err := core.CreateLink(opts.ClientID, opts.LockDevice, opts.LockTimeout, opts.Device, opts.IOTimeout)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("vxi11: connect: create_link: %w", err)
	}

	lc = lc.WithLink(int32(link.LinkID), opts.Device)
	ctx = logger.WithContext(ctx, lc)
	logger.InfoCtx(ctx, "link established", logger.KeyLocalAddr, coreAddr)

	sess := &Session{opts: opts, core: core, linkID: link.LinkID, maxRecvSize: link.MaxRecvSize, ctx: ctx}
	if opts.Metrics != nil {
		opts.Metrics.RecordLinkEstablished()
		opts.Metrics.SetActiveLinks(activeLinks.Add(1))
		sess.linkCounted = true
	}

	if link.AbortPort != 0 {
		abortAddr := net.JoinHostPort(ip, fmt.Sprintf("%d", link.AbortPort))
		abortChan, err := DialAbortChannel(abortAddr, opts.IOTimeout)
		if err != nil {
			logger.WarnCtx(ctx, "abort channel unavailable, continuing without it", logger.KeyLocalAddr, abortAddr, logger.KeyError, err)
		} else {
			sess.abort = abortChan
		}
	}

	return sess, nil
}

// LinkID returns the session's link identifier.
func (s *Session) LinkID() Device_Link {
	return s.linkID
}

// MaxRecvSize returns the server-advertised maximum device_write
// fragment size, recorded from create_link's response.
func (s *Session) MaxRecvSize() uint32 {
	return s.maxRecvSize
}

// Write chunks data into fragments no larger than maxFragment and
// writes them via device_write, setting FlagEnd only on the final
// fragment. maxFragment == 0 defaults to the link's MaxRecvSize (§3
// invariant #4: a device_write fragment must never exceed it).
func (s *Session) Write(data []byte, maxFragment uint32) (uint32, error) {
	if maxFragment == 0 {
		maxFragment = s.maxRecvSize
	}
	start := time.Now()
	n, err := s.core.DeviceWrite(s.linkID, data, s.opts.Flags|FlagEnd, s.opts.IOTimeout, s.opts.LockTimeout, maxFragment)
	s.recordCall("device_write", start, err)
	if err == nil && s.opts.Metrics != nil {
		s.opts.Metrics.RecordBytesTransferred("write", uint64(n))
	}
	return n, err
}

// Read performs device_read, repeating calls until the device reports
// END, the terminator character, or that the request size is satisfied,
// per §4.7. A reply reporting none of these and no error fails with
// DevOutputBufFull.
func (s *Session) Read() ([]byte, error) {
	start := time.Now()
	data, err := s.core.DeviceRead(s.linkID, s.opts.RequestSize, s.opts.Flags, s.opts.TermChar, s.opts.IOTimeout, s.opts.LockTimeout)
	s.recordCall("device_read", start, err)
	if err == nil && s.opts.Metrics != nil {
		s.opts.Metrics.RecordBytesTransferred("read", uint64(len(data)))
	}
	return data, err
}

// recordCall reports a completed Core channel call to the session's
// metrics sink, if one is configured.
func (s *Session) recordCall(procedure string, start time.Time, err error) {
	if s.opts.Metrics == nil {
		return
	}
	errorCode := ""
	var de *DeviceError
	if err != nil {
		errorCode = "error"
		if ok := asDeviceError(err, &de); ok {
			errorCode = de.Code.String()
		}
	}
	s.opts.Metrics.RecordCall(procedure, time.Since(start), errorCode)
}

func asDeviceError(err error, target **DeviceError) bool {
	de, ok := err.(*DeviceError)
	if ok {
		*target = de
	}
	return ok
}

// ReadStb reads the device's status byte.
func (s *Session) ReadStb() (byte, error) {
	return s.core.DeviceReadStb(s.linkID, s.opts.IOTimeout)
}

// Trigger, Clear, Remote and Local forward directly to the Core channel.
func (s *Session) Trigger() error {
	return s.core.DeviceTrigger(s.linkID, s.opts.Flags, s.opts.IOTimeout, s.opts.LockTimeout)
}

func (s *Session) Clear() error {
	return s.core.DeviceClear(s.linkID, s.opts.Flags, s.opts.IOTimeout, s.opts.LockTimeout)
}

func (s *Session) Remote() error {
	return s.core.DeviceRemote(s.linkID, s.opts.Flags, s.opts.IOTimeout, s.opts.LockTimeout)
}

func (s *Session) Local() error {
	return s.core.DeviceLocal(s.linkID, s.opts.Flags, s.opts.IOTimeout, s.opts.LockTimeout)
}

// Lock acquires the device lock, blocking up to LockTimeout if
// FlagWaitLock is set in the session's flags.
func (s *Session) Lock() error {
	return s.core.DeviceLock(s.linkID, s.opts.Flags, s.opts.LockTimeout)
}

// Unlock releases a previously acquired lock.
func (s *Session) Unlock() error {
	return s.core.DeviceUnlock(s.linkID, s.opts.IOTimeout)
}

// Docmd issues a device-specific out-of-band command.
func (s *Session) Docmd(cmdCode int32, networkOrder bool, dataSize int32, data []byte) ([]byte, error) {
	return s.core.DeviceDocmd(s.linkID, cmdCode, networkOrder, dataSize, data, s.opts.Flags, s.opts.IOTimeout, s.opts.LockTimeout)
}

// Abort cancels an in-flight Core channel operation by invoking
// device_abort on the Abort channel. It is safe to call concurrently
// with an in-progress Read or Write. Returns ErrChannelNotEstablished if
// the Abort channel could not be connected at Connect time.
func (s *Session) Abort() error {
	if s.abort == nil {
		return &DeviceError{Code: ErrChannelNotEstablished}
	}
	return s.abort.DeviceAbort(s.linkID, s.opts.IOTimeout)
}

// EnableInterrupts establishes the Interrupt channel: binds a local
// listener, sends create_intr_chan naming it, and accepts the device's
// connection. Subsequent service requests are delivered via
// NextInterrupt. handle is the opaque value device_intr_srq will echo
// back.
func (s *Session) EnableInterrupts(handle []byte) error {
	intr, err := ListenInterruptChannel(s.opts.IntrLocalAddr)
	if err != nil {
		return err
	}

	addr := intr.Addr()
	hostAddr, err := ipv4ToUint32(addr.IP)
	if err != nil {
		intr.Close()
		return err
	}

	if err := s.core.CreateIntrChan(hostAddr, uint16(addr.Port), s.opts.IOTimeout); err != nil {
		intr.Close()
		return err
	}

	if _, err := intr.Accept(); err != nil {
		intr.Close()
		return err
	}

	if err := s.core.DeviceEnableSrq(s.linkID, true, handle, s.opts.IOTimeout); err != nil {
		intr.Close()
		return err
	}

	s.intr = intr
	return nil
}

// NextInterrupt blocks for the next service request delivered on the
// Interrupt channel.
func (s *Session) NextInterrupt(timeout time.Duration) ([]byte, bool) {
	if s.intr == nil {
		return nil, false
	}
	handle, ok := s.intr.NextInterrupt(timeout)
	if ok && s.opts.Metrics != nil {
		s.opts.Metrics.RecordInterrupt()
	}
	return handle, ok
}

// DisableInterrupts disarms service requests and tears down the
// Interrupt channel.
func (s *Session) DisableInterrupts() error {
	if s.intr == nil {
		return nil
	}
	err := s.core.DeviceEnableSrq(s.linkID, false, nil, s.opts.IOTimeout)
	closeErr := s.intr.Close()
	s.intr = nil
	if err != nil {
		return err
	}
	return closeErr
}

func ipv4ToUint32(ip net.IP) (uint32, error) {
	v4 := ip.To4()
	if v4 == nil {
		return 0, fmt.Errorf("vxi11: address %s is not IPv4", ip)
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), nil
}

// Close destroys the link and releases every socket the session holds.
// Per §5, destroy_link failures are swallowed: there is nothing
// meaningful a caller can do with them at drop time.
func (s *Session) Close() error {
	if s.intr != nil {
		_ = s.core.DeviceEnableSrq(s.linkID, false, nil, s.opts.IOTimeout)
		_ = s.intr.Close()
	}
	_ = s.core.DestroyLink(s.linkID, s.opts.IOTimeout)
	if s.ctx != nil {
		logger.InfoCtx(s.ctx, "link destroyed")
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordLinkDestroyed()
		if s.linkCounted {
			s.opts.Metrics.SetActiveLinks(activeLinks.Add(-1))
		}
	}
	if s.abort != nil {
		_ = s.abort.Close()
	}
	return s.core.Close()
}
