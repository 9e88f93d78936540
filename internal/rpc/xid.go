package rpc

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
)

// XIDGenerator hands out xids for the calls placed on a single channel. A
// monotonic counter seeded with randomness is enough to satisfy the only
// real requirement: no two concurrently outstanding calls on the same
// channel share an xid. It says nothing about calls on other channels,
// which is fine -- xid uniqueness is scoped per-channel.
type XIDGenerator struct {
	counter uint32
}

// NewXIDGenerator seeds a generator from a cryptographically random start
// value so xids are not predictable across process restarts.
func NewXIDGenerator() *XIDGenerator {
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failing means the platform's entropy source is
		// broken; fall back to a fixed seed rather than panicking, since
		// per-process uniqueness still holds via the counter.
		return &XIDGenerator{counter: 1}
	}
	return &XIDGenerator{counter: binary.BigEndian.Uint32(seed[:])}
}

// Next returns the next xid for this channel.
func (g *XIDGenerator) Next() uint32 {
	return atomic.AddUint32(&g.counter, 1)
}
