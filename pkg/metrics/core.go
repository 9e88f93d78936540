// Package metrics defines the optional metrics surface VXI-11 sessions
// report through. Every interface here accepts a nil implementation with
// zero overhead, so instrumentation is strictly opt-in.
package metrics

import "time"

// CoreMetrics observes Core channel RPC activity: one call per completed
// procedure call, plus byte counters for device_read/device_write.
//
// Example usage:
//
//	if m := prometheus.NewCoreMetrics(); m != nil {
//		opts.Metrics = m
//	}
//	session, err := vxi11.Connect(ip, opts)
//
//	// Without metrics (pass nil for zero overhead)
//	var m metrics.CoreMetrics
type CoreMetrics interface {
	// RecordCall records a completed Core channel procedure call with its
	// name, duration, and outcome. errorCode is the empty string on
	// success, or the Device_ErrorCode's name on failure.
	RecordCall(procedure string, duration time.Duration, errorCode string)

	// RecordBytesTransferred records bytes moved by device_read or
	// device_write. direction is "read" or "write".
	RecordBytesTransferred(direction string, bytes uint64)

	// RecordLinkEstablished increments the total links created.
	RecordLinkEstablished()

	// RecordLinkDestroyed increments the total links torn down.
	RecordLinkDestroyed()

	// SetActiveLinks updates the current link count.
	SetActiveLinks(count int32)

	// RecordInterrupt records a delivered service request.
	RecordInterrupt()
}

// DiscoveryMetrics observes Portmap broadcast discovery rounds.
type DiscoveryMetrics interface {
	// RecordDiscoveryRound records one CollectPorts call: how many peers
	// replied before the idle deadline ended it.
	RecordDiscoveryRound(repliesReceived int, duration time.Duration)
}
