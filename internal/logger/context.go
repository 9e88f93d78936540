package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds session-scoped logging context: the correlation ID for a
// VXI-11 session plus the RPC call currently in flight on it.
type LogContext struct {
	TraceID   string // session correlation ID, minted with github.com/rs/xid
	Device    string // device string, e.g. "inst0"
	LinkID    int32  // VXI-11 link id, once create_link has returned
	Procedure string // RPC procedure name currently being issued
	ClientIP  string // remote host (without port)
	StartTime time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given peer address.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		Device:    lc.Device,
		LinkID:    lc.LinkID,
		Procedure: lc.Procedure,
		ClientIP:  lc.ClientIP,
		StartTime: lc.StartTime,
	}
}

// WithProcedure returns a copy with the procedure set
func (lc *LogContext) WithProcedure(procedure string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Procedure = procedure
	}
	return clone
}

// WithLink returns a copy with the link id and device set
func (lc *LogContext) WithLink(linkID int32, device string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.LinkID = linkID
		clone.Device = device
	}
	return clone
}

// WithTrace returns a copy with the correlation ID set
func (lc *LogContext) WithTrace(traceID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
