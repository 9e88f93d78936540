package transport

import "fmt"

// TooLargeError is returned when a stream record would exceed the maximum
// logical record size this client is willing to buffer.
type TooLargeError struct {
	Length uint32
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("transport: record length %d exceeds maximum %d", e.Length, maxRecordSize)
}

// UnexpectedEOFError is returned when a stream connection closes partway
// through a fragment header or fragment payload.
type UnexpectedEOFError struct {
	Reason string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("transport: unexpected eof: %s", e.Reason)
}

// IsTimeout reports whether err is a network timeout, the stable predicate
// the session facade needs to tell "need more reads" from "give up".
func IsTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
