package xdr

import (
	"errors"
	"fmt"
)

// MalformedXdrError reports a violation of the XDR wire contract: a length
// prefix that runs past the remaining bytes, a non-zero padding byte, or an
// enumeration tag outside its declared value set.
type MalformedXdrError struct {
	Reason string
}

func (e *MalformedXdrError) Error() string {
	return fmt.Sprintf("malformed xdr: %s", e.Reason)
}

func newMalformed(format string, args ...any) error {
	return &MalformedXdrError{Reason: fmt.Sprintf(format, args...)}
}

// IsMalformed reports whether err is (or wraps) a MalformedXdrError.
func IsMalformed(err error) bool {
	var me *MalformedXdrError
	return errors.As(err, &me)
}
