package vxi11

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeString(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{ErrNoError, "no error"},
		{ErrSyntax, "syntax error"},
		{ErrInvalidLinkID, "invalid link identifier"},
		{ErrChannelNotEstablished, "channel not established"},
		{ErrLockedByAnother, "device locked by another link"},
		{ErrIOTimeout, "I/O timeout"},
		{ErrAborted, "aborted"},
		{ErrChannelAlreadyEstablished, "channel already established"},
		{errDevOutputBufFull, "device output buffer full"},
		{ErrorCode(99), "unknown error code 99"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.code.String())
	}
}

func TestNewDeviceErrorNilOnZero(t *testing.T) {
	assert.NoError(t, newDeviceError(0))
}

func TestNewDeviceErrorWrapsCode(t *testing.T) {
	err := newDeviceError(11)
	require.Error(t, err)
	assert.True(t, IsErrorCode(err, ErrLockedByAnother))
	assert.False(t, IsErrorCode(err, ErrIOTimeout))
	assert.Contains(t, err.Error(), "device locked by another link")
}

func TestNewDeviceErrorPreservesUnknownCode(t *testing.T) {
	err := newDeviceError(200)
	require.Error(t, err)
	var de *DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrorCode(200), de.Code)
}

func TestDevOutputBufFullError(t *testing.T) {
	err := newDevOutputBufFullError()
	assert.True(t, IsErrorCode(err, errDevOutputBufFull))
	assert.Contains(t, err.Error(), "output buffer full")
}
