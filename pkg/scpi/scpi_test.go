package scpi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice is a Device double recording writes and replaying queued
// reads, in order.
type fakeDevice struct {
	writes  []string
	reads   []string
	readErr error
}

func (f *fakeDevice) Write(data []byte, _ uint32) (uint32, error) {
	f.writes = append(f.writes, string(data))
	return uint32(len(data)), nil
}

func (f *fakeDevice) Read() ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.reads) == 0 {
		return nil, errors.New("fakeDevice: no queued read")
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	return []byte(r), nil
}

func TestSendAppendsTerminator(t *testing.T) {
	dev := &fakeDevice{}
	inst := New(dev)

	require.NoError(t, inst.Send("*RST"))
	assert.Equal(t, []string{"*RST\n"}, dev.writes)
}

func TestSendPreservesExistingTerminator(t *testing.T) {
	dev := &fakeDevice{}
	inst := New(dev)

	require.NoError(t, inst.Send("*RST\n"))
	assert.Equal(t, []string{"*RST\n"}, dev.writes)
}

func TestQueryTrimsTerminator(t *testing.T) {
	dev := &fakeDevice{reads: []string{"KEYSIGHT,DSOX,1234,1.0\n"}}
	inst := New(dev)

	resp, err := inst.Query("*IDN?")
	require.NoError(t, err)
	assert.Equal(t, "KEYSIGHT,DSOX,1234,1.0", resp)
	assert.Equal(t, []string{"*IDN?\n"}, dev.writes)
}

func TestStatusByteDecodesBits(t *testing.T) {
	dev := &fakeDevice{reads: []string{"81\n"}} // 0b01010001: request-service + message-available + trigger
	inst := New(dev)

	sb, err := inst.StatusByte()
	require.NoError(t, err)
	assert.True(t, sb.IsTriggered())
	assert.True(t, sb.IsMessageAvailable())
	assert.True(t, sb.IsRequestingService())
	assert.False(t, sb.IsEventSummary())
}

func TestEventStatusByteDecodesBits(t *testing.T) {
	dev := &fakeDevice{reads: []string{"33\n"}} // 0b00100001: command-error + operation-complete
	inst := New(dev)

	esb, err := inst.EventStatusByte()
	require.NoError(t, err)
	assert.True(t, esb.IsCommandError())
	assert.True(t, esb.IsOperationComplete())
	assert.False(t, esb.IsQueryError())
	assert.False(t, esb.IsDeviceError())
}

func TestSetEventMaskFormatsCommand(t *testing.T) {
	dev := &fakeDevice{}
	inst := New(dev)

	require.NoError(t, inst.SetEventMask(60))
	assert.Equal(t, []string{"*ESE 60\n"}, dev.writes)
}

func TestSetServiceMaskFormatsCommand(t *testing.T) {
	dev := &fakeDevice{}
	inst := New(dev)

	require.NoError(t, inst.SetServiceMask(128))
	assert.Equal(t, []string{"*SRE 128\n"}, dev.writes)
}

func TestQueryPropagatesReadError(t *testing.T) {
	dev := &fakeDevice{readErr: errors.New("boom")}
	inst := New(dev)

	_, err := inst.Query("*IDN?")
	assert.Error(t, err)
}
