package vxi11

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsHas(t *testing.T) {
	f := FlagWaitLock | FlagTermCharSet
	assert.True(t, f.Has(FlagWaitLock))
	assert.True(t, f.Has(FlagTermCharSet))
	assert.False(t, f.Has(FlagEnd))
	assert.True(t, f.Has(FlagWaitLock|FlagTermCharSet))
}

func TestFlagsZeroHasNothing(t *testing.T) {
	var f Flags
	assert.False(t, f.Has(FlagEnd))
}
