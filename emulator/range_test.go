package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeContains(t *testing.T) {
	r := NewRange(0x1f801080, 0x80)

	assert.True(t, r.Contains(0x1f801080))
	assert.True(t, r.Contains(0x1f8010ff))
	assert.False(t, r.Contains(0x1f801100))
	assert.False(t, r.Contains(0x1f80107f))
}

func TestRangeContainsAndOffset(t *testing.T) {
	r := RAM_RANGE

	ok, offset := r.ContainsAndOffset(0x100)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x100), offset)

	ok, _ = r.ContainsAndOffset(0x1f000000)
	assert.False(t, ok)
}
