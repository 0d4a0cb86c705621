package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOneIfTrue(t *testing.T) {
	assert.Equal(t, uint32(1), oneIfTrue(true))
	assert.Equal(t, uint32(0), oneIfTrue(false))
}

func TestSignExtend(t *testing.T) {
	// 11 bit fields, as used by GPU vertex positions (gp0.go)
	assert.Equal(t, int32(0), signExtend(0, 11))
	assert.Equal(t, int32(1023), signExtend(0x3ff, 11))
	assert.Equal(t, int32(-1), signExtend(0x7ff, 11))
	assert.Equal(t, int32(-1024), signExtend(0x400, 11))

	// 16 bit immediates, as used by ADDI/load/store offsets
	assert.Equal(t, int32(-1), signExtend(0xffff, 16))
	assert.Equal(t, int32(32767), signExtend(0x7fff, 16))
	assert.Equal(t, int32(-32768), signExtend(0x8000, 16))
}
