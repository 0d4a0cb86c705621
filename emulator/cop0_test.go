package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnterExceptionPushesModeStack(t *testing.T) {
	cop := NewCop0()
	cop.SetSR(0b100001) // IEc=1, KUo=1, rest zero

	handler := cop.EnterException(EXCEPTION_SYSCALL, 0x1000, false)

	assert.Equal(t, uint32(0x80000080), handler)
	assert.Equal(t, uint32(0x1000), cop.Epc)
	assert.Equal(t, uint32(EXCEPTION_SYSCALL)<<2, cop.Cause&0x7c)
	// old (IEc, KUc) pair shifted up, new bottom pair cleared (interrupts
	// disabled, kernel mode)
	assert.Equal(t, uint32(0b100001<<2)&0x3f, cop.SR&0x3f)
}

func TestEnterExceptionUsesBootHandlerWhenBEVSet(t *testing.T) {
	cop := NewCop0()
	cop.SetSR(1 << 22)

	handler := cop.EnterException(EXCEPTION_BREAK, 0x2000, false)

	assert.Equal(t, uint32(0xbfc00180), handler)
}

func TestEnterExceptionInDelaySlotBacksUpEpcAndSetsCauseBit31(t *testing.T) {
	cop := NewCop0()

	cop.EnterException(EXCEPTION_OVERFLOW, 0x3000, true)

	assert.Equal(t, uint32(0x2ffc), cop.Epc)
	assert.NotZero(t, cop.Cause&(1<<31))
}

// §9: rfe preserves the top two (kuo/ieo) bits of the mode stack instead of
// zeroing them, diverging from a naive `mode >> 2`
func TestReturnFromExceptionPreservesTopModeBits(t *testing.T) {
	cop := NewCop0()
	cop.SetSR(0b110101)

	cop.ReturnFromException()

	assert.Equal(t, uint32(0b111101), cop.SR&0x3f)
}

func TestCacheIsolated(t *testing.T) {
	cop := NewCop0()
	assert.False(t, cop.CacheIsolated())

	cop.SetSR(0x10000)
	assert.True(t, cop.CacheIsolated())
}
