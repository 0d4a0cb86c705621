package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTestCPU builds a CPU wired to a fresh Bus, with PC repointed at the
// start of RAM so tests can write a tiny program directly without a BIOS
// image.
func newTestCPU(t *testing.T) *CPU {
	t.Helper()
	bios, err := NewBIOS(make([]byte, BIOS_SIZE))
	if err != nil {
		t.Fatal(err)
	}
	bus := NewBus(bios, NewGpuMsgSink())
	cpu := NewCPU(bus)
	cpu.PC = 0
	cpu.NextPC = 4
	return cpu
}

func encodeI(op, rs, rt uint32, imm uint16) uint32 {
	return (op << 26) | (rs << 21) | (rt << 16) | uint32(imm)
}

func encodeR(rs, rt, rd, shift, funct uint32) uint32 {
	return (rs << 21) | (rt << 16) | (rd << 11) | (shift << 6) | funct
}

func encodeJ(op, target uint32) uint32 {
	return (op << 26) | (target >> 2)
}

func (cpu *CPU) loadProgram(words ...uint32) {
	for i, w := range words {
		cpu.Bus.Store32(uint32(i*4), w)
	}
}

func TestLUIStep(t *testing.T) {
	cpu := newTestCPU(t)
	// lui $t0, 0x13
	cpu.loadProgram(encodeI(0xf, 0, 8, 0x13))

	cpu.Step()

	assert.Equal(t, uint32(4), cpu.PC)
	assert.Equal(t, uint32(8), cpu.NextPC)
	assert.Equal(t, uint32(0x00130000), cpu.Reg(8))
}

func TestLoadDelaySlot(t *testing.T) {
	cpu := newTestCPU(t)
	// seed RAM directly, then:
	// lw $t0, 0x40($zero)  ; loads RAM[0x40] into t0, visible next step
	// addiu $t1, $t0, 0    ; reads the *old* value of t0 (load delay)
	cpu.Bus.Store32(0x40, 0x2a)
	cpu.loadProgram(
		encodeI(0x23, 0, 8, 0x40),
		encodeI(0x9, 8, 9, 0), // addiu $t1, $t0, 0
		encodeI(0x9, 8, 10, 0), // addiu $t2, $t0, 0
	)

	cpu.Step() // lw: schedules load-delay for $t0, $t0 still old (garbage seed) value
	assert.NotEqual(t, uint32(0x2a), cpu.Reg(8))

	cpu.Step() // addiu reads $t0 before the pending load lands: still stale
	assert.NotEqual(t, uint32(0x2a), cpu.Reg(9))
	assert.Equal(t, uint32(0x2a), cpu.Reg(8)) // lw's value is visible now

	cpu.Step() // addiu now reads the updated $t0
	assert.Equal(t, uint32(0x2a), cpu.Reg(10))
}

func TestBranchDelaySlot(t *testing.T) {
	cpu := newTestCPU(t)
	// beq $zero, $zero, 2      ; always taken, branches to pc+4+2*4
	// addiu $t0, $zero, 1      ; delay slot, always executes
	// addiu $t1, $zero, 2      ; skipped by the branch
	// addiu $t2, $zero, 3      ; branch target
	cpu.loadProgram(
		encodeI(0x4, 0, 0, 2),
		encodeI(0x9, 0, 8, 1),
		encodeI(0x9, 0, 9, 2),
		encodeI(0x9, 0, 10, 3),
	)

	cpu.Step() // beq: schedules the branch
	assert.True(t, cpu.BranchTaken)

	cpu.Step() // delay slot instruction
	assert.True(t, cpu.InDelaySlot)
	assert.Equal(t, uint32(1), cpu.Reg(8))

	cpu.Step() // lands on the branch target, not the skipped instruction
	assert.Equal(t, uint32(3), cpu.Reg(10))
	assert.Equal(t, uint32(9), cpu.Reg(9)) // still the seed value NewCPU gives $t1
}

func TestAddOverflowRaisesException(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Regs[8] = 0x7fffffff
	cpu.outRegs[8] = 0x7fffffff
	// addi $t1, $t0, 1 ; overflows
	cpu.loadProgram(encodeI(0x8, 8, 9, 1))

	cpu.Step()

	// redirected into the general exception vector (BEV clear), $t1 left
	// at its seed value
	assert.Equal(t, uint32(0x80000080), cpu.PC)
	assert.Equal(t, uint32(9), cpu.Reg(9))
	assert.Equal(t, uint32(EXCEPTION_OVERFLOW)<<2, cpu.Cop0.Cause&0x7c)
}

func TestAddiuNoOverflowException(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Regs[8] = 0x7fffffff
	cpu.outRegs[8] = 0x7fffffff
	cpu.loadProgram(encodeI(0x9, 8, 9, 1))

	cpu.Step()

	assert.Equal(t, uint32(4), cpu.PC) // no exception taken
	assert.Equal(t, uint32(0x80000000), cpu.Reg(9))
}

// §9: sub must compute rs - rt, not rs - rs
func TestSubComputesRsMinusRt(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Regs[8] = 10
	cpu.outRegs[8] = 10
	cpu.Regs[9] = 3
	cpu.outRegs[9] = 3
	// sub $t2, $t0, $t1
	cpu.loadProgram(encodeR(8, 9, 10, 0, 0x22))

	cpu.Step()

	assert.Equal(t, uint32(7), cpu.Reg(10))
}

func TestDivideByZero(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Regs[8] = 5
	cpu.outRegs[8] = 5
	// div $t0, $zero
	cpu.loadProgram(encodeR(8, 0, 0, 0, 0x1a))

	cpu.Step()

	assert.Equal(t, uint32(5), cpu.HI)
	assert.Equal(t, uint32(0xffffffff), cpu.LO)
}

func TestLwlLwrRoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Bus.Store32(0x40, 0x12345678)

	// lwl $t0, 0x43($zero)   ; addr&3==3, takes the whole aligned word
	// lwr $t0, 0x40($zero)   ; addr&3==0, takes the whole aligned word too
	cpu.loadProgram(
		encodeI(0x22, 0, 8, 0x43),
		encodeI(0x26, 0, 8, 0x40),
	)

	cpu.Step()
	cpu.Step() // load-delay lands
	assert.Equal(t, uint32(0x12345678), cpu.Reg(8))

	cpu.Step() // lwr's own load-delay lands
	assert.Equal(t, uint32(0x12345678), cpu.Reg(8))
}

func TestMTC0AndMFC0RoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Regs[8] = 0x00000401
	cpu.outRegs[8] = 0x00000401
	// mtc0 $t0, $12 (SR)
	// mfc0 $t1, $12 (SR), result visible one step later (load-delay)
	cpu.loadProgram(
		0b010000<<26|0b00100<<21|8<<16|12<<11,
		0b010000<<26|0b00000<<21|9<<16|12<<11,
	)

	cpu.Step()
	assert.Equal(t, uint32(0x00000401), cpu.Cop0.SR)

	cpu.Step()
	cpu.Step() // load-delay slot lands

	assert.Equal(t, uint32(0x00000401), cpu.Reg(9))
}
