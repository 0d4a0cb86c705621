package emulator

// CPU implements the MIPS R3000A fetch/decode/execute loop: general purpose
// registers with a load-delay shadow, HI/LO, coprocessor-0, and branch-delay
// tracking. It holds a non-owning reference to the Memory Bus
type CPU struct {
	PC        uint32 // address of the next instruction to fetch
	NextPC    uint32 // address of the instruction after that
	CurrentPC uint32 // address of the instruction currently executing

	Regs    [32]uint32 // committed register file, R0 always zero
	outRegs [32]uint32 // write-back shadow; becomes Regs at the end of the step

	HI, LO uint32

	Cop0 *Cop0
	Bus  *Bus

	BranchTaken bool // did the instruction just executed take a branch?
	InDelaySlot bool // is the instruction about to execute in a delay slot?

	loadReg uint32 // pending load-delay target register
	loadVal uint32 // pending load-delay value

	Debugger *Debugger
}

// NewCPU creates a new CPU state wired to `bus`, with PC at the BIOS entry
// point
func NewCPU(bus *Bus) *CPU {
	cpu := &CPU{
		PC:       0xbfc00000,
		NextPC:   0xbfc00004,
		Bus:      bus,
		Cop0:     NewCop0(),
		Debugger: NewDebugger(),
	}

	// registers are not initialized on real hardware; seed with an
	// identifiable pattern rather than all zeroes
	for i := 0; i < len(cpu.Regs); i++ {
		cpu.Regs[i] = uint32(i)
		cpu.outRegs[i] = uint32(i)
	}
	cpu.Regs[0] = 0
	cpu.outRegs[0] = 0

	return cpu
}

// Reg returns the committed value of register `index`
func (cpu *CPU) Reg(index uint32) uint32 {
	return cpu.Regs[index]
}

// SetReg schedules an immediate write-back of `val` into register `index`.
// Register 0 is always forced back to zero
func (cpu *CPU) SetReg(index, val uint32) {
	cpu.outRegs[index] = val
	cpu.outRegs[0] = 0
}

// setLoadDelay queues `val` to land in `index` at the start of the *next*
// step, modeling the load-delay slot (§4.5, §9)
func (cpu *CPU) setLoadDelay(index, val uint32) {
	cpu.loadReg = index
	cpu.loadVal = val
}

// fetch32 reads an instruction word, bypassing the isolate-cache gate:
// instruction fetch is never redirected away from memory by that bit
func (cpu *CPU) fetch32(addr uint32) uint32 {
	return cpu.Bus.Load32(Physical(addr))
}

// Load32/Load16/Load8 are the CPU-level data-access helpers used by load
// instructions. They honor the isolate-cache bit: while set, they return
// zero without touching the bus at all
func (cpu *CPU) Load32(addr uint32) uint32 {
	cpu.Debugger.CheckRead(addr)
	if cpu.Cop0.CacheIsolated() {
		return 0
	}
	return cpu.Bus.Load32(Physical(addr))
}

func (cpu *CPU) Load16(addr uint32) uint16 {
	cpu.Debugger.CheckRead(addr)
	if cpu.Cop0.CacheIsolated() {
		return 0
	}
	return cpu.Bus.Load16(Physical(addr))
}

func (cpu *CPU) Load8(addr uint32) byte {
	cpu.Debugger.CheckRead(addr)
	if cpu.Cop0.CacheIsolated() {
		return 0
	}
	return cpu.Bus.Load8(Physical(addr))
}

// Store32/Store16/Store8 are the CPU-level data-access helpers used by store
// instructions. While the isolate-cache bit is set they drop the write
// entirely, never reaching the bus (so DMA/GPU traffic is unaffected)
func (cpu *CPU) Store32(addr, val uint32) {
	cpu.Debugger.CheckWrite(addr)
	if cpu.Cop0.CacheIsolated() {
		return
	}
	cpu.Bus.Store32(Physical(addr), val)
}

func (cpu *CPU) Store16(addr uint32, val uint16) {
	cpu.Debugger.CheckWrite(addr)
	if cpu.Cop0.CacheIsolated() {
		return
	}
	cpu.Bus.Store16(Physical(addr), val)
}

func (cpu *CPU) Store8(addr uint32, val byte) {
	cpu.Debugger.CheckWrite(addr)
	if cpu.Cop0.CacheIsolated() {
		return
	}
	cpu.Bus.Store8(Physical(addr), val)
}

// Step runs one fetch/decode/execute cycle, following the 7-step ordering
// that reproduces the branch-delay and load-delay slots
func (cpu *CPU) Step() {
	cpu.CurrentPC = cpu.PC

	if cpu.CurrentPC%4 != 0 {
		cpu.exception(EXCEPTION_LOAD_ADDRESS_ERROR)
		return
	}

	cpu.Debugger.CheckPC(cpu.CurrentPC)

	instruction := Instruction(cpu.fetch32(cpu.CurrentPC))

	cpu.PC = cpu.NextPC
	cpu.NextPC = cpu.PC + 4

	cpu.outRegs[cpu.loadReg] = cpu.loadVal
	cpu.outRegs[0] = 0
	cpu.loadReg = 0
	cpu.loadVal = 0

	cpu.InDelaySlot = cpu.BranchTaken
	cpu.BranchTaken = false

	cpu.decodeAndExecute(instruction)

	cpu.outRegs[0] = 0
	cpu.Regs = cpu.outRegs
}

// exception enters the coprocessor-0 exception handler; the caller must
// return immediately afterwards since the faulting instruction is done
func (cpu *CPU) exception(cause Exception) {
	handler := cpu.Cop0.EnterException(cause, cpu.CurrentPC, cpu.InDelaySlot)
	cpu.PC = handler
	cpu.NextPC = handler + 4
}

func (cpu *CPU) decodeAndExecute(instruction Instruction) {
	switch instruction.Function() {
	case 0b000000:
		cpu.decodeAndExecuteSpecial(instruction)
	case 0b000001:
		cpu.opBXX(instruction)
	case 0b000010:
		cpu.opJ(instruction)
	case 0b000011:
		cpu.opJAL(instruction)
	case 0b000100:
		cpu.opBEQ(instruction)
	case 0b000101:
		cpu.opBNE(instruction)
	case 0b000110:
		cpu.opBLEZ(instruction)
	case 0b000111:
		cpu.opBGTZ(instruction)
	case 0b001000:
		cpu.opADDI(instruction)
	case 0b001001:
		cpu.opADDIU(instruction)
	case 0b001010:
		cpu.opSLTI(instruction)
	case 0b001011:
		cpu.opSLTIU(instruction)
	case 0b001100:
		cpu.opANDI(instruction)
	case 0b001101:
		cpu.opORI(instruction)
	case 0b001110:
		cpu.opXORI(instruction)
	case 0b001111:
		cpu.opLUI(instruction)
	case 0b010000:
		cpu.opCOP0(instruction)
	case 0b010001, 0b010011:
		cpu.exception(EXCEPTION_COPROCESSOR_ERROR)
	case 0b010010:
		panicMachine(newUnimplemented("cpu: unhandled GTE instruction 0x%x", instruction))
	case 0b100000:
		cpu.opLB(instruction)
	case 0b100001:
		cpu.opLH(instruction)
	case 0b100010:
		cpu.opLWL(instruction)
	case 0b100011:
		cpu.opLW(instruction)
	case 0b100100:
		cpu.opLBU(instruction)
	case 0b100101:
		cpu.opLHU(instruction)
	case 0b100110:
		cpu.opLWR(instruction)
	case 0b101000:
		cpu.opSB(instruction)
	case 0b101001:
		cpu.opSH(instruction)
	case 0b101010:
		cpu.opSWL(instruction)
	case 0b101011:
		cpu.opSW(instruction)
	case 0b101110:
		cpu.opSWR(instruction)
	case 0b110001, 0b110011:
		cpu.exception(EXCEPTION_COPROCESSOR_ERROR)
	case 0b110010:
		panicMachine(newUnimplemented("cpu: unhandled GTE load instruction 0x%x", instruction))
	case 0b111001, 0b111011:
		cpu.exception(EXCEPTION_COPROCESSOR_ERROR)
	case 0b111010:
		panicMachine(newUnimplemented("cpu: unhandled GTE store instruction 0x%x", instruction))
	default:
		cpu.exception(EXCEPTION_ILLEGAL_INSTRUCTION)
	}
}

func (cpu *CPU) decodeAndExecuteSpecial(instruction Instruction) {
	switch instruction.Subfunction() {
	case 0b000000:
		cpu.opSLL(instruction)
	case 0b000010:
		cpu.opSRL(instruction)
	case 0b000011:
		cpu.opSRA(instruction)
	case 0b000100:
		cpu.opSLLV(instruction)
	case 0b000110:
		cpu.opSRLV(instruction)
	case 0b000111:
		cpu.opSRAV(instruction)
	case 0b001000:
		cpu.opJR(instruction)
	case 0b001001:
		cpu.opJALR(instruction)
	case 0b001100:
		cpu.exception(EXCEPTION_SYSCALL)
	case 0b001101:
		cpu.exception(EXCEPTION_BREAK)
	case 0b010000:
		cpu.opMFHI(instruction)
	case 0b010001:
		cpu.opMTHI(instruction)
	case 0b010010:
		cpu.opMFLO(instruction)
	case 0b010011:
		cpu.opMTLO(instruction)
	case 0b011000:
		cpu.opMULT(instruction)
	case 0b011001:
		cpu.opMULTU(instruction)
	case 0b011010:
		cpu.opDIV(instruction)
	case 0b011011:
		cpu.opDIVU(instruction)
	case 0b100000:
		cpu.opADD(instruction)
	case 0b100001:
		cpu.opADDU(instruction)
	case 0b100010:
		cpu.opSUB(instruction)
	case 0b100011:
		cpu.opSUBU(instruction)
	case 0b100100:
		cpu.opAND(instruction)
	case 0b100101:
		cpu.opOR(instruction)
	case 0b100110:
		cpu.opXOR(instruction)
	case 0b100111:
		cpu.opNOR(instruction)
	case 0b101010:
		cpu.opSLT(instruction)
	case 0b101011:
		cpu.opSLTU(instruction)
	default:
		cpu.exception(EXCEPTION_ILLEGAL_INSTRUCTION)
	}
}

// Load Upper Immediate
func (cpu *CPU) opLUI(instruction Instruction) {
	cpu.SetReg(instruction.T(), instruction.Imm()<<16)
}

// Bitwise Or Immediate
func (cpu *CPU) opORI(instruction Instruction) {
	cpu.SetReg(instruction.T(), cpu.Reg(instruction.S())|instruction.Imm())
}

// Bitwise And Immediate
func (cpu *CPU) opANDI(instruction Instruction) {
	cpu.SetReg(instruction.T(), cpu.Reg(instruction.S())&instruction.Imm())
}

// Bitwise Exclusive Or Immediate
func (cpu *CPU) opXORI(instruction Instruction) {
	cpu.SetReg(instruction.T(), cpu.Reg(instruction.S())^instruction.Imm())
}

// Shift Left Logical
func (cpu *CPU) opSLL(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.Reg(instruction.T())<<instruction.Shift())
}

// Shift Right Logical
func (cpu *CPU) opSRL(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.Reg(instruction.T())>>instruction.Shift())
}

// Shift Right Arithmetic
func (cpu *CPU) opSRA(instruction Instruction) {
	v := int32(cpu.Reg(instruction.T())) >> instruction.Shift()
	cpu.SetReg(instruction.D(), uint32(v))
}

// Shift Left Logical Variable
func (cpu *CPU) opSLLV(instruction Instruction) {
	v := cpu.Reg(instruction.T()) << (cpu.Reg(instruction.S()) & 0x1f)
	cpu.SetReg(instruction.D(), v)
}

// Shift Right Logical Variable
func (cpu *CPU) opSRLV(instruction Instruction) {
	v := cpu.Reg(instruction.T()) >> (cpu.Reg(instruction.S()) & 0x1f)
	cpu.SetReg(instruction.D(), v)
}

// Shift Right Arithmetic Variable
func (cpu *CPU) opSRAV(instruction Instruction) {
	v := int32(cpu.Reg(instruction.T())) >> (cpu.Reg(instruction.S()) & 0x1f)
	cpu.SetReg(instruction.D(), uint32(v))
}

// Bitwise OR
func (cpu *CPU) opOR(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.Reg(instruction.S())|cpu.Reg(instruction.T()))
}

// Bitwise AND
func (cpu *CPU) opAND(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.Reg(instruction.S())&cpu.Reg(instruction.T()))
}

// Bitwise Exclusive OR
func (cpu *CPU) opXOR(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.Reg(instruction.S())^cpu.Reg(instruction.T()))
}

// Bitwise NOR
func (cpu *CPU) opNOR(instruction Instruction) {
	cpu.SetReg(instruction.D(), ^(cpu.Reg(instruction.S()) | cpu.Reg(instruction.T())))
}

// Set on Less Than (signed)
func (cpu *CPU) opSLT(instruction Instruction) {
	v := int32(cpu.Reg(instruction.S())) < int32(cpu.Reg(instruction.T()))
	cpu.SetReg(instruction.D(), oneIfTrue(v))
}

// Set on Less Than Unsigned
func (cpu *CPU) opSLTU(instruction Instruction) {
	v := cpu.Reg(instruction.S()) < cpu.Reg(instruction.T())
	cpu.SetReg(instruction.D(), oneIfTrue(v))
}

// Set on Less Than Immediate (signed)
func (cpu *CPU) opSLTI(instruction Instruction) {
	v := int32(cpu.Reg(instruction.S())) < int32(instruction.ImmSE())
	cpu.SetReg(instruction.T(), oneIfTrue(v))
}

// Set on Less Than Immediate Unsigned
func (cpu *CPU) opSLTIU(instruction Instruction) {
	v := cpu.Reg(instruction.S()) < instruction.ImmSE()
	cpu.SetReg(instruction.T(), oneIfTrue(v))
}

// Add Immediate Unsigned (no overflow check, despite the "signed" immediate)
func (cpu *CPU) opADDIU(instruction Instruction) {
	cpu.SetReg(instruction.T(), cpu.Reg(instruction.S())+instruction.ImmSE())
}

// Add Immediate (raises Overflow on signed overflow)
func (cpu *CPU) opADDI(instruction Instruction) {
	s := int32(cpu.Reg(instruction.S()))
	i := int32(instruction.ImmSE())

	v := s + i
	if overflowsAdd(s, i, v) {
		cpu.exception(EXCEPTION_OVERFLOW)
		return
	}

	cpu.SetReg(instruction.T(), uint32(v))
}

// Add (raises Overflow on signed overflow)
func (cpu *CPU) opADD(instruction Instruction) {
	s := int32(cpu.Reg(instruction.S()))
	t := int32(cpu.Reg(instruction.T()))

	v := s + t
	if overflowsAdd(s, t, v) {
		cpu.exception(EXCEPTION_OVERFLOW)
		return
	}

	cpu.SetReg(instruction.D(), uint32(v))
}

// Add Unsigned (wraps, never raises)
func (cpu *CPU) opADDU(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.Reg(instruction.S())+cpu.Reg(instruction.T()))
}

// Subtract (raises Overflow on signed overflow). `rs - rt`, NOT `rs - rs`
func (cpu *CPU) opSUB(instruction Instruction) {
	s := int32(cpu.Reg(instruction.S()))
	t := int32(cpu.Reg(instruction.T()))

	v := s - t
	if overflowsSub(s, t, v) {
		cpu.exception(EXCEPTION_OVERFLOW)
		return
	}

	cpu.SetReg(instruction.D(), uint32(v))
}

// Subtract Unsigned (wraps, never raises)
func (cpu *CPU) opSUBU(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.Reg(instruction.S())-cpu.Reg(instruction.T()))
}

func overflowsAdd(a, b, sum int32) bool {
	return (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0)
}

func overflowsSub(a, b, diff int32) bool {
	return (a >= 0 && b < 0 && diff < 0) || (a < 0 && b >= 0 && diff >= 0)
}

// Multiply (signed)
func (cpu *CPU) opMULT(instruction Instruction) {
	a := int64(int32(cpu.Reg(instruction.S())))
	b := int64(int32(cpu.Reg(instruction.T())))

	v := uint64(a * b)
	cpu.HI = uint32(v >> 32)
	cpu.LO = uint32(v)
}

// Multiply Unsigned
func (cpu *CPU) opMULTU(instruction Instruction) {
	a := uint64(cpu.Reg(instruction.S()))
	b := uint64(cpu.Reg(instruction.T()))

	v := a * b
	cpu.HI = uint32(v >> 32)
	cpu.LO = uint32(v)
}

// Divide (signed)
func (cpu *CPU) opDIV(instruction Instruction) {
	n := int32(cpu.Reg(instruction.S()))
	d := int32(cpu.Reg(instruction.T()))

	switch {
	case d == 0:
		cpu.HI = uint32(n)
		if n >= 0 {
			cpu.LO = 0xffffffff
		} else {
			cpu.LO = 1
		}
	case uint32(n) == 0x80000000 && d == -1:
		cpu.HI = 0
		cpu.LO = 0x80000000
	default:
		cpu.HI = uint32(n % d)
		cpu.LO = uint32(n / d)
	}
}

// Divide Unsigned
func (cpu *CPU) opDIVU(instruction Instruction) {
	n := cpu.Reg(instruction.S())
	d := cpu.Reg(instruction.T())

	if d == 0 {
		cpu.HI = n
		cpu.LO = 0xffffffff
		return
	}

	cpu.HI = n % d
	cpu.LO = n / d
}

func (cpu *CPU) opMFHI(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.HI)
}

func (cpu *CPU) opMTHI(instruction Instruction) {
	cpu.HI = cpu.Reg(instruction.S())
}

func (cpu *CPU) opMFLO(instruction Instruction) {
	cpu.SetReg(instruction.D(), cpu.LO)
}

func (cpu *CPU) opMTLO(instruction Instruction) {
	cpu.LO = cpu.Reg(instruction.S())
}

// Store Word
func (cpu *CPU) opSW(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	if addr%4 != 0 {
		cpu.exception(EXCEPTION_STORE_ADDRESS_ERROR)
		return
	}
	cpu.Store32(addr, cpu.Reg(instruction.T()))
}

// Store Halfword
func (cpu *CPU) opSH(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	if addr%2 != 0 {
		cpu.exception(EXCEPTION_STORE_ADDRESS_ERROR)
		return
	}
	cpu.Store16(addr, uint16(cpu.Reg(instruction.T())))
}

// Store Byte
func (cpu *CPU) opSB(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	cpu.Store8(addr, byte(cpu.Reg(instruction.T())))
}

// Load Word
func (cpu *CPU) opLW(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	if addr%4 != 0 {
		cpu.exception(EXCEPTION_LOAD_ADDRESS_ERROR)
		return
	}
	cpu.setLoadDelay(instruction.T(), cpu.Load32(addr))
}

// Load Byte (sign extended)
func (cpu *CPU) opLB(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	v := int32(int8(cpu.Load8(addr)))
	cpu.setLoadDelay(instruction.T(), uint32(v))
}

// Load Byte Unsigned
func (cpu *CPU) opLBU(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	cpu.setLoadDelay(instruction.T(), uint32(cpu.Load8(addr)))
}

// Load Halfword (sign extended)
func (cpu *CPU) opLH(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	if addr%2 != 0 {
		cpu.exception(EXCEPTION_LOAD_ADDRESS_ERROR)
		return
	}
	v := int32(int16(cpu.Load16(addr)))
	cpu.setLoadDelay(instruction.T(), uint32(v))
}

// Load Halfword Unsigned
func (cpu *CPU) opLHU(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	if addr%2 != 0 {
		cpu.exception(EXCEPTION_LOAD_ADDRESS_ERROR)
		return
	}
	cpu.setLoadDelay(instruction.T(), uint32(cpu.Load16(addr)))
}

// Load Word Left: merges the high-order bytes of a misaligned word into the
// value currently being written back to `rt` this step (bypassing the
// ordinary load-delay restriction, per MIPS LWL/LWR semantics)
func (cpu *CPU) opLWL(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	t := instruction.T()

	curV := cpu.outRegs[t]

	alignedAddr := addr &^ 3
	alignedWord := cpu.Load32(alignedAddr)

	var v uint32
	switch addr & 3 {
	case 0:
		v = (curV & 0x00ffffff) | (alignedWord << 24)
	case 1:
		v = (curV & 0x0000ffff) | (alignedWord << 16)
	case 2:
		v = (curV & 0x000000ff) | (alignedWord << 8)
	case 3:
		v = alignedWord
	}

	cpu.setLoadDelay(t, v)
}

// Load Word Right
func (cpu *CPU) opLWR(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	t := instruction.T()

	curV := cpu.outRegs[t]

	alignedAddr := addr &^ 3
	alignedWord := cpu.Load32(alignedAddr)

	var v uint32
	switch addr & 3 {
	case 0:
		v = alignedWord
	case 1:
		v = (curV & 0xff000000) | (alignedWord >> 8)
	case 2:
		v = (curV & 0xffff0000) | (alignedWord >> 16)
	case 3:
		v = (curV & 0xffffff00) | (alignedWord >> 24)
	}

	cpu.setLoadDelay(t, v)
}

// Store Word Left
func (cpu *CPU) opSWL(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	v := cpu.Reg(instruction.T())

	alignedAddr := addr &^ 3
	curMem := cpu.Load32(alignedAddr)

	var mem uint32
	switch addr & 3 {
	case 0:
		mem = (curMem & 0xffffff00) | (v >> 24)
	case 1:
		mem = (curMem & 0xffff0000) | (v >> 16)
	case 2:
		mem = (curMem & 0xff000000) | (v >> 8)
	case 3:
		mem = v
	}

	cpu.Store32(alignedAddr, mem)
}

// Store Word Right
func (cpu *CPU) opSWR(instruction Instruction) {
	addr := cpu.Reg(instruction.S()) + instruction.ImmSE()
	v := cpu.Reg(instruction.T())

	alignedAddr := addr &^ 3
	curMem := cpu.Load32(alignedAddr)

	var mem uint32
	switch addr & 3 {
	case 0:
		mem = v
	case 1:
		mem = (curMem & 0x000000ff) | (v << 8)
	case 2:
		mem = (curMem & 0x0000ffff) | (v << 16)
	case 3:
		mem = (curMem & 0x00ffffff) | (v << 24)
	}

	cpu.Store32(alignedAddr, mem)
}

// Jump
func (cpu *CPU) opJ(instruction Instruction) {
	cpu.NextPC = (cpu.PC & 0xf0000000) | (instruction.ImmJump() << 2)
	cpu.BranchTaken = true
}

// Jump And Link
func (cpu *CPU) opJAL(instruction Instruction) {
	cpu.SetReg(31, cpu.NextPC)
	cpu.opJ(instruction)
}

// Jump Register
func (cpu *CPU) opJR(instruction Instruction) {
	cpu.NextPC = cpu.Reg(instruction.S())
	cpu.BranchTaken = true
}

// Jump And Link Register
func (cpu *CPU) opJALR(instruction Instruction) {
	ra := cpu.NextPC
	cpu.NextPC = cpu.Reg(instruction.S())
	cpu.BranchTaken = true
	cpu.SetReg(instruction.D(), ra)
}

// Branch to `imm16 << 2`, relative to the delay-slot instruction (the
// currently executing instruction's address + 4)
func (cpu *CPU) branchRelative(instruction Instruction) {
	offset := instruction.ImmSE() << 2
	cpu.NextPC = cpu.CurrentPC + 4 + offset
	cpu.BranchTaken = true
}

// Branch If Equal
func (cpu *CPU) opBEQ(instruction Instruction) {
	if cpu.Reg(instruction.S()) == cpu.Reg(instruction.T()) {
		cpu.branchRelative(instruction)
	}
}

// Branch If Not Equal
func (cpu *CPU) opBNE(instruction Instruction) {
	if cpu.Reg(instruction.S()) != cpu.Reg(instruction.T()) {
		cpu.branchRelative(instruction)
	}
}

// Branch If Less than or Equal to Zero
func (cpu *CPU) opBLEZ(instruction Instruction) {
	if int32(cpu.Reg(instruction.S())) <= 0 {
		cpu.branchRelative(instruction)
	}
}

// Branch If Greater Than Zero
func (cpu *CPU) opBGTZ(instruction Instruction) {
	if int32(cpu.Reg(instruction.S())) > 0 {
		cpu.branchRelative(instruction)
	}
}

// BXX: BLTZ/BGEZ/BLTZAL/BGEZAL, selected by bits of `rt`
func (cpu *CPU) opBXX(instruction Instruction) {
	rt := instruction.T()

	isNegative := int32(cpu.Reg(instruction.S())) < 0
	test := isNegative != (rt&1 != 0)

	link := (rt & 0x1e) == 0x10
	if link {
		cpu.SetReg(31, cpu.NextPC)
	}

	if test {
		cpu.branchRelative(instruction)
	}
}

// Move To Coprocessor 0
func (cpu *CPU) opMTC0(instruction Instruction) {
	cpuR := instruction.T()
	cop0R := instruction.D()
	v := cpu.Reg(cpuR)

	switch cop0R {
	case 3, 5, 6, 7, 9, 11, 13:
		// breakpoint registers and Cause (13): writes are ignored
	case 12:
		cpu.Cop0.SetSR(v)
	default:
		panicMachine(newUnimplemented("cpu: unhandled cop0 register write %d", cop0R))
	}
}

// Move From Coprocessor 0
func (cpu *CPU) opMFC0(instruction Instruction) {
	cpuR := instruction.T()
	cop0R := instruction.D()

	var v uint32
	switch cop0R {
	case 12:
		v = cpu.Cop0.SR
	case 13:
		v = cpu.Cop0.GetCause()
	case 14:
		v = cpu.Cop0.Epc
	default:
		panicMachine(newUnimplemented("cpu: unhandled cop0 register read %d", cop0R))
	}

	cpu.setLoadDelay(cpuR, v)
}

// Return From Exception
func (cpu *CPU) opRFE(instruction Instruction) {
	if instruction.Subfunction() != 0b010000 {
		panicMachine(newUnimplemented("cpu: invalid cop0 instruction 0x%x", instruction))
	}
	cpu.Cop0.ReturnFromException()
}

func (cpu *CPU) opCOP0(instruction Instruction) {
	switch instruction.S() {
	case 0b00000:
		cpu.opMFC0(instruction)
	case 0b00100:
		cpu.opMTC0(instruction)
	case 0b10000:
		cpu.opRFE(instruction)
	default:
		panicMachine(newUnimplemented("cpu: unhandled cop0 instruction 0x%x", instruction))
	}
}
