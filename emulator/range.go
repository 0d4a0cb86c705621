package emulator

// The named physical memory regions (§6 of the machine-core address map).
// Unlike the teacher's version, RAM is not mirrored here: the spec maps a
// single 2MiB RAM window, and unmapped addresses are OutOfRange rather than
// silently wrapping.
var (
	// Main RAM
	RAM_RANGE = NewRange(0x00000000, 2*1024*1024)
	// Expansion region 1 (parallel port, unused by retail software)
	EXPANSION_1_RANGE = NewRange(0x1f000000, 8*1024*1024)
	// Scratchpad: small fast SRAM with no cache behind it
	SCRATCHPAD_RANGE = NewRange(0x1f800000, SCRATCH_PAD_SIZE)
	// Memory latency and expansion mapping (also known as SYSCONTROL)
	MEMCONTROL_RANGE = NewRange(0x1f801000, 36)
	// Register that has something to do with RAM configuration, configured by the BIOS
	RAMSIZE_RANGE = NewRange(0x1f801060, 4)
	// Interrupt Control registers (status and mask)
	IRQ_CONTROL_RANGE = NewRange(0x1f801070, 8)
	// Direct Memory Access registers
	DMA_RANGE = NewRange(0x1f801080, 0x80)
	// Timer registers
	TIMERS_RANGE = NewRange(0x1f801100, 0x30)
	// GPU
	GPU_RANGE = NewRange(0x1f801810, 8)
	// SPU (Sound Processing Unit)
	SPU_RANGE = NewRange(0x1f801c00, 640)
	// Expansion region 2
	EXPANSION_2_RANGE = NewRange(0x1f802000, 66)
	// The range of the BIOS in the system memory
	BIOS_RANGE = NewRange(0x1fc00000, BIOS_SIZE)
	// Cache control register, full address since it's in KSEG2
	CACHE_CONTROL_RANGE = NewRange(0xfffe0130, 4)
)

// Range is an immutable physical address region: {start, length}. Regions
// are listed above and probed linearly by the Bus.
type Range struct {
	Start  uint32 // Start address
	Length uint32 // Length of the mapping
}

func NewRange(start uint32, length uint32) Range {
	return Range{Start: start, Length: length}
}

// End returns the last address (inclusive) mapped by this range
func (r *Range) End() uint32 {
	return r.Start + r.Length - 1
}

// Returns whether `addr` is located inside this range
func (r *Range) Contains(addr uint32) bool {
	return addr >= r.Start && addr <= r.End()
}

// Returns the offset between `addr` and the `Start` of the range.
// Does not check if the range contains the address, so if `addr`
// is smaller than `Start`, there will be an overflow
func (r *Range) Offset(addr uint32) uint32 {
	return addr - r.Start
}

func (r *Range) ContainsAndOffset(addr uint32) (bool, uint32) {
	if !r.Contains(addr) {
		return false, 0
	}
	return true, r.Offset(addr)
}
