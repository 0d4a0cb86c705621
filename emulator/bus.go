package emulator

import "log/slog"

// Bus is the Memory Bus: it owns RAM, BIOS, scratchpad, the DMA controller
// and the GPU front-end, and routes width-typed loads/stores from the CPU
// to whichever of them maps the physical address. It also carries out the
// DMA transfer engines, since those need simultaneous access to RAM and the
// GPU that neither DMA nor GPU may hold on to themselves (§9 ownership note)
type Bus struct {
	RAM        *RAM
	BIOS       *BIOS
	ScratchPad *ScratchPad
	DMA        *DMA
	GPU        *GPU
}

func NewBus(bios *BIOS, sink *GpuMsgSink) *Bus {
	return &Bus{
		RAM:        NewRAM(),
		BIOS:       bios,
		ScratchPad: NewScratchPad(),
		DMA:        NewDMA(),
		GPU:        NewGPU(sink),
	}
}

// Load32 reads a 32 bit little-endian value at physical address `addr`
func (bus *Bus) Load32(addr uint32) uint32 {
	if ok, offset := RAM_RANGE.ContainsAndOffset(addr); ok {
		return bus.RAM.Load32(offset)
	}
	if ok, offset := BIOS_RANGE.ContainsAndOffset(addr); ok {
		return bus.BIOS.Load32(offset)
	}
	if ok, offset := SCRATCHPAD_RANGE.ContainsAndOffset(addr); ok {
		return bus.ScratchPad.Load32(offset)
	}
	if ok, offset := DMA_RANGE.ContainsAndOffset(addr); ok {
		return bus.DMA.Load32(offset)
	}
	if ok, offset := GPU_RANGE.ContainsAndOffset(addr); ok {
		switch offset {
		case 0:
			return bus.GPU.Read()
		case 4:
			return bus.GPU.Status()
		default:
			panicMachine(newOutOfRange("bus: unhandled GPU register read at offset 0x%x", offset))
		}
	}
	if IRQ_CONTROL_RANGE.Contains(addr) {
		return 0
	}
	if TIMERS_RANGE.Contains(addr) {
		return 0
	}
	if SPU_RANGE.Contains(addr) {
		return 0
	}
	if EXPANSION_1_RANGE.Contains(addr) {
		return 0xff
	}
	if MEMCONTROL_RANGE.Contains(addr) || RAMSIZE_RANGE.Contains(addr) || CACHE_CONTROL_RANGE.Contains(addr) {
		panicMachine(newOutOfRange("bus: read from write-only control register 0x%x", addr))
	}
	panicMachine(newOutOfRange("bus: unhandled load32 at address 0x%x", addr))
	return 0
}

// Load16 reads a 16 bit little-endian value at physical address `addr`.
// RAM, BIOS and the scratchpad return data at this width; SPU and interrupt
// control reads return zero
func (bus *Bus) Load16(addr uint32) uint16 {
	if ok, offset := RAM_RANGE.ContainsAndOffset(addr); ok {
		return bus.RAM.Load16(offset)
	}
	if ok, offset := BIOS_RANGE.ContainsAndOffset(addr); ok {
		return bus.BIOS.Load16(offset)
	}
	if ok, offset := SCRATCHPAD_RANGE.ContainsAndOffset(addr); ok {
		return bus.ScratchPad.Load16(offset)
	}
	if SPU_RANGE.Contains(addr) {
		return 0
	}
	if IRQ_CONTROL_RANGE.Contains(addr) {
		return 0
	}
	if DMA_RANGE.Contains(addr) || GPU_RANGE.Contains(addr) {
		panicMachine(newUnimplemented("bus: unaligned 16 bit access to 32 bit-only region at 0x%x", addr))
	}
	panicMachine(newOutOfRange("bus: unhandled load16 at address 0x%x", addr))
	return 0
}

// Load8 reads a byte at physical address `addr`
func (bus *Bus) Load8(addr uint32) byte {
	if ok, offset := RAM_RANGE.ContainsAndOffset(addr); ok {
		return bus.RAM.Load8(offset)
	}
	if ok, offset := BIOS_RANGE.ContainsAndOffset(addr); ok {
		return bus.BIOS.Load8(offset)
	}
	if ok, offset := SCRATCHPAD_RANGE.ContainsAndOffset(addr); ok {
		return bus.ScratchPad.Load8(offset)
	}
	if EXPANSION_1_RANGE.Contains(addr) {
		return 0xff
	}
	if DMA_RANGE.Contains(addr) || GPU_RANGE.Contains(addr) {
		panicMachine(newUnimplemented("bus: unaligned 8 bit access to 32 bit-only region at 0x%x", addr))
	}
	panicMachine(newOutOfRange("bus: unhandled load8 at address 0x%x", addr))
	return 0
}

// Store32 writes a 32 bit little-endian value `val` to physical address `addr`
func (bus *Bus) Store32(addr, val uint32) {
	if ok, offset := RAM_RANGE.ContainsAndOffset(addr); ok {
		bus.RAM.Store32(offset, val)
		return
	}
	if ok, offset := SCRATCHPAD_RANGE.ContainsAndOffset(addr); ok {
		bus.ScratchPad.Store32(offset, val)
		return
	}
	if ok, offset := DMA_RANGE.ContainsAndOffset(addr); ok {
		port, activated := bus.DMA.Store32(offset, val)
		if activated {
			bus.runDMA(port)
		}
		return
	}
	if ok, offset := GPU_RANGE.ContainsAndOffset(addr); ok {
		switch offset {
		case 0:
			bus.GPU.GP0(val)
		case 4:
			bus.GPU.GP1(val)
		default:
			panicMachine(newOutOfRange("bus: unhandled GPU register write at offset 0x%x", offset))
		}
		return
	}
	if BIOS_RANGE.Contains(addr) {
		panicMachine(newOutOfRange("bus: write to read-only BIOS at 0x%x", addr))
	}
	if MEMCONTROL_RANGE.Contains(addr) {
		return
	}
	if RAMSIZE_RANGE.Contains(addr) {
		return
	}
	if CACHE_CONTROL_RANGE.Contains(addr) {
		return
	}
	if IRQ_CONTROL_RANGE.Contains(addr) {
		slog.Debug("bus: ignored write to interrupt control register", "addr", addr, "val", val)
		return
	}
	if TIMERS_RANGE.Contains(addr) {
		slog.Debug("bus: ignored write to timer register", "addr", addr, "val", val)
		return
	}
	if SPU_RANGE.Contains(addr) {
		return
	}
	if EXPANSION_2_RANGE.Contains(addr) {
		return
	}
	panicMachine(newOutOfRange("bus: unhandled store32 at address 0x%x", addr))
}

// Store16 writes a 16 bit little-endian value to physical address `addr`
func (bus *Bus) Store16(addr uint32, val uint16) {
	if ok, offset := RAM_RANGE.ContainsAndOffset(addr); ok {
		bus.RAM.Store16(offset, val)
		return
	}
	if ok, offset := SCRATCHPAD_RANGE.ContainsAndOffset(addr); ok {
		bus.ScratchPad.Store16(offset, val)
		return
	}
	if SPU_RANGE.Contains(addr) {
		return
	}
	if TIMERS_RANGE.Contains(addr) {
		return
	}
	if IRQ_CONTROL_RANGE.Contains(addr) {
		return
	}
	if DMA_RANGE.Contains(addr) || GPU_RANGE.Contains(addr) {
		panicMachine(newUnimplemented("bus: unaligned 16 bit access to 32 bit-only region at 0x%x", addr))
	}
	panicMachine(newOutOfRange("bus: unhandled store16 at address 0x%x", addr))
}

// Store8 writes a byte to physical address `addr`
func (bus *Bus) Store8(addr uint32, val byte) {
	if ok, offset := RAM_RANGE.ContainsAndOffset(addr); ok {
		bus.RAM.Store8(offset, val)
		return
	}
	if ok, offset := SCRATCHPAD_RANGE.ContainsAndOffset(addr); ok {
		bus.ScratchPad.Store8(offset, val)
		return
	}
	if EXPANSION_2_RANGE.Contains(addr) {
		return
	}
	if DMA_RANGE.Contains(addr) || GPU_RANGE.Contains(addr) {
		panicMachine(newUnimplemented("bus: unaligned 8 bit access to 32 bit-only region at 0x%x", addr))
	}
	panicMachine(newOutOfRange("bus: unhandled store8 at address 0x%x", addr))
}

const ramAddrMask = 0x001fffff
const ramWordMask = 0x001ffffc

// runDMA carries out the transfer for a channel whose control register was
// just written and left it `Active`
func (bus *Bus) runDMA(port Port) {
	ch := bus.DMA.Port(port)

	if ch.Sync == SYNC_LINKED_LIST {
		bus.runLinkedListDMA(port)
	} else {
		bus.runBlockDMA(port)
	}
}

// runBlockDMA handles Manual and Request sync modes: a fixed number of
// words transferred starting at `base`, stepping by +/-4 per word
func (bus *Bus) runBlockDMA(port Port) {
	ch := bus.DMA.Port(port)

	var increment uint32 = 4
	if ch.Step == STEP_DECREMENT {
		increment = ^uint32(4) + 1 // -4
	}

	addr := ch.Base

	_, remaining := ch.TransferSize()

	for remaining > 0 {
		curAddr := addr & ramWordMask

		switch ch.Direction {
		case DIRECTION_FROM_RAM:
			srcWord := bus.RAM.Load32(curAddr)
			switch port {
			case PORT_GPU:
				bus.GPU.GP0(srcWord)
			default:
				panicMachine(newUnimplemented("dma: unhandled FromRam port %d", port))
			}
		case DIRECTION_TO_RAM:
			switch port {
			case PORT_OTC:
				var srcWord uint32
				if remaining == 1 {
					// last entry of the table contains the end of list marker
					srcWord = 0x00ffffff
				} else {
					srcWord = (addr - 4) & ramAddrMask
				}
				bus.RAM.Store32(curAddr, srcWord)
			default:
				panicMachine(newUnimplemented("dma: unhandled ToRam port %d", port))
			}
		}

		addr += increment
		remaining--
	}

	ch.Done()
}

// runLinkedListDMA handles the GPU FromRam linked-list transfer: walk a
// chain of {next, length} headers, pushing each node's payload to GP0,
// until a header whose bit 23 is set (the terminator) is drained
func (bus *Bus) runLinkedListDMA(port Port) {
	if port != PORT_GPU {
		panicMachine(newUnimplemented("dma: linked-list mode only supported for the GPU port"))
	}

	ch := bus.DMA.Port(port)
	if ch.Direction != DIRECTION_FROM_RAM {
		panicMachine(newUnimplemented("dma: linked-list ToRam direction not supported"))
	}

	addr := ch.Base & ramWordMask

	for {
		// header entry for this node
		header := bus.RAM.Load32(addr)
		remaining := header >> 24

		for remaining > 0 {
			addr = (addr + 4) & ramWordMask
			command := bus.RAM.Load32(addr)
			bus.GPU.GP0(command)
			remaining--
		}

		if header&0x800000 != 0 {
			break
		}

		addr = header & ramWordMask
	}

	ch.Done()
}
