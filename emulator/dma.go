package emulator

// Represents the 7 DMA ports
type Port uint32

const (
	PORT_MDEC_IN  Port = 0 // Macroblock decoder input
	PORT_MDEC_OUT Port = 1 // Macroblock decoder output
	PORT_GPU      Port = 2 // Graphics Processing Unit
	PORT_CDROM    Port = 3 // CD-ROM drive
	PORT_SPU      Port = 4 // Sound Processing Unit
	PORT_PIO      Port = 5 // Extension port
	PORT_OTC      Port = 6 // Used to clear the ordering table
)

func PortFromIndex(index uint32) Port {
	switch index {
	case 0:
		return PORT_MDEC_IN
	case 1:
		return PORT_MDEC_OUT
	case 2:
		return PORT_GPU
	case 3:
		return PORT_CDROM
	case 4:
		return PORT_SPU
	case 5:
		return PORT_PIO
	case 6:
		return PORT_OTC
	default:
		panicFmt("dma: invalid port %d", index)
		return 0
	}
}

// Direct Memory Access
type DMA struct {
	Control         uint32 // DMA control register
	IrqEn           bool   // Master IRQ enable
	ChannelIrqEn    uint8  // IRQ enable for individual channels
	ChannelIrqFlags uint8  // IRQ flags for individual channels
	// When set the interrupt is active unconditionally, even
	// if `IrqEn` is false
	ForceIrq bool
	// Bits [0:5] of the interrupt registers are RW but I don't
	// know what they're supposed to do so they're just sent back
	// untouched on reads
	IrqDummy uint8
	Channels [7]*Channel // The 7 channel instances
}

// Return a new reset DMA instance
func NewDMA() *DMA {
	dma := &DMA{
		Control: 0x07654321, // reset value from the Nocash PSX spec
	}

	// allocate channels
	for i := 0; i < len(dma.Channels); i++ {
		dma.Channels[i] = NewChannel()
	}

	return dma
}

// Set the control value
func (dma *DMA) SetControl(val uint32) {
	dma.Control = val
}

// Return the status of the DMA interrupt
func (dma *DMA) Irq() bool {
	channelIrq := dma.ChannelIrqFlags & dma.ChannelIrqEn
	return dma.ForceIrq || (dma.IrqEn && channelIrq != 0)
}

// Return the value of the interrupt register
func (dma *DMA) Interrupt() uint32 {
	var forceIrqVal uint32
	if dma.ForceIrq {
		forceIrqVal = 1
	}
	var irqEnVal uint32
	if dma.IrqEn {
		irqEnVal = 1
	}
	var irqVal uint32
	if dma.Irq() {
		irqVal = 1
	}

	var r uint32 = 0
	r |= uint32(dma.IrqDummy)
	r |= forceIrqVal << 15
	r |= uint32(dma.ChannelIrqEn) << 16
	r |= irqEnVal << 23
	r |= uint32(dma.ChannelIrqFlags) << 24
	r |= irqVal << 31
	return r
}

// Set the value of the interrupt register
func (dma *DMA) SetInterrupt(val uint32) {
	// unknown what bits [5:0] do
	dma.IrqDummy = uint8(val & 0x3f)
	dma.ForceIrq = (val>>15)&1 != 0
	dma.ChannelIrqEn = uint8((val >> 16) & 0x7f)
	dma.IrqEn = (val>>23)&1 != 0

	// writing 1 to a flag resets it; there are 7 channel flags (bits [24:30])
	ack := uint8((val >> 24) & 0x7f)
	dma.ChannelIrqFlags &= ^ack
}

// Port returns the channel instance for `port`
func (dma *DMA) Port(port Port) *Channel {
	return dma.Channels[port]
}

// Load32 reads a DMA register at `offset` (relative to DMA_RANGE). The
// offset is split into a major/minor pair: major selects the channel (0-6)
// or the controller-global block (7), minor selects the register within it
func (dma *DMA) Load32(offset uint32) uint32 {
	major := (offset >> 4) & 7
	minor := offset & 0xf

	if major <= 6 {
		ch := dma.Channels[major]
		switch minor {
		case 0:
			return ch.Base
		case 4:
			return ch.BlockControl()
		case 8:
			return ch.Control()
		default:
			panicMachine(newOutOfRange("dma: unhandled channel register read at offset 0x%x", offset))
		}
	} else if major == 7 {
		switch minor {
		case 0:
			return dma.Control
		case 4:
			return dma.Interrupt()
		default:
			panicMachine(newOutOfRange("dma: unhandled controller register read at offset 0x%x", offset))
		}
	}
	panicMachine(newOutOfRange("dma: unhandled register read at offset 0x%x", offset))
	return 0
}

// Store32 writes a DMA register at `offset`. When a channel control register
// is written, returns that channel's port and whether the channel is now
// active, so the Bus can run the transfer; activatedControl is false when no
// channel control register was written or the channel is left inactive
func (dma *DMA) Store32(offset, val uint32) (port Port, activatedControl bool) {
	major := (offset >> 4) & 7
	minor := offset & 0xf

	if major <= 6 {
		ch := dma.Channels[major]
		switch minor {
		case 0:
			ch.SetBase(val)
		case 4:
			ch.SetBlockControl(val)
		case 8:
			ch.SetControl(val)
			return PortFromIndex(major), ch.Active()
		default:
			panicMachine(newOutOfRange("dma: unhandled channel register write at offset 0x%x", offset))
		}
		return 0, false
	} else if major == 7 {
		switch minor {
		case 0:
			dma.SetControl(val)
		case 4:
			dma.SetInterrupt(val)
		default:
			panicMachine(newOutOfRange("dma: unhandled controller register write at offset 0x%x", offset))
		}
		return 0, false
	}
	panicMachine(newOutOfRange("dma: unhandled register write at offset 0x%x", offset))
	return 0, false
}
