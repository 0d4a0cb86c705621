package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bios, err := NewBIOS(make([]byte, BIOS_SIZE))
	if err != nil {
		t.Fatal(err)
	}
	return NewBus(bios, NewGpuMsgSink())
}

func TestBusRAMRoundTrip(t *testing.T) {
	bus := newTestBus(t)

	bus.Store32(0x1000, 0xdeadbeef)
	assert.Equal(t, uint32(0xdeadbeef), bus.Load32(0x1000))

	bus.Store16(0x2000, 0xcafe)
	assert.Equal(t, uint16(0xcafe), bus.Load16(0x2000))

	bus.Store8(0x3000, 0x7a)
	assert.Equal(t, byte(0x7a), bus.Load8(0x3000))
}

func TestBusStoreToBIOSIsOutOfRange(t *testing.T) {
	bus := newTestBus(t)

	assert.Panics(t, func() {
		bus.Store32(BIOS_RANGE.Start, 0)
	})
}

func TestBusLoadUnmappedAddressIsOutOfRange(t *testing.T) {
	bus := newTestBus(t)

	// between RAM and EXPANSION_1, not claimed by any region
	assert.Panics(t, func() {
		bus.Load32(0x10000000)
	})
}

func TestBusIgnoredControlRegisterWritesDoNotPanic(t *testing.T) {
	bus := newTestBus(t)

	assert.NotPanics(t, func() {
		bus.Store32(MEMCONTROL_RANGE.Start, 0)
		bus.Store32(RAMSIZE_RANGE.Start, 0)
		bus.Store32(CACHE_CONTROL_RANGE.Start, 0)
		bus.Store32(EXPANSION_2_RANGE.Start, 0)
	})
}

func TestBusSPUAndEXP1PlaceholderReads(t *testing.T) {
	bus := newTestBus(t)

	assert.Equal(t, uint32(0), bus.Load32(SPU_RANGE.Start))
	assert.Equal(t, byte(0xff), bus.Load8(EXPANSION_1_RANGE.Start))
}

// DMA register offsets are {base: 0, block control: 4, control: 8} within a
// channel's 0x10-wide slot, keyed by port index (§4.3).
func channelRegAddr(port Port, reg uint32) uint32 {
	return DMA_RANGE.Start + uint32(port)*0x10 + reg
}

func controllerRegAddr(reg uint32) uint32 {
	return DMA_RANGE.Start + 7*0x10 + reg
}

// TestBusOTCFillWalksBackwardLinkedList exercises the OTC (ordering-table
// clear) ToRam block transfer (§4.3, end-to-end scenario 3): each entry but
// the last is back-linked to the one before it; the final entry carries the
// 0x00ffffff end-of-table marker.
func TestBusOTCFillWalksBackwardLinkedList(t *testing.T) {
	bus := newTestBus(t)

	bus.Store32(channelRegAddr(PORT_OTC, 0), 0x1000)     // base
	bus.Store32(channelRegAddr(PORT_OTC, 4), 0x00010004) // block_size=4, block_count=1
	bus.Store32(channelRegAddr(PORT_OTC, 8), 0x11000002) // ToRam, Decrement, Manual, enable+trigger

	assert.Equal(t, uint32(0x00000ffc), bus.RAM.Load32(0x1000))
	assert.Equal(t, uint32(0x00000ff8), bus.RAM.Load32(0x0ffc))
	assert.Equal(t, uint32(0x00000ff4), bus.RAM.Load32(0x0ff8))
	assert.Equal(t, uint32(0x00ffffff), bus.RAM.Load32(0x0ff4))

	assert.False(t, bus.DMA.Port(PORT_OTC).Active())
}

// TestBusLinkedListDMADrainsExactlyOneNodePayload exercises the GPU
// FromRam linked-list transfer (§4.3, end-to-end scenario 2): the single
// payload word of the first node reaches GP0, and the chain stops once the
// terminator node (bit 23 of its header set) is reached.
func TestBusLinkedListDMADrainsExactlyOneNodePayload(t *testing.T) {
	bus := newTestBus(t)

	// node 1 at 0x2000: length=1, next=0x2010
	bus.RAM.Store32(0x2000, 0x01002010)
	// payload: GP0(0xE6) mask bit setting, forces the mask bit
	bus.RAM.Store32(0x2004, 0xe6000001)
	// node 2 at 0x2010: length=0, terminator (bit 23 set)
	bus.RAM.Store32(0x2010, 0x00800000)

	bus.Store32(channelRegAddr(PORT_GPU, 0), 0x2000)     // base
	bus.Store32(channelRegAddr(PORT_GPU, 8), 0x11000401) // FromRam, LinkedList, enable+trigger

	assert.True(t, bus.GPU.ForceSetMaskBit)
	assert.False(t, bus.GPU.PreserveMaskedPixels)
	assert.False(t, bus.DMA.Port(PORT_GPU).Active())
}

// TestBusDMAInterruptAckRoundTrip pins §8 invariant 2 / end-to-end scenario
// 6: writing an ack word clears exactly the addressed flag bits, and the
// signal bit is always a pure function of the other fields.
func TestBusDMAInterruptAckRoundTrip(t *testing.T) {
	bus := newTestBus(t)

	bus.Store32(controllerRegAddr(4), 0x01000000) // ack channel-flag bit 24, no enables, no force

	got := bus.DMA.Interrupt()
	assert.Zero(t, got&0x7f000000) // flags (bits 24..30) cleared
	assert.Zero(t, got&(1<<31))    // signal clear: no force, no enabled+flagged channel
}
