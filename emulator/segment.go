package emulator

// Segmentation translates a 32 bit virtual address to a physical address by
// masking with an 8 entry, MIPS-segmentation-style region-mask table indexed
// by the top 3 bits of the address. This has no notion of faults: every
// virtual address maps to exactly one physical address.
//
// The teacher never modeled this layer (it mapped RAM directly across an
// 8MB mirrored window instead), so this component has no direct gopsx
// ancestor; it follows the bit-mask-table style used throughout the rest of
// the package (range.go, dma.go) rather than introducing a different idiom.
var segmentMasks = [8]uint32{
	0xffffffff, // KUSEG 0x0000_0000 - 0x7fff_ffff
	0xffffffff,
	0xffffffff,
	0xffffffff,
	0x7fffffff, // KSEG0 0x8000_0000 - 0x9fff_ffff
	0x1fffffff, // KSEG1 0xa000_0000 - 0xbfff_ffff
	0xffffffff, // KSEG2 0xc000_0000 - 0xffff_ffff
	0xffffffff,
}

// Physical returns the physical address a virtual address maps to
func Physical(vaddr uint32) uint32 {
	return vaddr & segmentMasks[vaddr>>29]
}
