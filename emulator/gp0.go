package emulator

// gp0Opcode describes a GP0 command header: how many further words the
// command consumes before `handler` is invoked on the assembled buffer
type gp0Opcode struct {
	argc    uint32
	handler func(gpu *GPU)
}

// gp0OpcodeTable is a dense table keyed by the opcode byte (bits [31:24] of
// the command header). It is built once; a chained conditional would work
// just as well but the table reads closer to the hardware's own dispatch
var gp0OpcodeTable = map[uint32]gp0Opcode{
	0x00: {0, func(gpu *GPU) {}}, // NOP
	0x01: {0, func(gpu *GPU) {}}, // clear texture cache, not modeled
	0x28: {4, (*GPU).gp0QuadMonoOpaque},
	0x2c: {8, (*GPU).gp0QuadTextureBlendOpaque},
	0x30: {5, (*GPU).gp0TriangleShadedOpaque},
	0x38: {7, (*GPU).gp0QuadShadedOpaque},
	0xa0: {2, (*GPU).gp0ImageLoad},
	0xc0: {2, (*GPU).gp0ImageStore},
	0xe1: {0, func(gpu *GPU) { gpu.GP0DrawMode(gpu.GP0Command.Get(0)) }},
	0xe2: {0, func(gpu *GPU) { gpu.GP0TextureWindow(gpu.GP0Command.Get(0)) }},
	0xe3: {0, func(gpu *GPU) { gpu.GP0DrawingAreaTopLeft(gpu.GP0Command.Get(0)) }},
	0xe4: {0, func(gpu *GPU) { gpu.GP0DrawingAreaBottomRight(gpu.GP0Command.Get(0)) }},
	0xe5: {0, func(gpu *GPU) { gpu.GP0DrawingOffset(gpu.GP0Command.Get(0)) }},
	0xe6: {0, func(gpu *GPU) { gpu.GP0MaskBitSetting(gpu.GP0Command.Get(0)) }},
}

// GP0 feeds a single word into the command FIFO state machine: the header
// word of a new command when no command is in flight, a command argument
// otherwise, or raw pixel data while draining an image load
func (gpu *GPU) GP0(val uint32) {
	if gpu.GP0Mode == GP0_MODE_IMAGE_LOAD {
		gpu.GP0CommandRemaining--
		if gpu.GP0CommandRemaining == 0 {
			gpu.GP0Mode = GP0_MODE_COMMAND
		}
		return
	}

	if gpu.GP0CommandRemaining == 0 {
		opcode := (val >> 24) & 0xff
		op, ok := gp0OpcodeTable[opcode]
		if !ok {
			panicMachine(newUnimplemented("gp0: unhandled command 0x%x", val))
		}

		gpu.GP0CommandRemaining = op.argc + 1
		gpu.gp0Handler = op.handler
		gpu.GP0Command.Clear()
	}

	gpu.GP0CommandRemaining--
	gpu.GP0Command.PushWord(val)

	if gpu.GP0CommandRemaining == 0 {
		gpu.gp0Handler(gpu)
	}
}

// decodeVertex splits a position word (bits 0..10 = signed x, bits 16..26 =
// signed y) and a color word (bits 0..23 = unsigned r/g/b) into a Vertex
func decodeVertex(position, color uint32) Vertex {
	return Vertex{
		X: signExtend(position&0x7ff, 11),
		Y: signExtend((position>>16)&0x7ff, 11),
		R: color & 0xff,
		G: (color >> 8) & 0xff,
		B: (color >> 16) & 0xff,
	}
}

// GP0(0x28): monochrome opaque quad. Buffer layout: [0]=color, [1..4]=positions
func (gpu *GPU) gp0QuadMonoOpaque() {
	color := gpu.GP0Command.Get(0) & 0xffffff
	v0 := decodeVertex(gpu.GP0Command.Get(1), color)
	v1 := decodeVertex(gpu.GP0Command.Get(2), color)
	v2 := decodeVertex(gpu.GP0Command.Get(3), color)
	v3 := decodeVertex(gpu.GP0Command.Get(4), color)

	gpu.Sink.Put(QuadMsg(v0, v1, v2, v3))
}

// GP0(0x2C): textured opaque quad. Texture coordinates/page/clut words are
// consumed but not decoded (no texture sampling in this core); color is
// forced to the fixed {0x80,0,0} shade per the command's "blend" semantics
func (gpu *GPU) gp0QuadTextureBlendOpaque() {
	const color = 0x000080

	v0 := decodeVertex(gpu.GP0Command.Get(1), color)
	v1 := decodeVertex(gpu.GP0Command.Get(3), color)
	v2 := decodeVertex(gpu.GP0Command.Get(5), color)
	v3 := decodeVertex(gpu.GP0Command.Get(7), color)

	gpu.Sink.Put(QuadMsg(v0, v1, v2, v3))
}

// GP0(0x30): shaded opaque triangle. Buffer layout: 3 x (color, position) pairs
func (gpu *GPU) gp0TriangleShadedOpaque() {
	v0 := decodeVertex(gpu.GP0Command.Get(1), gpu.GP0Command.Get(0))
	v1 := decodeVertex(gpu.GP0Command.Get(3), gpu.GP0Command.Get(2))
	v2 := decodeVertex(gpu.GP0Command.Get(5), gpu.GP0Command.Get(4))

	gpu.Sink.Put(TriangleMsg(v0, v1, v2))
}

// GP0(0x38): shaded opaque quad. Buffer layout: 4 x (color, position) pairs
func (gpu *GPU) gp0QuadShadedOpaque() {
	v0 := decodeVertex(gpu.GP0Command.Get(1), gpu.GP0Command.Get(0))
	v1 := decodeVertex(gpu.GP0Command.Get(3), gpu.GP0Command.Get(2))
	v2 := decodeVertex(gpu.GP0Command.Get(5), gpu.GP0Command.Get(4))
	v3 := decodeVertex(gpu.GP0Command.Get(7), gpu.GP0Command.Get(6))

	gpu.Sink.Put(QuadMsg(v0, v1, v2, v3))
}

// GP0(0xA0): image load. Word 2 packs {width, height}; the resolution
// decides how many further words make up the pixel payload. Pixel data is
// drained but never stored, pixel semantics being out of scope
func (gpu *GPU) gp0ImageLoad() {
	res := gpu.GP0Command.Get(2)
	width := res & 0xffff
	height := (res >> 16) & 0xffff

	size := width * height
	// round up to the next even number of 16 bit pixels packed in 32 bit words
	size = (size + 1) &^ 1

	gpu.GP0CommandRemaining = size / 2
	if gpu.GP0CommandRemaining == 0 {
		gpu.GP0Mode = GP0_MODE_COMMAND
	} else {
		gpu.GP0Mode = GP0_MODE_IMAGE_LOAD
	}
}

// GP0(0xC0): image store. VRAM readback is out of scope; acknowledged as a
// no-op
func (gpu *GPU) gp0ImageStore() {
}
