package emulator

import "sync"

// Vertex carries a decoded GP0 vertex: signed position, unsigned color
type Vertex struct {
	X, Y    int32
	R, G, B uint32
}

// GpuMsgKind tags the variant carried by a GpuMsg
type GpuMsgKind int

const (
	GpuMsgTriangle GpuMsgKind = iota
	GpuMsgQuad
	GpuMsgOffset
	GpuMsgDraw
)

// GpuMsg is the external draw-message format the GPU front-end emits: a
// tagged union of a 3-vertex triangle, a 4-vertex quad, a drawing-offset
// change, or a draw barrier. What consumes these (rasterization,
// presentation) is external to the machine core (§1).
type GpuMsg struct {
	Kind     GpuMsgKind
	Vertices [4]Vertex // only the first 3 are valid for GpuMsgTriangle
	OffsetX  int32
	OffsetY  int32
}

func TriangleMsg(v0, v1, v2 Vertex) GpuMsg {
	return GpuMsg{Kind: GpuMsgTriangle, Vertices: [4]Vertex{v0, v1, v2, {}}}
}

func QuadMsg(v0, v1, v2, v3 Vertex) GpuMsg {
	return GpuMsg{Kind: GpuMsgQuad, Vertices: [4]Vertex{v0, v1, v2, v3}}
}

func OffsetMsg(x, y int32) GpuMsg {
	return GpuMsg{Kind: GpuMsgOffset, OffsetX: x, OffsetY: y}
}

func DrawMsg() GpuMsg {
	return GpuMsg{Kind: GpuMsgDraw}
}

// GpuMsgSink is a single-slot rendezvous hand-off for GpuMsg values. Put
// blocks the producer while a value is already present in the slot; Consume
// is non-blocking and returns the value (if any) while waking any producer
// waiting on Put. This is deliberately not a queue: a queue would let the
// emulator thread race ahead of the presentation thread, and the spec calls
// for strict producer-blocks-until-consumed coupling (§5, §9).
type GpuMsgSink struct {
	mu     sync.Mutex
	cond   *sync.Cond
	full   bool
	value  GpuMsg
	closed bool
}

func NewGpuMsgSink() *GpuMsgSink {
	s := &GpuMsgSink{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Put blocks while the slot is occupied, then stores `v`. If the sink has
// been closed (shutdown), Put returns immediately without storing
func (s *GpuMsgSink) Put(v GpuMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.full && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return
	}
	s.value = v
	s.full = true
	s.cond.Broadcast()
}

// Consume is non-blocking: if a value is present it is taken and any
// producer waiting in Put is woken, otherwise Consume returns ok == false
func (s *GpuMsgSink) Consume() (v GpuMsg, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return GpuMsg{}, false
	}
	v = s.value
	s.full = false
	s.cond.Broadcast()
	return v, true
}

// Close unblocks any producer currently waiting in Put, used during
// shutdown so the emulator thread doesn't hang forever on a full slot that
// the presentation thread has stopped draining
func (s *GpuMsgSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
}
