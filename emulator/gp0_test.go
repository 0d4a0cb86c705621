package emulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGPU(t *testing.T) (*GPU, *GpuMsgSink) {
	t.Helper()
	sink := NewGpuMsgSink()
	return NewGPU(sink), sink
}

// TestGP0MonochromeQuadEmitsOneQuadMessage exercises the end-to-end shape of
// scenario 4: push a 0x28 header plus its 4 vertex words, and exactly one
// quad message should reach the sink, decoded per §4.4's position/color
// layout (low 24 bits of the header carry the color, vertices are {x,y}
// position words in command-buffer order).
func TestGP0MonochromeQuadEmitsOneQuadMessage(t *testing.T) {
	gpu, sink := newTestGPU(t)

	gpu.GP0(0x28000080) // quad mono opaque, color = {R:0x80, G:0, B:0}
	gpu.GP0(0x00000000) // v0 (0, 0)
	gpu.GP0(0x000000ff) // v1 (255, 0)
	gpu.GP0(0x00ff0000) // v2 (0, 255)
	gpu.GP0(0x00ff00ff) // v3 (255, 255)

	msg, ok := sink.Consume()
	assert.True(t, ok)
	assert.Equal(t, GpuMsgQuad, msg.Kind)

	want := [4]Vertex{
		{X: 0, Y: 0, R: 0x80},
		{X: 255, Y: 0, R: 0x80},
		{X: 0, Y: 255, R: 0x80},
		{X: 255, Y: 255, R: 0x80},
	}
	assert.Equal(t, want, msg.Vertices)

	_, ok = sink.Consume()
	assert.False(t, ok, "exactly one message should have been emitted")
}

// TestGP0DrawingOffsetEmitsOffsetThenDrawWithNoGap pins §8 invariant 6: a
// single GP0(0xE5) produces exactly two messages, offset followed by draw,
// with nothing in between.
func TestGP0DrawingOffsetEmitsOffsetThenDrawWithNoGap(t *testing.T) {
	gpu, sink := newTestGPU(t)

	// x = 10, y = -5 (11 bit signed fields). GP0 runs on its own goroutine:
	// its second Put blocks until the offset message has been consumed
	done := make(chan struct{})
	go func() {
		gpu.GP0(0xe53fd80a)
		close(done)
	}()

	var offset GpuMsg
	var ok bool
	for deadline := time.Now().Add(time.Second); !ok && time.Now().Before(deadline); {
		offset, ok = sink.Consume()
	}
	assert.True(t, ok)
	assert.Equal(t, GpuMsgOffset, offset.Kind)
	assert.EqualValues(t, 10, offset.OffsetX)
	assert.EqualValues(t, -5, offset.OffsetY)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("GP0 never returned after the offset message was consumed")
	}

	draw, ok := sink.Consume()
	assert.True(t, ok)
	assert.Equal(t, GpuMsgDraw, draw.Kind)

	_, ok = sink.Consume()
	assert.False(t, ok)
}

func TestGP0UnknownOpcodePanics(t *testing.T) {
	gpu, _ := newTestGPU(t)

	assert.Panics(t, func() {
		gpu.GP0(0x80000000)
	})
}

func TestGP0ImageLoadDrainsPixelWordsWithoutEmittingMessages(t *testing.T) {
	gpu, sink := newTestGPU(t)

	gpu.GP0(0xa0000000) // image load header
	gpu.GP0(0x00000000) // dest coordinates, unused
	gpu.GP0(0x00020002) // width=2, height=2 -> 4 pixels -> 2 words
	assert.Equal(t, GP0_MODE_IMAGE_LOAD, gpu.GP0Mode)

	gpu.GP0(0x11111111)
	assert.Equal(t, GP0_MODE_IMAGE_LOAD, gpu.GP0Mode)
	gpu.GP0(0x22222222)
	assert.Equal(t, GP0_MODE_COMMAND, gpu.GP0Mode)

	_, ok := sink.Consume()
	assert.False(t, ok, "image load never emits a draw message")
}
