package emulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGpuMsgSinkConsumeEmpty(t *testing.T) {
	sink := NewGpuMsgSink()

	_, ok := sink.Consume()
	assert.False(t, ok)
}

func TestGpuMsgSinkPutConsumeRoundTrip(t *testing.T) {
	sink := NewGpuMsgSink()

	sink.Put(DrawMsg())

	msg, ok := sink.Consume()
	assert.True(t, ok)
	assert.Equal(t, GpuMsgDraw, msg.Kind)

	_, ok = sink.Consume()
	assert.False(t, ok)
}

// A second Put blocks until the first value is drained, modeling the
// strict single-slot rendezvous (no queueing, see message.go)
func TestGpuMsgSinkPutBlocksUntilConsumed(t *testing.T) {
	sink := NewGpuMsgSink()
	sink.Put(OffsetMsg(1, 2))

	done := make(chan struct{})
	go func() {
		sink.Put(OffsetMsg(3, 4))
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second Put returned before the first value was consumed")
	case <-time.After(20 * time.Millisecond):
	}

	msg, ok := sink.Consume()
	assert.True(t, ok)
	assert.Equal(t, int32(1), msg.OffsetX)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Put never unblocked after Consume")
	}

	msg, ok = sink.Consume()
	assert.True(t, ok)
	assert.Equal(t, int32(3), msg.OffsetX)
}

func TestGpuMsgSinkCloseUnblocksPut(t *testing.T) {
	sink := NewGpuMsgSink()
	sink.Put(DrawMsg())

	done := make(chan struct{})
	go func() {
		sink.Put(DrawMsg())
		close(done)
	}()

	sink.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Put never unblocked after Close")
	}
}
