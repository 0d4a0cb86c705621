package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhysicalKUSEG(t *testing.T) {
	assert.Equal(t, uint32(0x00001000), Physical(0x00001000))
}

func TestPhysicalKSEG0(t *testing.T) {
	// KSEG0 mirrors the bottom 512MB with no translation overhead
	assert.Equal(t, uint32(0x00001000), Physical(0x80001000))
}

func TestPhysicalKSEG1(t *testing.T) {
	// KSEG1 mirrors the same window, uncached
	assert.Equal(t, uint32(0x00001000), Physical(0xa0001000))
}

func TestPhysicalKSEG2(t *testing.T) {
	// KSEG2 (cache control, etc) passes through unmasked
	assert.Equal(t, uint32(0xfffe0130), Physical(0xfffe0130))
}

func TestPhysicalBiosEntryPoint(t *testing.T) {
	assert.Equal(t, uint32(0x1fc00000), Physical(0xbfc00000))
}
