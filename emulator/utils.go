package emulator

import "fmt"

func panicFmt(format string, a ...interface{}) {
	panic(fmt.Sprintf(format, a...))
}

// Returns 1 if `v` is true, 0 otherwise. Used to pack bools into bitfields
func oneIfTrue(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// Sign-extends the low `bits` of `v` to a full 32 bit value, following the
// `<<, arithmetic >>` trick used throughout the GPU and CPU register layouts
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
