package emulator

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Machine owns the CPU and Bus and drives the fetch/decode/execute loop.
// It exposes a cooperative shutdown flag so a host goroutine can ask the
// run loop to stop between steps, and recovers the panics the interpreter
// raises on fatal conditions (see errors.go), turning them back into a
// returned error instead of crashing the process.
type Machine struct {
	CPU *CPU
	Bus *Bus

	shutdown atomic.Bool
}

// NewMachine wires a fresh CPU to a fresh Bus built around `bios`. GPU draw
// messages are handed off to `sink`, a rendezvous the presentation side
// drains independently (see message.go)
func NewMachine(bios *BIOS, sink *GpuMsgSink) *Machine {
	bus := NewBus(bios, sink)
	return &Machine{
		CPU: NewCPU(bus),
		Bus: bus,
	}
}

// Shutdown asks Run to stop at the next opportunity. Safe to call from any
// goroutine
func (m *Machine) Shutdown() {
	m.shutdown.Store(true)
}

// Run steps the CPU until Shutdown is called or the interpreter hits a
// fatal condition, in which case the MachineError that caused it is
// returned. A nil return means Run stopped because of Shutdown
func (m *Machine) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			merr, ok := r.(*MachineError)
			if !ok {
				panic(r)
			}
			slog.Error("machine: halted on fatal condition", "pc", m.CPU.CurrentPC, "err", merr)
			err = merr
		}
	}()

	for !m.shutdown.Load() {
		m.CPU.Step()
	}
	return nil
}

// Step executes a single CPU instruction and recovers any MachineError the
// same way Run does, for callers driving the loop themselves (e.g. tests
// or a debugger front-end stepping one instruction at a time)
func (m *Machine) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			merr, ok := r.(*MachineError)
			if !ok {
				panic(r)
			}
			err = merr
		}
	}()

	m.CPU.Step()
	return nil
}

func (m *Machine) String() string {
	return fmt.Sprintf("Machine{pc: 0x%08x}", m.CPU.PC)
}
