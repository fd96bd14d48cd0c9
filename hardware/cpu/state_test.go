package cpu_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/cpu"
	"github.com/segacore/mdcore/test"
)

func TestInterruptPriority(t *testing.T) {
	var it cpu.Interrupts

	it.Raise(2)
	it.Raise(6)
	it.Raise(4)

	test.Equate(t, it.Highest(), uint8(6))

	it.Ack(6)
	test.Equate(t, it.Highest(), uint8(4))

	it.Ack(4)
	test.Equate(t, it.Highest(), uint8(2))

	it.Clear(2)
	test.Equate(t, it.Highest(), uint8(0))
}

func TestRaiseDoesNotMutateCPU(t *testing.T) {
	var s cpu.State
	var it cpu.Interrupts

	before := s
	it.Raise(6)
	test.Equate(t, s, before)
}
