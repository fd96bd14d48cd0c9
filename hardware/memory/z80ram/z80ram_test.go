package z80ram_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/memory/z80ram"
	"github.com/segacore/mdcore/test"
)

func TestReadWriteWraps(t *testing.T) {
	var r z80ram.RAM
	r.WriteByte(0, 0x42)
	r.WriteByte(z80ram.Size, 0x99) // wraps to address 0

	test.Equate(t, r.ReadByte(0), uint8(0x99))
}

func TestPeekPokeMirrorReadWrite(t *testing.T) {
	var r z80ram.RAM
	test.Equate(t, r.Poke(10, 0x55), nil)

	got, err := r.Peek(10)
	test.Equate(t, err, nil)
	test.Equate(t, got, uint16(0x55))
}
