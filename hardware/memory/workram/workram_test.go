package workram_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/memory/workram"
	"github.com/segacore/mdcore/test"
)

func TestWordReadWrite(t *testing.T) {
	var r workram.RAM
	r.WriteWord(0x100, 0xBEEF)
	test.Equate(t, r.ReadWord(0x100), uint16(0xBEEF))
	test.Equate(t, r.ReadByte(0x100), uint8(0xBE))
	test.Equate(t, r.ReadByte(0x101), uint8(0xEF))
}

func TestWraps(t *testing.T) {
	var r workram.RAM
	r.WriteWord(0, 0x1234)
	test.Equate(t, r.ReadWord(workram.Size), uint16(0x1234))
}
