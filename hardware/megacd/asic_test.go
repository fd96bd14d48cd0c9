package megacd_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/megacd"
	"github.com/segacore/mdcore/test"
)

// writeWord writes a big-endian word into WORD-RAM through the Sub side,
// matching how the ASIC itself reads trace table and stamp map entries.
func writeWord(w *megacd.WordRAM, addr uint32, v uint16) {
	w.WriteByteSub(addr, uint8(v>>8))
	w.WriteByteSub(addr+1, uint8(v))
}

func TestGraphicsASICTransparentStampLeavesBufferZero(t *testing.T) {
	var w megacd.WordRAM
	w.SetMode1M(true) // the graphics ASIC only operates in 1M mode
	var irq megacd.IRQState
	irq.EnableMask = 1 << 1

	const traceBase, stampBase, bufBase = 0x0000, 0x1000, 0x2000

	// One row, zero delta: samples stamp map entry 0 (transparent) the
	// whole way across.
	writeWord(&w, traceBase, 0)
	writeWord(&w, traceBase+2, 0)
	writeWord(&w, traceBase+4, 0)
	writeWord(&w, traceBase+6, 0)

	a := &megacd.GraphicsASIC{
		WordRAM:           &w,
		IRQ:               &irq,
		TraceTableBase:    traceBase,
		StampMapBase:      stampBase,
		ImageBufferBase:   bufBase,
		ImageBufferWidth:  1,
		ImageBufferHeight: 1,
		IRQEnabled:        true,
	}
	a.Render()

	test.ExpectEquality(t, w.ReadByteSub(bufBase), uint8(0))
	test.ExpectEquality(t, a.ImageBufferHeight, 0)
	test.ExpectEquality(t, irq.TakeIRQ1(), true)
}

func TestGraphicsASICOpaqueStampPopulatesBuffer(t *testing.T) {
	var w megacd.WordRAM
	w.SetMode1M(true)
	var irq megacd.IRQState

	const traceBase, stampBase, bufBase = 0x0000, 0x1000, 0x2000

	writeWord(&w, traceBase, 0)
	writeWord(&w, traceBase+2, 0)
	writeWord(&w, traceBase+4, 1<<13) // delta_x = 1.0 in 3.13 fixed point
	writeWord(&w, traceBase+6, 0)

	// Stamp map entry at (0,0): stamp index 1 (opaque), no rotation/flip.
	writeWord(&w, stampBase, 1)

	// Stamp 1's pixel data: every nibble set to 0xF.
	stampBytes := uint32(16 * 16 / 2)
	for i := uint32(0); i < stampBytes; i++ {
		w.WriteByteSub(uint32(1)*stampBytes+i, 0xFF)
	}

	a := &megacd.GraphicsASIC{
		WordRAM:           &w,
		IRQ:               &irq,
		TraceTableBase:    traceBase,
		StampMapBase:      stampBase,
		ImageBufferBase:   bufBase,
		ImageBufferWidth:  1,
		ImageBufferHeight: 1,
	}
	a.Render()

	test.ExpectEquality(t, w.ReadByteSub(bufBase), uint8(0xFF))
}
