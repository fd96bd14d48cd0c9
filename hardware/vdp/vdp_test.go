package vdp_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/vdp"
	"github.com/segacore/mdcore/test"
)

type fakeFrontend struct {
	lastColour uint8
	lastRGB    uint16
	lines      int
}

func (f *fakeFrontend) ColourUpdated(index uint8, rgb444 uint16) {
	f.lastColour = index
	f.lastRGB = rgb444
}

func (f *fakeFrontend) ScanlineRendered(y int, pixels []uint8, left, right, screenW, screenH int) {
	f.lines++
}

type fakeBus struct{ word uint16 }

func (b fakeBus) ReadWord(addr uint32) uint16 { return b.word }

func writeCommand(s *vdp.State, low, high uint16) {
	s.WriteControl(low)
	s.WriteControl(high)
}

func TestControlWordLatchesAddressAndCode(t *testing.T) {
	fe := &fakeFrontend{}
	s := vdp.New(fe, fakeBus{})

	// VRAM write at address 0x1234, code 0b0001 (VRAM write).
	writeCommand(s, 0x1234&0x3FFF|0x4000, 0x0000|uint16((0x1234>>14)&0x7))
	s.WriteData(0xABCD)

	// the auto-increment register (15) is still 0, so the address has not
	// moved and the read returns the word just written.
	got := s.ReadData()
	test.Equate(t, got, uint16(0xABCD))
}

func TestRegisterWriteTakesEffectImmediately(t *testing.T) {
	fe := &fakeFrontend{}
	s := vdp.New(fe, fakeBus{})

	s.WriteControl(0x8134) // reg 1, value 0x34: vint enabled, display bit (0x40) clear
	test.Equate(t, s.VIntEnabled, true)
	test.Equate(t, s.DisplayEnabled, false)
}

func TestCRAMWriteNotifiesFrontend(t *testing.T) {
	fe := &fakeFrontend{}
	s := vdp.New(fe, fakeBus{})

	// code 0b0011 (CRAM write) at address 0.
	writeCommand(s, 0xC000, 0x0000)
	s.WriteData(0x0E0E)

	test.Equate(t, fe.lastColour, uint8(0))
	test.Equate(t, fe.lastRGB, uint16(0x0E0E&0x0EEE))
}

func TestRenderScanlineInvokesFrontend(t *testing.T) {
	fe := &fakeFrontend{}
	s := vdp.New(fe, fakeBus{})

	s.RenderScanline(0)
	test.Equate(t, fe.lines, 1)
}
