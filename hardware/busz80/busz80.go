// Package busz80 implements the Z80's address-space dispatcher: its own
// 8 KiB RAM, the YM2612 and PSG register ports it drives directly, and
// the bank window into Main-68k address space, per spec.md §4.1 "Bus
// dispatch" and §3 "Z80State".
package busz80

import (
	"github.com/segacore/mdcore/hardware/memory/memorymap"
	"github.com/segacore/mdcore/hardware/sound/fm"
	"github.com/segacore/mdcore/hardware/sound/psg"
	"github.com/segacore/mdcore/hardware/memory/z80ram"
	"github.com/segacore/mdcore/hardware/z80"
	"github.com/segacore/mdcore/logger"
)

// MainBus is the minimum Main-68k surface the Z80's bank window needs to
// reach outside its own RAM (cartridge, Work-RAM, everything busmain.Bus
// already decodes).
type MainBus interface {
	ReadByte(addr uint32) uint8
	WriteByte(addr uint32, v uint8)
}

// Bus is the Z80's view of the machine.
type Bus struct {
	RAM   *z80ram.RAM
	FM    *fm.FM
	PSG   *psg.PSG
	State *z80.State
	Main  MainBus

	fmLatchPart0, fmLatchPart1 uint8
}

// ReadByte implements the Z80's 8-bit bus (the Z80 has no 16-bit
// accesses of its own; Main-68k word accesses into the Z80's window are
// split into two of these by busmain).
func (b *Bus) ReadByte(addr uint32) uint8 {
	a := addr & 0xFFFF

	switch {
	case a <= memorymap.Z80RAMEnd:
		return b.RAM.ReadByte(a)
	case a >= memorymap.Z80BankWindowStart && a <= memorymap.Z80BankWindowEnd:
		if b.Main != nil && b.State != nil {
			return b.Main.ReadByte(b.State.BankAddress(uint16(a)))
		}
	}
	logger.Log("busz80", "read from unmapped address %#x", a)
	return 0xFF
}

// WriteByte implements the Z80's 8-bit bus.
func (b *Bus) WriteByte(addr uint32, v uint8) {
	a := addr & 0xFFFF

	switch {
	case a <= memorymap.Z80RAMEnd:
		b.RAM.WriteByte(a, v)
	case a == memorymap.Z80YM2612:
		b.fmLatchPart0 = v
	case a == memorymap.Z80YM2612+1:
		if b.FM != nil {
			b.FM.WriteRegister(0, b.fmLatchPart0, v)
		}
	case a == memorymap.Z80YM2612+2:
		b.fmLatchPart1 = v
	case a == memorymap.Z80YM2612+3:
		if b.FM != nil {
			b.FM.WriteRegister(1, b.fmLatchPart1, v)
		}
	case a == 0x6000:
		if b.State != nil {
			b.State.BankRegister = (b.State.BankRegister >> 1) | (uint32(v&1) << 23)
		}
	case a == 0x7F11:
		if b.PSG != nil {
			b.PSG.WriteData(v)
		}
	case a >= memorymap.Z80BankWindowStart && a <= memorymap.Z80BankWindowEnd:
		if b.Main != nil && b.State != nil {
			b.Main.WriteByte(b.State.BankAddress(uint16(a)), v)
		}
	default:
		logger.Log("busz80", "write to unmapped address %#x", a)
	}
}
