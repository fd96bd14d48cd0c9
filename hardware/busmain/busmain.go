// Package busmain implements the Main-68k's address-space dispatcher:
// cartridge, Work-RAM, VDP ports, YM2612/PSG register windows, the
// controller I/O ports, the Z80 bus window, and the Mega-CD's Main-side
// register set, per spec.md §4.1 "Bus dispatch".
package busmain

import (
	"github.com/segacore/mdcore/hardware/controller"
	"github.com/segacore/mdcore/hardware/cpu"
	"github.com/segacore/mdcore/hardware/megacd"
	"github.com/segacore/mdcore/hardware/memory/bus"
	"github.com/segacore/mdcore/hardware/memory/cartridge"
	"github.com/segacore/mdcore/hardware/memory/memorymap"
	"github.com/segacore/mdcore/hardware/memory/workram"
	"github.com/segacore/mdcore/hardware/memory/z80ram"
	"github.com/segacore/mdcore/hardware/sound/fm"
	"github.com/segacore/mdcore/hardware/sound/psg"
	"github.com/segacore/mdcore/hardware/vdp"
	"github.com/segacore/mdcore/hardware/z80"
	"github.com/segacore/mdcore/logger"
)

var _ bus.CPUBus = (*Bus)(nil)

// Bus is the Main-68k's view of the machine.
type Bus struct {
	WorkRAM    *workram.RAM
	Bankswitch *cartridge.Bankswitch
	ExtRAM     *cartridge.ExternalRam
	VDP        *vdp.State
	FM         *fm.FM
	PSG        *psg.PSG
	Z80RAM     *z80ram.RAM
	PortA      *controller.IoPort
	PortB      *controller.IoPort
	PortC      *controller.IoPort
	MegaCD     *MegaCDWindow
	Interrupts *cpu.Interrupts
	Z80        *z80.State

	fmLatchPart0, fmLatchPart1 uint8
}

// MegaCDWindow bundles the Mega-CD components the Main-68k register
// window (spec.md §4.5) exposes, plus the Syncable Sub-68k clock that
// must be advanced before any cross-domain observation (spec.md §4.1
// invariant 1).
type MegaCDWindow struct {
	WordRAM *megacd.WordRAM
	PRGRAM  *megacd.PRGRAM
	Comm    *megacd.CommBlock
	IRQ     *megacd.IRQState
	Sub     bus.Syncable

	// MainCycle reports the Main-68k master-clock cycle currently in
	// flight, so syncSub can catch Sub up to it before any cross-domain
	// observation.
	MainCycle func() uint32

	Present bool // false when booted cartridge-only, per SPEC_FULL.md §4.5
}

func inRange(addr, start, end uint32) bool { return addr >= start && addr <= end }

// ReadByte/WriteByte give the Z80's bank window (busz80.Bus) a
// byte-granularity view of the same address decode ReadWord/WriteWord
// use, matching real hardware's treatment of a Z80 access as just
// another bus master (spec.md §3 "Z80State" bank window).
func (b *Bus) ReadByte(addr uint32) uint8 {
	even := addr&1 == 0
	v, _ := b.ReadWord(addr&^1, even, !even)
	if even {
		return uint8(v >> 8)
	}
	return uint8(v)
}

func (b *Bus) WriteByte(addr uint32, v uint8) {
	even := addr&1 == 0
	var word uint16
	if even {
		word = uint16(v) << 8
	} else {
		word = uint16(v)
	}
	b.WriteWord(addr&^1, even, !even, word)
}

// ReadWord satisfies bus.CPUBus.
func (b *Bus) ReadWord(address uint32, hi, lo bool) (uint16, error) {
	addr := address & 0xFFFFFF

	switch {
	case inRange(addr, memorymap.CartridgeStart, memorymap.CartridgeEnd):
		return b.readByteDevice(addr, hi, lo, func(a uint32) uint8 { return b.readCartridge(a) }), nil

	case inRange(addr, memorymap.MegaCDStart, memorymap.MegaCDEnd):
		return b.readMegaCD(addr), nil

	case inRange(addr, memorymap.Z80WindowStart, memorymap.Z80WindowEnd):
		if !b.z80HasBus() {
			return 0xFFFF, nil
		}
		return b.readByteDevice(addr, hi, lo, func(a uint32) uint8 { return b.Z80RAM.ReadByte(a) }), nil

	case addr == memorymap.Z80BusReqBank:
		var v uint16
		if b.z80HasBus() {
			v = 0x0100
		}
		return v, nil

	case inRange(addr, memorymap.IOPortStart, memorymap.IOPortEnd):
		return uint16(b.readIOPort(addr)), nil

	case inRange(addr, memorymap.VDPStart, memorymap.VDPEnd):
		return b.readVDP(addr), nil

	case inRange(addr, memorymap.YM2612Start, memorymap.YM2612End):
		return 0xFFFF, nil // YM2612's register port is write-only on real hardware

	case inRange(addr, memorymap.WorkRAMStart, memorymap.WorkRAMEnd):
		return b.WorkRAM.ReadWord(addr), nil
	}

	logger.Log("busmain", "read from unmapped address %#x", addr)
	return 0xFFFF, nil
}

// WriteWord satisfies bus.CPUBus.
func (b *Bus) WriteWord(address uint32, hi, lo bool, value uint16) error {
	addr := address & 0xFFFFFF

	switch {
	case inRange(addr, memorymap.CartridgeStart, memorymap.CartridgeEnd):
		b.writeByteDevice(addr, hi, lo, value, func(a uint32, v uint8) { b.ExtRAM.WriteByte(a, v) })

	case inRange(addr, memorymap.MegaCDStart, memorymap.MegaCDEnd):
		b.writeMegaCD(addr, value)

	case inRange(addr, memorymap.Z80WindowStart, memorymap.Z80WindowEnd):
		if b.z80HasBus() {
			b.writeByteDevice(addr, hi, lo, value, func(a uint32, v uint8) { b.Z80RAM.WriteByte(a, v) })
		}

	case addr == memorymap.Z80BusReqBank:
		if b.Z80 != nil {
			b.Z80.BusReq = value&0x0100 != 0
		}

	case addr == memorymap.Z80BusReqBank+0x100:
		if b.Z80 != nil {
			b.Z80.ResetIn = value&0x0100 == 0
		}

	case addr == memorymap.MainMegaCDResetHalt:
		// Fixed mirror of the RESET, HALT register outside the banked
		// Mega-CD window; only the level-2 interrupt trigger (high byte,
		// bit 0) is wired here.
		if b.MegaCD != nil && b.MegaCD.Present && value&0x0100 != 0 {
			b.MegaCD.syncSub()
			b.MegaCD.IRQ.RequestIRQ2()
		}

	case addr == memorymap.MainMegaCDMemMode:
		// Fixed mirror of the memory mode/write protect register; only
		// the WORD-RAM DMNA hand-off bit (low byte, bit 1) is wired here.
		if b.MegaCD != nil && b.MegaCD.Present && lo && value&0x02 != 0 {
			b.MegaCD.syncSub()
			b.MegaCD.WordRAM.WriteDMNA(true)
		}

	case inRange(addr, memorymap.IOPortStart, memorymap.IOPortEnd):
		b.writeIOPort(addr, uint8(value))

	case inRange(addr, memorymap.VDPStart, memorymap.VDPEnd):
		b.writeVDP(addr, value)

	case inRange(addr, memorymap.YM2612Start, memorymap.YM2612End):
		b.writeByteDevice(addr, hi, lo, value, b.writeYM2612)

	case inRange(addr, memorymap.WorkRAMStart, memorymap.WorkRAMEnd):
		b.WorkRAM.WriteWord(addr, value)

	default:
		logger.Log("busmain", "write to unmapped address %#x", addr)
	}
	return nil
}

func (b *Bus) readCartridge(addr uint32) uint8 {
	if b.Bankswitch != nil {
		return b.Bankswitch.ReadByte(addr)
	}
	return 0xFF
}

func (b *Bus) readByteDevice(addr uint32, hi, lo bool, read func(uint32) uint8) uint16 {
	switch {
	case hi && lo:
		return uint16(read(addr))<<8 | uint16(read(addr+1))
	case hi:
		return uint16(read(addr)) << 8
	case lo:
		return uint16(read(addr))
	}
	return 0
}

func (b *Bus) writeByteDevice(addr uint32, hi, lo bool, value uint16, write func(uint32, uint8)) {
	if hi {
		write(addr, uint8(value>>8))
	}
	if lo {
		write(addr+1, uint8(value))
	}
}

func (b *Bus) readIOPort(addr uint32) uint8 {
	switch addr {
	case memorymap.IOPortStart + 0x03:
		if b.PortA != nil {
			return b.PortA.ReadData()
		}
	case memorymap.IOPortStart + 0x05:
		if b.PortB != nil {
			return b.PortB.ReadData()
		}
	case memorymap.IOPortStart + 0x07:
		if b.PortC != nil {
			return b.PortC.ReadData()
		}
	}
	return 0xFF
}

func (b *Bus) writeIOPort(addr uint32, v uint8) {
	switch addr {
	case memorymap.IOPortStart + 0x03:
		if b.PortA != nil {
			b.PortA.WriteData(v)
		}
	case memorymap.IOPortStart + 0x05:
		if b.PortB != nil {
			b.PortB.WriteData(v)
		}
	case memorymap.IOPortStart + 0x07:
		if b.PortC != nil {
			b.PortC.WriteData(v)
		}
	}
}

func (b *Bus) readVDP(addr uint32) uint16 {
	switch addr & 0x1E {
	case 0x00, 0x02:
		return b.VDP.ReadData()
	case 0x04, 0x06:
		return b.VDP.ReadControl()
	}
	return 0xFFFF
}

func (b *Bus) writeVDP(addr uint32, v uint16) {
	switch addr & 0x1E {
	case 0x00, 0x02:
		b.VDP.WriteData(v)
	case 0x04, 0x06:
		b.VDP.WriteControl(v)
	case 0x10, 0x12, 0x14, 0x16:
		// PSG port: only the low byte is wired on real hardware.
		if b.PSG != nil {
			b.PSG.WriteData(uint8(v))
		}
	}
}

// writeYM2612 handles writes to the 0xA04000-0xA04003 window, dispatched
// directly rather than through writeVDP since YM2612 lives in a
// completely different address range. Reads of that window are answered
// with 0xFFFF in ReadWord.
func (b *Bus) writeYM2612(addr uint32, v uint8) {
	switch addr & 0x3 {
	case 0x0:
		b.fmLatchPart0 = v
	case 0x1:
		if b.FM != nil {
			b.FM.WriteRegister(0, b.fmLatchPart0, v)
		}
	case 0x2:
		b.fmLatchPart1 = v
	case 0x3:
		if b.FM != nil {
			b.FM.WriteRegister(1, b.fmLatchPart1, v)
		}
	}
}

func (b *Bus) readMegaCD(addr uint32) uint16 {
	if b.MegaCD == nil || !b.MegaCD.Present {
		return 0xFFFF
	}
	b.MegaCD.syncSub()

	off := addr - memorymap.MegaCDStart
	switch {
	case inRange(addr, memorymap.WordRAMStart, memorymap.WordRAMEnd):
		wo := addr - memorymap.WordRAMStart
		return uint16(b.MegaCD.WordRAM.ReadByteMain(wo))<<8 | uint16(b.MegaCD.WordRAM.ReadByteMain(wo+1))
	case off == memorymap.RegCommFlag-memorymap.MegaCDStart:
		return b.MegaCD.Comm.Flag
	case off >= memorymap.RegCommStat0-memorymap.MegaCDStart && off < memorymap.RegCommStat0-memorymap.MegaCDStart+16:
		idx := (off - (memorymap.RegCommStat0 - memorymap.MegaCDStart)) / 2
		return b.MegaCD.Comm.Status[idx]
	}
	return uint16(b.MegaCD.PRGRAM.ReadByteMain(off))<<8 | uint16(b.MegaCD.PRGRAM.ReadByteMain(off+1))
}

func (b *Bus) writeMegaCD(addr uint32, v uint16) {
	if b.MegaCD == nil || !b.MegaCD.Present {
		return
	}
	b.MegaCD.syncSub()

	off := addr - memorymap.MegaCDStart
	switch {
	case inRange(addr, memorymap.WordRAMStart, memorymap.WordRAMEnd):
		wo := addr - memorymap.WordRAMStart
		b.MegaCD.WordRAM.WriteByteMain(wo, uint8(v>>8))
		b.MegaCD.WordRAM.WriteByteMain(wo+1, uint8(v))
	case off == memorymap.RegCommFlag-memorymap.MegaCDStart:
		b.MegaCD.Comm.Flag = (b.MegaCD.Comm.Flag & 0x00FF) | (v & 0xFF00)
	case off >= memorymap.RegCommCmd0-memorymap.MegaCDStart && off < memorymap.RegCommCmd0-memorymap.MegaCDStart+16:
		idx := (off - (memorymap.RegCommCmd0 - memorymap.MegaCDStart)) / 2
		b.MegaCD.Comm.Command[idx] = v
	}
}

// z80HasBus reports whether Main currently holds the Z80's bus, per
// writes to the BUSREQ register (0xA11100).
func (b *Bus) z80HasBus() bool {
	return b.Z80 != nil && b.Z80.BusReq
}

// Z80Running reports whether the Z80 should execute this step: it is
// held while Main asserts either BUSREQ (0xA11100) or RESET
// (0xA11200), matching the real hardware's two independent stall
// conditions, mirrored onto z80.State so the injected Z80 interpreter's
// own Halted() observes the same flags via State.Skipped().
func (b *Bus) Z80Running() bool {
	return b.Z80 == nil || !b.Z80.Skipped()
}

func (w *MegaCDWindow) syncSub() {
	if w.Sub != nil && w.MainCycle != nil {
		w.Sub.SyncTo(w.MainCycle())
	}
}
