package megacd_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/cd/cdda"
	"github.com/segacore/mdcore/hardware/megacd"
	"github.com/segacore/mdcore/test"
)

type fakeBRAMFrontend struct {
	gotOp   int
	gotName string
}

func (f *fakeBRAMFrontend) SeekTrack(track int, mode cdda.PlayMode) {}
func (f *fakeBRAMFrontend) SeekSector(sector uint32)                {}
func (f *fakeBRAMFrontend) BRAMOperation(op int, filename string) (uint16, bool) {
	f.gotOp = op
	f.gotName = filename
	return 0, true
}

func TestTrampolineDecodesBRAMFilenameFromA0(t *testing.T) {
	fe := &fakeBRAMFrontend{}
	tr := &megacd.Trampoline{FE: fe}

	// "SAVE000001" packed two ASCII bytes per word, as a real Sub-68k
	// program would lay out the 11-byte filename buffer at A0.
	words := map[uint32]uint16{
		0x1000: 'S'<<8 | 'A',
		0x1002: 'V'<<8 | 'E',
		0x1004: '0'<<8 | '0',
		0x1006: '0'<<8 | '0',
		0x1008: '0'<<8 | '1',
	}
	read := func(addr uint32) uint16 { return words[addr] }

	opcode, _ := tr.Intercept(0x04, 0x1000, read) // service 0x04 == BRAM write, not MSCPAUSEOFF: BRAM codes are checked first
	test.ExpectEquality(t, opcode, uint16(0x4E75))
	test.ExpectEquality(t, fe.gotOp, 0x04)
	test.ExpectEquality(t, fe.gotName, "SAVE000001")
}

func TestWordRAM2MArbitration(t *testing.T) {
	var w megacd.WordRAM

	// Power-on: DMNA and RET both clear, so mainOwns2M() is true.
	w.WriteByteMain(0x10, 0xAB)
	test.ExpectEquality(t, w.ReadByteMain(0x10), uint8(0xAB))

	// Main requests hand-off; Sub now owns the bank.
	w.WriteDMNA(true)
	w.WriteByteMain(0x20, 0xCD)
	test.ExpectInequality(t, w.ReadByteMain(0x20), uint8(0xCD))

	w.WriteByteSub(0x20, 0xCD)
	test.ExpectEquality(t, w.ReadByteSub(0x20), uint8(0xCD))

	// Sub releases back to Main.
	w.WriteRET(true)
	w.WriteByteMain(0x30, 0xEF)
	test.ExpectEquality(t, w.ReadByteMain(0x30), uint8(0xEF))
}

func TestWordRAM1MInterleave(t *testing.T) {
	var w megacd.WordRAM
	w.SetMode1M(true)

	w.WriteByteMain(0x10, 0x11)
	w.WriteByteSub(0x10, 0x22)

	test.ExpectEquality(t, w.ReadByteMain(0x10), uint8(0x11))
	test.ExpectEquality(t, w.ReadByteSub(0x10), uint8(0x22))
}

func TestPRGRAMBankWindowAndWriteProtect(t *testing.T) {
	var p megacd.PRGRAM
	p.SetWriteProtect(1) // protect the first 512 bytes

	p.WriteByteSub(0x100, 0xAA)
	test.ExpectInequality(t, p.ReadByteSub(0x100), uint8(0xAA))

	p.WriteByteSub(0x1000, 0xBB)
	test.ExpectEquality(t, p.ReadByteSub(0x1000), uint8(0xBB))

	p.SetBank(0)
	test.ExpectEquality(t, p.ReadByteMain(0x1000), uint8(0xBB))

	p.SetBank(1)
	test.ExpectInequality(t, p.ReadByteMain(0x1000), uint8(0xBB))
}

func TestIRQ1LatchAndTake(t *testing.T) {
	var irq megacd.IRQState
	irq.EnableMask = 1 << 1

	irq.LatchIRQ1()
	test.ExpectEquality(t, irq.TakeIRQ1(), true)
	test.ExpectEquality(t, irq.TakeIRQ1(), false)
}

func TestIRQ1NotLatchedWhenDisabled(t *testing.T) {
	var irq megacd.IRQState
	irq.LatchIRQ1()
	test.ExpectEquality(t, irq.TakeIRQ1(), false)
}

func TestIRQ3CountdownExpiresAndReloads(t *testing.T) {
	var irq megacd.IRQState
	irq.EnableMask = 1 << 3
	irq.SetIRQ3Reload(2, true)

	fired := 0
	for i := 0; i < 7; i++ {
		if irq.TickIRQ3() {
			fired++
		}
	}
	test.ExpectEquality(t, fired, 2)
}

func TestIRQ3DoesNotReloadFromTheSameCallThatSetIt(t *testing.T) {
	var irq megacd.IRQState
	irq.EnableMask = 1 << 3
	irq.SetIRQ3Reload(5, true)
	irq.SetIRQ3Reload(1, true)

	// The countdown programmed by the first call (5) is still running,
	// not the second (1): this is the documented reload inconsistency.
	fired := irq.TickIRQ3()
	test.ExpectEquality(t, fired, false)
}
