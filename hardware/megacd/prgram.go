package megacd

import "github.com/segacore/mdcore/random"

const PRGRAMSize = 512 * 1024

// PRGRAM is the Sub-68k's program RAM, bankswitched into the Main-68k's
// address space 128 KiB at a time and write-protectable by the Sub.
type PRGRAM struct {
	data [PRGRAMSize]byte

	writeProtectEnd uint16 // protect [0, writeProtectEnd) in 512-byte units
	bank            uint8  // which 128 KiB bank is visible to Main
}

func (p *PRGRAM) PowerOn(rnd *random.Random) {
	rnd.Fill(p.data[:], 0)
}

// SetBank selects the 128 KiB window visible to the Main-68k.
func (p *PRGRAM) SetBank(bank uint8) { p.bank = bank & 0x3 }

// SetWriteProtect sets the write-protected region size in 512-byte
// units, per the Sub-68k's write-protect register.
func (p *PRGRAM) SetWriteProtect(units uint16) { p.writeProtectEnd = units }

func (p *PRGRAM) protected(addr uint32) bool {
	return addr < uint32(p.writeProtectEnd)*512
}

// ReadByteSub / WriteByteSub access the full 512 KiB directly.
func (p *PRGRAM) ReadByteSub(addr uint32) uint8 { return p.data[addr%PRGRAMSize] }

func (p *PRGRAM) WriteByteSub(addr uint32, v uint8) {
	if p.protected(addr) {
		return
	}
	p.data[addr%PRGRAMSize] = v
}

// ReadByteMain reads through the current 128 KiB bank window.
func (p *PRGRAM) ReadByteMain(addr uint32) uint8 {
	base := uint32(p.bank) * (128 * 1024)
	return p.data[(base+addr)%PRGRAMSize]
}
