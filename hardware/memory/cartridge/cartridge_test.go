package cartridge_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/memory/cartridge"
	"github.com/segacore/mdcore/test"
)

func TestBankZeroLocked(t *testing.T) {
	rom := make([]byte, cartridge.BankSize*2)
	rom[0] = 0xAA
	rom[cartridge.BankSize] = 0xBB

	b := cartridge.NewBankswitch(rom)
	b.SetBank(0, 1)
	test.Equate(t, b.ReadByte(0), uint8(0xAA))
}

func TestBankswitchRemap(t *testing.T) {
	rom := make([]byte, cartridge.BankSize*3)
	rom[cartridge.BankSize*2] = 0x42

	b := cartridge.NewBankswitch(rom)
	b.SetBank(1, 2)
	test.Equate(t, b.ReadByte(cartridge.BankSize), uint8(0x42))
}

func TestExternalRamUnmapped(t *testing.T) {
	e := cartridge.NewExternalRam(512, cartridge.DataOdd, true)
	test.Equate(t, e.ReadByte(1), uint8(0xFF))
	e.Mapped = true
	e.WriteByte(1, 0x55)
	test.Equate(t, e.ReadByte(1), uint8(0x55))
	test.Equate(t, e.ReadByte(0), uint8(0xFF))
}

func TestOpenEmptyROM(t *testing.T) {
	_, err := cartridge.Open(nil)
	test.ExpectFailure(t, err)
}
