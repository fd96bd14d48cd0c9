// Package cartridge implements the Main-68k cartridge address space:
// the eight-entry 512 KiB bankswitch table and the external (battery or
// flash-backed) save RAM, per spec.md §3 "CartridgeBankswitch" and
// "ExternalRam".
package cartridge

import (
	"github.com/segacore/mdcore/curated"
	"github.com/segacore/mdcore/logger"
)

// BankSize is the width of one cartridge bank.
const BankSize = 512 * 1024

// Space is the total addressable cartridge window.
const Space = 4 * 1024 * 1024

const bankCount = Space / BankSize

// DataSize enumerates ExternalRam's byte-lane wiring.
type DataSize int

const (
	DataBoth DataSize = iota // full 16-bit bus
	DataOdd                  // only odd (low) byte lane wired
	DataEven                 // only even (high) byte lane wired
)

// ExternalRam models cartridge save RAM: up to 64 KiB, optionally mapped
// into the address space, optionally non-volatile.
type ExternalRam struct {
	data       []byte
	Mapped     bool
	DataSize   DataSize
	NonVolatile bool
}

// NewExternalRam creates save RAM of the given size (bytes, up to 64 KiB).
func NewExternalRam(size int, dataSize DataSize, nonVolatile bool) *ExternalRam {
	if size > 64*1024 {
		size = 64 * 1024
	}
	return &ExternalRam{
		data:        make([]byte, size),
		DataSize:    dataSize,
		NonVolatile: nonVolatile,
	}
}

// laneAddress converts a bus address into the ExternalRam byte index per
// the DataSize byte-lane wiring; ok is false if this address's lane is not
// wired to this ExternalRam at all (read returns open-bus 0xFF).
func (e *ExternalRam) laneAddress(addr uint32) (idx int, ok bool) {
	switch e.DataSize {
	case DataOdd:
		if addr&1 == 0 {
			return 0, false
		}
		return int(addr >> 1), true
	case DataEven:
		if addr&1 != 0 {
			return 0, false
		}
		return int(addr >> 1), true
	default:
		return int(addr), true
	}
}

// ReadByte reads one byte of save RAM, or 0xFF if unmapped/unwired.
func (e *ExternalRam) ReadByte(addr uint32) uint8 {
	if e == nil || !e.Mapped {
		return 0xFF
	}
	idx, ok := e.laneAddress(addr)
	if !ok || idx >= len(e.data) {
		return 0xFF
	}
	return e.data[idx]
}

// WriteByte writes one byte of save RAM; a no-op if unmapped/unwired.
func (e *ExternalRam) WriteByte(addr uint32, v uint8) {
	if e == nil || !e.Mapped {
		return
	}
	idx, ok := e.laneAddress(addr)
	if !ok || idx >= len(e.data) {
		return
	}
	e.data[idx] = v
}

// Raw exposes the backing store for save-file serialisation.
func (e *ExternalRam) Raw() []byte { return e.data }

// Bankswitch is the eight-entry, 512 KiB-granularity bank table addressing
// the 4 MiB cartridge space. Bank 0 is permanently locked to physical bank
// 0 (spec.md §3 invariant).
type Bankswitch struct {
	banks [bankCount]uint32
	rom   []byte
}

// NewBankswitch creates a bank table over the given ROM image, with every
// entry defaulted to identity mapping.
func NewBankswitch(rom []byte) *Bankswitch {
	b := &Bankswitch{rom: rom}
	for i := range b.banks {
		b.banks[i] = uint32(i)
	}
	return b
}

// SetBank programs entry i (1..7) to physical bank n. Writes to entry 0
// are logged and ignored, preserving the "bank 0 is locked to 0" invariant.
func (b *Bankswitch) SetBank(i int, n uint32) {
	if i == 0 {
		logger.Log("cartridge", "ignored write to locked bank 0 (requested bank %d)", n)
		return
	}
	if i < 0 || i >= bankCount {
		return
	}
	b.banks[i] = n
}

// ReadByte translates a cartridge-space address through the bank table and
// returns the ROM byte there, or 0xFF if the translated address is beyond
// the end of the loaded ROM image.
func (b *Bankswitch) ReadByte(addr uint32) uint8 {
	bankIndex := int(addr / BankSize)
	if bankIndex >= bankCount {
		return 0xFF
	}
	physical := uint64(b.banks[bankIndex])*BankSize + uint64(addr%BankSize)
	if physical >= uint64(len(b.rom)) {
		return 0xFF
	}
	return b.rom[physical]
}

// ErrNoROM is returned by Open when the supplied image is empty.
var ErrNoROM = curated.Errorf("cartridge: ROM image is empty")

// Open validates and wraps a raw ROM image.
func Open(data []byte) (*Bankswitch, error) {
	if len(data) == 0 {
		return nil, ErrNoROM
	}
	return NewBankswitch(data), nil
}
