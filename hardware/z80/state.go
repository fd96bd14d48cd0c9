// Package z80 holds the Z80 register/bank-window container (spec.md §3
// "Z80State"). The Z80 instruction interpreter is an external collaborator
// per spec.md §1; this package supplies the state it operates on plus the
// 8 KiB bank-window translation into Main-68k address space that
// hardware/busz80 uses to decode accesses outside Z80-RAM/FM/PSG.
package z80

// BankWindowSize is the width, in bytes, of the Z80's view into Main-68k
// address space through its bank register.
const BankWindowSize = 0x8000 / 4 // 8 KiB

// BankSpan is the size of the full Main-68k address range addressable
// through the bank register's 9 bits, each step worth 32 KiB, per
// spec.md §3.
const BankSpan = 512 * 0x8000

// State is the visible register file of the Z80.
type State struct {
	PC uint16
	SP uint16

	A, F   uint8
	B, C   uint8
	D, E   uint8
	H, L   uint8
	IX, IY uint16

	// Shadow register set, swapped in by EXX/EX AF,AF'.
	A2, F2 uint8
	B2, C2 uint8
	D2, E2 uint8
	H2, L2 uint8

	I uint8 // interrupt vector base
	R uint8 // memory refresh

	IFF1, IFF2 bool
	IM         uint8

	Halted  bool
	BusReq  bool // Main-68k BUSREQ line: true while Main holds the bus
	ResetIn bool

	// BankRegister latches the high bits of the current 8 KiB window into
	// Main-68k space; written one bit at a time by writes to 0x6000.
	BankRegister uint32
}

// BankAddress translates a Z80-local address within the bank window
// (0x8000-0x9FFF) into the corresponding Main-68k address, per the
// Z80State bank register described in spec.md §3.
func (s *State) BankAddress(local uint16) uint32 {
	offset := uint32(local) % BankWindowSize
	return (s.BankRegister % BankSpan) + offset
}

// Skipped reports whether the Z80 should be skipped by the Scheduler:
// its bus is held by the Main-68k's BUSREQ line or its RESET line is
// asserted. A HALT instruction does not make it Skipped.
func (s *State) Skipped() bool {
	return s.BusReq || s.ResetIn
}
