// Package bus defines the memory bus concept shared by the Main-68k, Sub-68k
// and Z80 address spaces. All three are word-addressed with independent
// high/low byte enables, per spec.md §4.1 "Bus dispatch".
package bus

// CPUBus is implemented by every dispatcher a CPU can issue a memory access
// through: the Main-68k bus, the Sub-68k bus, and the Z80 bus. Byte accesses
// are expressed as word accesses with one of hi/lo false; a pure byte read
// sets only the enable of the byte it wants and the dispatcher shifts the
// result into the matching half of the returned word, per 68000 byte-access
// semantics.
type CPUBus interface {
	ReadWord(address uint32, hi, lo bool) (uint16, error)
	WriteWord(address uint32, hi, lo bool, value uint16) error
}

// DebuggerBus exposes side-effect-free peek/poke, bypassing chip-select
// side effects (FIFO advance, DMA trigger, CDC ring state). Implemented by
// every RAM/ROM-backed region; not implemented by pure register windows
// that have no meaningful "peek".
type DebuggerBus interface {
	Peek(address uint32) (uint16, error)
	Poke(address uint32, value uint16) error
}

// Syncable is implemented by any component whose state is only safe to
// observe after it has been advanced to the cycle of the component doing
// the observing (spec.md §4.1 invariant 1). The three bus dispatchers call
// SyncTo on the target component before any cross-domain read or
// state-mutating write.
type Syncable interface {
	SyncTo(cycle uint32)
}
