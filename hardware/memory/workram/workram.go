// Package workram implements the Main-68k's 64 KiB Work-RAM (spec.md §3
// "WorkRam"), word-addressable and preserved across a soft Reset.
package workram

import "github.com/segacore/mdcore/random"

// Size is the width of Work-RAM in bytes.
const Size = 64 * 1024

// RAM is a flat, word-addressable 64 KiB store.
type RAM struct {
	data [Size]byte
}

// PowerOn fills the RAM with deterministic noise, mirroring the
// uninitialised state of real silicon (spec.md §3 "Lifecycles": entities
// are created at power-on with the initial values described in §4, which
// for RAM means unspecified/random content rather than zero).
func (r *RAM) PowerOn(rnd *random.Random) {
	rnd.Fill(r.data[:], 0)
}

// ReadByte returns the byte at addr (wrapped into range).
func (r *RAM) ReadByte(addr uint32) uint8 {
	return r.data[addr&(Size-1)]
}

// WriteByte writes the byte at addr (wrapped into range).
func (r *RAM) WriteByte(addr uint32, v uint8) {
	r.data[addr&(Size-1)] = v
}

// ReadWord returns the big-endian word at addr (wrapped, word-aligned).
func (r *RAM) ReadWord(addr uint32) uint16 {
	addr &= Size - 1
	addr &^= 1
	return uint16(r.data[addr])<<8 | uint16(r.data[addr+1])
}

// WriteWord writes the big-endian word at addr (wrapped, word-aligned).
func (r *RAM) WriteWord(addr uint32, v uint16) {
	addr &= Size - 1
	addr &^= 1
	r.data[addr] = byte(v >> 8)
	r.data[addr+1] = byte(v)
}

// Peek/Poke expose the same access without any side effect distinction,
// since plain RAM has none; kept to satisfy bus.DebuggerBus.
func (r *RAM) Peek(addr uint32) (uint16, error) { return r.ReadWord(addr), nil }
func (r *RAM) Poke(addr uint32, v uint16) error { r.WriteWord(addr, v); return nil }
