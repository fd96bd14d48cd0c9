// Package z80ram implements the Z80's 8 KiB byte-addressable RAM
// (spec.md §3 "Z80Ram"), visible to the Main-68k through the Z80 bus
// window while the Z80's bus is held.
package z80ram

import "github.com/segacore/mdcore/random"

// Size is the width of Z80-RAM in bytes.
const Size = 8 * 1024

// RAM is a flat byte-addressable store.
type RAM struct {
	data [Size]byte
}

// PowerOn fills the RAM with deterministic noise (spec.md §3 "Lifecycles").
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

func (r *RAM) Peek(addr uint32) (uint16, error) { return uint16(r.ReadByte(addr)), nil }
func (r *RAM) Poke(addr uint32, v uint16) error { r.WriteByte(addr, uint8(v)); return nil }
