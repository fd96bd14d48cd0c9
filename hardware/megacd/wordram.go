// Package megacd implements the Mega-CD's own memory and peripheral
// model: WORD-RAM arbitration, PRG-RAM, the BIOS-call trampoline, and
// the stamp/trace-table graphics ASIC (spec.md §4.5 "Mega-CD specifics").
package megacd

import (
	"github.com/segacore/mdcore/logger"
	"github.com/segacore/mdcore/random"
)

const WordRAMSize = 256 * 1024
const halfSize = WordRAMSize / 2

// WordRAM implements the dual-ported 2M/1M arbitration modes of spec.md
// §4.5 "WORD-RAM arbitration". In 2M mode one CPU owns the whole bank at
// a time; in 1M mode each CPU owns one 128 KiB half, the halves being the
// low and high 128 KiB of the array (not interleaved). Which half the Sub
// owns is subOwnsHigh; nothing in this type changes it, so the Sub keeps
// the low half and Main the high half.
type WordRAM struct {
	data [WordRAMSize]byte

	mode1M bool
	dmna   bool // Main requests hand-off
	ret    bool // Sub has released back to Main

	// in 1M mode, subOwnsHigh tracks which half the Sub-68k currently
	// owns; Main owns the other.
	subOwnsHigh bool

	// lastDMAWord and haveDMAWord back ReadDelayed: the VDP's
	// memory-to-VRAM DMA, when sourced from WORD-RAM, returns the word
	// read by the *previous* transfer step rather than the current one
	// (spec.md §9 Open Question, resolved against
	// original_source/Core/core/clownmdemu.c's word-RAM DMA path).
	lastDMAWord uint16
	haveDMAWord bool

	// DisableDMADelayBug, when set, makes ReadDelayed behave like an
	// ordinary read instead of reproducing the one-word pipeline quirk;
	// wired from prefs.Settings.WordRAMDMADelayBug.
	DisableDMADelayBug bool
}

func (w *WordRAM) PowerOn(rnd *random.Random) {
	rnd.Fill(w.data[:], 0)
}

// SetMode1M switches between 2M and 1M arbitration.
func (w *WordRAM) SetMode1M(enabled bool) { w.mode1M = enabled }

// WriteDMNA implements Main writing bit 1 of 0xFF8002 (mirrored at
// 0xA12002): Main hands WORD-RAM over to the Sub, which then owns it in
// 2M mode until it sets RET.
func (w *WordRAM) WriteDMNA(set bool) {
	w.dmna = set
	if set {
		w.ret = false
	}
}

// WriteRET implements the Sub releasing WORD-RAM back to Main.
func (w *WordRAM) WriteRET(set bool) {
	w.ret = set
	if set {
		w.dmna = false
	}
}

// mainOwns2M reports whether Main currently has write access in 2M mode.
// Invariant (spec.md §4.5): RET==1 implies Main has access and DMNA is
// cleared.
func (w *WordRAM) mainOwns2M() bool {
	return w.ret || !w.dmna
}

// ReadByteMain / WriteByteMain / ReadByteSub / WriteByteSub implement the
// CPU-side accessors; out-of-turn writes are logged and ignored rather
// than rejected with an error, matching real silicon's behaviour of
// silently corrupting nothing observable by software other than losing
// the write.
func (w *WordRAM) ReadByteMain(addr uint32) uint8 {
	if w.mode1M {
		if w.subOwnsHigh {
			return w.data[addr%halfSize]
		}
		return w.data[halfSize+addr%halfSize]
	}
	return w.data[addr%WordRAMSize]
}

func (w *WordRAM) WriteByteMain(addr uint32, v uint8) {
	if w.mode1M {
		if w.subOwnsHigh {
			w.data[addr%halfSize] = v
		} else {
			w.data[halfSize+addr%halfSize] = v
		}
		return
	}
	if !w.mainOwns2M() {
		logger.Log("megacd", "Main write to WORD-RAM while Sub owns it, ignored")
		return
	}
	w.data[addr%WordRAMSize] = v
}

// ReadDelayed is used only by the VDP's memory-to-VRAM DMA when its
// source address falls in WORD-RAM (spec.md §4.2's DMA, §4.5's
// arbitration): it returns the word fetched by the previous call rather
// than the one at addr, reproducing a documented off-by-one-transfer
// hardware quirk. Ordinary Main/Sub program reads must never call this;
// they use ReadByteMain/ReadByteSub directly.
func (w *WordRAM) ReadDelayed(addr uint32) uint16 {
	word := uint16(w.ReadByteMain(addr))<<8 | uint16(w.ReadByteMain(addr+1))
	if w.DisableDMADelayBug {
		return word
	}
	prev := w.lastDMAWord
	if !w.haveDMAWord {
		prev = word
	}
	w.lastDMAWord = word
	w.haveDMAWord = true
	return prev
}

// ResetDMADelay clears the one-word pipeline ReadDelayed tracks, called
// when a new DMA transfer begins.
func (w *WordRAM) ResetDMADelay() { w.haveDMAWord = false }

func (w *WordRAM) ReadByteSub(addr uint32) uint8 {
	if w.mode1M {
		if w.subOwnsHigh {
			return w.data[halfSize+addr%halfSize]
		}
		return w.data[addr%halfSize]
	}
	return w.data[addr%WordRAMSize]
}

func (w *WordRAM) WriteByteSub(addr uint32, v uint8) {
	if w.mode1M {
		if w.subOwnsHigh {
			w.data[halfSize+addr%halfSize] = v
		} else {
			w.data[addr%halfSize] = v
		}
		return
	}
	if w.mainOwns2M() {
		logger.Log("megacd", "Sub write to WORD-RAM while Main owns it, ignored")
		return
	}
	w.data[addr%WordRAMSize] = v
}
