// Package vdp implements the scanline-based video display processor:
// VRAM/CRAM/VSRAM storage, the two-phase control-port protocol, the DMA
// engine, and the plane/sprite/window compositor, per spec.md §4.2.
package vdp

import "github.com/segacore/mdcore/random"

// VRAMSize is the VDP's tile memory in 64 KiB mode. A "128 KiB extended"
// mode remaps the same addressing per extendedAddress in vram.go.
const VRAMSize = 64 * 1024
const VRAMSizeExtended = 128 * 1024

const CRAMWords = 64
const VSRAMWords = 40 + 24

const ScreenWidth = 320
const ScreenHeightNTSC = 224
const MaxSpritesPerLine = 20 // H40; 16 in H32, checked at render time
const MaxSpriteWalk = 80     // spec.md §8 boundary: link==self bails in <=80

// Code bits of the access-code/address register pair (spec.md §4.2).
type Code uint8

const (
	CodeVRAM  Code = 0x01
	CodeCRAM  Code = 0x03
	CodeVSRAM Code = 0x05
)

func (c Code) isWrite() bool { return c&0x01 != 0 }

// dmaMode enumerates the three VDP DMA transfer modes (spec.md §4.2 "DMA").
type dmaMode int

const (
	dmaMemToVRAM dmaMode = iota
	dmaFill
	dmaCopy
)

// MainBus is the minimum Main-68k bus surface the VDP's memory-to-VRAM DMA
// needs: a plain word read with no byte-enable narrowing, since DMA always
// transfers whole words.
type MainBus interface {
	ReadWord(addr uint32) uint16
}

// Frontend receives the callbacks spec.md §6 describes for the VDP:
// palette changes and completed scanlines.
type Frontend interface {
	ColourUpdated(index uint8, rgb444 uint16)
	ScanlineRendered(y int, pixels []uint8, left, right, screenW, screenH int)
}

// State is the VdpState aggregate of spec.md §3.
type State struct {
	VRAM  []byte // VRAMSize or VRAMSizeExtended, depending on Extended128K
	CRAM  [CRAMWords]uint16
	VSRAM [VSRAMWords]uint16

	Extended128K bool

	// access-code/address register pair with the two-halves write-pending
	// latch (spec.md §4.2 "read_control/write_control").
	address      uint32
	code         Code
	writePending bool
	firstHalf    uint16

	// fifoShadow holds the last four data-port words written, fifoHead
	// pointing at the oldest; a DMA fill into CRAM or VSRAM takes that
	// oldest word (spec.md §4.2 "DMA" fill bug). A data-port read in write
	// mode does not consult it: ReadData reads the addressed memory.
	fifoShadow [4]uint16
	fifoHead   int

	// register file, registers 0..23.
	Reg [24]uint8

	// base addresses and dimensions derived from the register file,
	// refreshed by refreshRegister after any register write.
	planeABase, planeBBase    uint32
	windowBase, spriteBase    uint32
	hScrollBase               uint32
	H40                       bool
	V30                       bool
	Interlace                 bool
	DoubleRes                 bool
	DisplayEnabled            bool
	HIntEnabled               bool
	VIntEnabled               bool
	ShadowHighlightEnabled    bool
	ForcedLayer                bool
	BackgroundColourIndex     uint8
	HIntInterval              uint8
	hIntCounter               uint8

	// DisableFIFOShadowFillBug, when set, makes fill DMA use the data
	// port value it's given directly instead of reproducing the
	// FIFO-shadow fill quirk; wired from prefs.Settings.FIFOShadowFillBug.
	DisableFIFOShadowFillBug bool

	// DMA registers.
	dmaSourceHigh uint16
	dmaSourceLow  uint16
	dmaLength     uint16
	dmaMode       dmaMode
	dmaArmed      bool
	dmaFillLatch  bool

	// sprite row cache, rebuilt lazily on first render after a
	// sprite-table write (spec.md §4.2 "Failure modes" / §9).
	spriteCacheDirty bool
	spriteCache      [ScreenHeightNTSC][]spriteCacheEntry

	Main MainBus
	FE   Frontend

	// precomputed blit tables (spec.md §4.2 "Shadow/highlight lookup
	// precomputation").
	blitLookup       [16][16][16]uint8
	shadowHighlight  [16][16][16]uint8
	forcedLayerTable [16][16][16]uint8

	lineBuf    [ScreenWidth]uint8
	spritePal  [ScreenWidth]uint8 // colour index, 0..15
	spriteLine [ScreenWidth]uint8 // palette line, 0..3
	spritePri  [ScreenWidth]bool
	spriteHit  [ScreenWidth]bool
}

type spriteCacheEntry struct {
	tableIndex int
	width      int
	height     int
	yInSprite  int
}

// New constructs a VDP with its lookup tables precomputed, per spec.md
// §4.2's "eliminating per-pixel branching" design note.
func New(fe Frontend, main MainBus) *State {
	s := &State{
		FE:   fe,
		Main: main,
	}
	s.VRAM = make([]byte, VRAMSize)
	s.buildLookupTables()
	s.spriteCacheDirty = true
	return s
}

// PowerOn randomises VRAM/CRAM/VSRAM the way real silicon starts
// (spec.md §3 "Lifecycles").
func (s *State) PowerOn(rnd *random.Random) {
	rnd.Fill(s.VRAM, 0)
	for i := range s.CRAM {
		s.CRAM[i] = uint16(rnd.Rewindable(i)) & 0xEEE
	}
	for i := range s.VSRAM {
		s.VSRAM[i] = uint16(rnd.Rewindable(i + 1000))
	}
}
