// Package cdc implements the CD controller's sector pipeline: a 5-entry
// ring of pulled sectors, each tagged with an MSF+mode header, bound one
// at a time for the CPU to drain a word at a time (spec.md §4.3 "CDC").
package cdc

import "github.com/segacore/mdcore/curated"

const ringSize = 5
const sectorWords = 2352 / 2

// HeaderWords is the width, in words, of a bound sector's MSF+mode
// header that CDCREAD's destination-copy discards before transferring
// the remainder (spec.md §4.5 "CDC" CDCREAD).
const HeaderWords = 2

// DataWords is the number of payload words left in a sector once its
// header has been discarded.
const DataWords = sectorWords - HeaderWords

// Destination identifies which CPU a bound sector's data is routed to,
// or (for CDCREAD's device-destination register) which memory a sector
// is automatically copied into.
type Destination int

const (
	DestMain Destination = iota
	DestSub
	DestPCM
	DestPRGRAM
	DestWordRAM
)

// Puller supplies one raw sector's worth of bytes from the Disc.
type Puller interface {
	ReadSector(buf []byte) (int, error)
}

type sector struct {
	header [4]byte // MSF + mode, binary-coded decimal
	words  [sectorWords]uint16
	dest   Destination
}

// CDC holds the sector ring and the currently bound sector, if any.
type CDC struct {
	puller  Puller
	reading bool

	ring      [ringSize]sector
	ringHead  int // write index: where the next pulled sector lands
	ringTail  int // read index: oldest unread sector
	ringCount int

	boundIndex int // -1 when nothing is bound
	wordCursor int

	sectorsRemaining int // programmed sector count; 0 == unbounded
	nextDest         Destination

	deviceDestination Destination // CDCREAD's auto-copy target, set via 0xFF8004's high byte
	dmaAddress        uint16      // in Sub address-space bytes / 8, set via 0xFF800A
}

// New returns a CDC with an empty ring.
func New(p Puller) *CDC {
	return &CDC{puller: p, boundIndex: -1}
}

// Start begins pulling sectors into the ring (spec.md §4.3 "CDC").
func (c *CDC) Start(dest Destination, sectorCount int) {
	c.reading = true
	c.nextDest = dest
	c.sectorsRemaining = sectorCount
}

// Stop halts pulling.
func (c *CDC) Stop() { c.reading = false }

// SetDeviceDestination programs where CDCREAD automatically copies a
// bound sector's data once read(): PCM-RAM, PRG-RAM, and WORD-RAM get
// an automatic copy, while the CPU destinations are read manually
// through HostData. Reprogramming it resets the DMA address, mirroring
// real hardware.
func (c *CDC) SetDeviceDestination(d Destination) {
	c.deviceDestination = d
	c.dmaAddress = 0
}

// DeviceDestination reports the currently programmed CDCREAD target.
func (c *CDC) DeviceDestination() Destination { return c.deviceDestination }

// SetDMAAddress programs the destination address CDCREAD copies to,
// in units of 8 Sub address-space bytes (spec.md §4.5 "CDC" CDCREAD).
func (c *CDC) SetDMAAddress(addr uint16) { c.dmaAddress = addr }

// DMAAddress reports the programmed DMA address register.
func (c *CDC) DMAAddress() uint16 { return c.dmaAddress }

// Pump pulls sectors from the Disc until the ring is full, reading is
// off, or the programmed count elapses.
func (c *CDC) Pump() error {
	for c.reading && c.ringCount < ringSize {
		if c.sectorsRemaining > 0 {
			c.sectorsRemaining--
			if c.sectorsRemaining == 0 {
				c.reading = false
			}
		}

		raw := make([]byte, 2352)
		if _, err := c.puller.ReadSector(raw); err != nil {
			return curated.Errorf("cdc: pulling sector: %v", err)
		}

		s := &c.ring[c.ringHead]
		copy(s.header[:], raw[0:4])
		for i := 0; i < sectorWords; i++ {
			s.words[i] = uint16(raw[i*2])<<8 | uint16(raw[i*2+1])
		}
		s.dest = c.nextDest

		c.ringHead = (c.ringHead + 1) % ringSize
		c.ringCount++
	}
	return nil
}

// Read implements spec.md §4.3 "CDC" read(): binds the oldest unread
// sector and returns its header, failing if the ring is empty or a
// sector is already bound.
func (c *CDC) Read() (header [4]byte, dest Destination, err error) {
	if c.ringCount == 0 {
		return header, 0, curated.Errorf("cdc: read: ring empty")
	}
	if c.boundIndex >= 0 {
		return header, 0, curated.Errorf("cdc: read: a sector is already bound")
	}
	c.boundIndex = c.ringTail
	c.wordCursor = 0
	s := &c.ring[c.boundIndex]
	return s.header, s.dest, nil
}

// HostData returns the next 16-bit word of the bound sector. Once
// exhausted, the last word repeats indefinitely (spec.md §4.3 "CDC"
// host_data hardware quirk).
func (c *CDC) HostData() uint16 {
	if c.boundIndex < 0 {
		return 0
	}
	s := &c.ring[c.boundIndex]
	if c.wordCursor >= sectorWords {
		return s.words[sectorWords-1]
	}
	w := s.words[c.wordCursor]
	c.wordCursor++
	return w
}

// Ack unbinds the current sector and advances the ring's read index.
func (c *CDC) Ack() {
	if c.boundIndex < 0 {
		return
	}
	c.boundIndex = -1
	c.ringTail = (c.ringTail + 1) % ringSize
	c.ringCount--
}

// Mode reports the {DSR, EDT} status bits (spec.md §4.3 "CDC" mode()).
// DSR is set while a sector is bound, whether or not its words have
// been read; EDT is set once the ring has drained with reading stopped.
// The same bits are reported to both CPUs: Mode does not distinguish
// which side is asking.
func (c *CDC) Mode() (dsr, edt bool) {
	dsr = c.boundIndex >= 0
	edt = !c.reading && c.ringCount == 0
	return
}
