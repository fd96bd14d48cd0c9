package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/segacore/mdcore/curated"
	"github.com/segacore/mdcore/hardware/vdp"
)

// Video chains a SHA-1 fingerprint across every scanline the VDP renders,
// so two emulation runs that diverge anywhere in the frame produce
// different hashes without either run needing to keep full framebuffers
// around for comparison. It implements vdp.Frontend's ScanlineRendered
// half; ColourUpdated is a no-op since the digest only cares about the
// resolved pixel stream.
//
// Note that SHA-1 is fine here: this is a change-detector, not a
// cryptographic task.
type Video struct {
	digest [sha1.Size]byte
	pixels []byte
}

const pixelDepth = 1 // one CRAM-index byte per pixel, matching vdp.State.RenderScanline's output

// NewVideo returns a Video ready to receive a vdp.State's per-scanline
// callbacks for one full frame.
func NewVideo(width, height int) *Video {
	return &Video{
		pixels: make([]byte, sha1.Size+width*height*pixelDepth),
	}
}

// Hash implements Digest.
func (d *Video) Hash() string {
	return fmt.Sprintf("%x", d.digest)
}

// ResetDigest implements Digest.
func (d *Video) ResetDigest() {
	for i := range d.digest {
		d.digest[i] = 0
	}
}

// ColourUpdated implements vdp.Frontend. Palette changes are already
// reflected in the CRAM-index bytes ScanlineRendered receives, so there
// is nothing to fold into the digest here.
func (d *Video) ColourUpdated(index uint8, rgb444 uint16) {}

// ScanlineRendered implements vdp.Frontend, folding one scanline's
// pixels into the running fingerprint's backing buffer.
func (d *Video) ScanlineRendered(y int, pixels []uint8, left, right, screenW, screenH int) {
	base := sha1.Size + y*screenW*pixelDepth
	for x, p := range pixels {
		i := base + (left+x)*pixelDepth
		if i >= 0 && i < len(d.pixels) {
			d.pixels[i] = p
		}
	}
	if y == screenH-1 {
		d.endFrame()
	}
}

// endFrame chains the previous frame's digest into the head of the
// pixel buffer before hashing, so the fingerprint sequence depends on
// every prior frame as well as the current one.
func (d *Video) endFrame() error {
	n := copy(d.pixels, d.digest[:])
	if n != len(d.digest) {
		return curated.Errorf("digest: video: short copy chaining fingerprint")
	}
	d.digest = sha1.Sum(d.pixels)
	return nil
}

var _ vdp.Frontend = (*Video)(nil)
