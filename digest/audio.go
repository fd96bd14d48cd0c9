package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/segacore/mdcore/curated"
)

// the length of the buffer isn't important beyond being a multiple of 4
// (one stereo sample) and at least sha1.Size bytes.
const audioBufferLength = 1024 + sha1.Size

// the previous digest value is stuffed into the head of the buffer so
// every flush's hash depends on the whole stream so far, not just the
// most recent chunk.
const audioBufferStart = sha1.Size

// Audio periodically generates a SHA-1 value of the mixer's output
// stream. It is driven by calling PushSample once per mixed stereo
// frame rather than by implementing any particular mixer interface,
// since the mixer's output shape (stereo 16-bit PCM) is fixed.
type Audio struct {
	digest   [sha1.Size]byte
	buffer   []uint8
	bufferCt int
}

// NewAudio returns an Audio digest ready to receive mixer output.
func NewAudio() *Audio {
	dig := &Audio{
		buffer: make([]uint8, audioBufferLength),
	}
	dig.bufferCt = audioBufferStart
	return dig
}

// Hash implements Digest.
func (dig *Audio) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements Digest.
func (dig *Audio) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
}

// PushSample folds one mixed stereo sample into the running digest,
// flushing whenever the scratch buffer fills.
func (dig *Audio) PushSample(left, right int16) error {
	var b [4]byte
	binary.LittleEndian.PutUint16(b[0:2], uint16(left))
	binary.LittleEndian.PutUint16(b[2:4], uint16(right))

	for _, v := range b {
		dig.buffer[dig.bufferCt] = v
		dig.bufferCt++
		if dig.bufferCt >= audioBufferLength {
			if err := dig.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (dig *Audio) flush() error {
	dig.digest = sha1.Sum(dig.buffer)
	n := copy(dig.buffer, dig.digest[:])
	if n != len(dig.digest) {
		return curated.Errorf("digest: audio: short copy while flushing audio stream")
	}
	dig.bufferCt = audioBufferStart
	return nil
}
