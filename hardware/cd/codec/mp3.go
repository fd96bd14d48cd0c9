package codec

import (
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

type mp3Codec struct {
	dec  *mp3.Decoder
	r    io.ReadSeeker
	rate uint32
}

func init() {
	register("mp3", openMP3)
}

func openMP3(r io.ReadSeeker) (Codec, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &mp3Codec{dec: dec, r: r, rate: uint32(dec.SampleRate())}, nil
}

func (c *mp3Codec) SampleRate() uint32 { return c.rate }
func (c *mp3Codec) Channels() int      { return 2 } // go-mp3 always decodes to stereo

func (c *mp3Codec) ReadFrame() (left, right int16, ok bool) {
	var buf [4]byte
	n, err := io.ReadFull(c.dec, buf[:])
	if n < 4 || err != nil {
		return 0, 0, false
	}
	left = int16(binary.LittleEndian.Uint16(buf[0:2]))
	right = int16(binary.LittleEndian.Uint16(buf[2:4]))
	return left, right, true
}

func (c *mp3Codec) Seek(frame uint32) error {
	_, err := c.dec.Seek(int64(frame)*4, io.SeekStart)
	return err
}

func (c *mp3Codec) Close() error { return nil }
