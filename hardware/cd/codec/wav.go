package codec

import (
	"encoding/binary"
	"io"

	"github.com/go-audio/wav"
)

type wavCodec struct {
	dec      *wav.Decoder
	r        io.ReadSeeker
	channels int
	rate     uint32
	dataPos  int64
}

func init() {
	register("wav", openWav)
}

func openWav(r io.ReadSeeker) (Codec, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, unsupportedCodecError{kind: "wav"}
	}
	dec.ReadInfo()
	pos, _ := r.Seek(0, io.SeekCurrent)
	return &wavCodec{
		dec:      dec,
		r:        r,
		channels: int(dec.NumChans),
		rate:     dec.SampleRate,
		dataPos:  pos,
	}, nil
}

func (c *wavCodec) SampleRate() uint32 { return c.rate }
func (c *wavCodec) Channels() int      { return c.channels }

func (c *wavCodec) ReadFrame() (left, right int16, ok bool) {
	var buf [4]byte
	n, err := io.ReadFull(c.r, buf[:2])
	if n < 2 || err != nil {
		return 0, 0, false
	}
	left = int16(binary.LittleEndian.Uint16(buf[:2]))
	if c.channels == 1 {
		return left, left, true
	}
	n, err = io.ReadFull(c.r, buf[2:4])
	if n < 2 || err != nil {
		return 0, 0, false
	}
	right = int16(binary.LittleEndian.Uint16(buf[2:4]))
	return left, right, true
}

func (c *wavCodec) Seek(frame uint32) error {
	bytesPerFrame := int64(c.channels) * 2
	_, err := c.r.Seek(c.dataPos+int64(frame)*bytesPerFrame, io.SeekStart)
	return err
}

func (c *wavCodec) Close() error { return nil }
