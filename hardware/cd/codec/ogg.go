package codec

import (
	"io"

	"github.com/jfreymuth/oggvorbis"
)

type oggCodec struct {
	r        *oggvorbis.Reader
	channels int
	rate     uint32
	buf      [4096]float32
	filled   int
	pos      int
}

func init() {
	register("ogg", openOgg)
}

func openOgg(r io.ReadSeeker) (Codec, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &oggCodec{
		r:        dec,
		channels: dec.Channels(),
		rate:     uint32(dec.SampleRate()),
	}, nil
}

func (c *oggCodec) SampleRate() uint32 { return c.rate }
func (c *oggCodec) Channels() int      { return c.channels }

func (c *oggCodec) ReadFrame() (left, right int16, ok bool) {
	if c.pos+c.channels > c.filled {
		n, err := c.r.Read(c.buf[:])
		if n == 0 || (err != nil && err != io.EOF) {
			return 0, 0, false
		}
		c.filled = n
		c.pos = 0
	}
	if c.pos+c.channels > c.filled {
		return 0, 0, false
	}

	l := toInt16(c.buf[c.pos])
	r := l
	if c.channels > 1 {
		r = toInt16(c.buf[c.pos+1])
	}
	c.pos += c.channels
	return l, r, true
}

func toInt16(v float32) int16 {
	f := float64(v) * 32767
	if f > 32767 {
		f = 32767
	}
	if f < -32768 {
		f = -32768
	}
	return int16(f)
}

func (c *oggCodec) Seek(frame uint32) error {
	return c.r.SetPosition(int64(frame))
}

func (c *oggCodec) Close() error { return nil }
