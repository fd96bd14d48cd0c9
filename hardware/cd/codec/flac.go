package codec

import (
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

type flacCodec struct {
	stream   *flac.Stream
	rate     uint32
	channels int
	frame    *frame.Frame
	subIdx   int
}

func init() {
	register("flac", openFLAC)
}

func openFLAC(r io.ReadSeeker) (Codec, error) {
	stream, err := flac.Parse(r)
	if err != nil {
		return nil, err
	}
	return &flacCodec{
		stream:   stream,
		rate:     stream.Info.SampleRate,
		channels: int(stream.Info.NChannels),
	}, nil
}

func (c *flacCodec) SampleRate() uint32 { return c.rate }
func (c *flacCodec) Channels() int      { return c.channels }

func (c *flacCodec) ReadFrame() (left, right int16, ok bool) {
	for {
		if c.frame == nil {
			f, err := c.stream.ParseNext()
			if err != nil {
				return 0, 0, false
			}
			c.frame = f
			c.subIdx = 0
		}

		samples := c.frame.Subframes[0].Samples
		if c.subIdx >= len(samples) {
			c.frame = nil
			continue
		}

		l := samples[c.subIdx]
		r := l
		if c.channels > 1 {
			r = c.frame.Subframes[1].Samples[c.subIdx]
		}
		c.subIdx++
		return clampSample(l), clampSample(r), true
	}
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func (c *flacCodec) Seek(frame uint32) error {
	// The stream is not repositioned and frame is ignored: this only
	// drops the partly consumed FLAC frame, so decoding resumes at the
	// start of the next frame in the stream.
	c.frame = nil
	return nil
}

func (c *flacCodec) Close() error { return nil }
