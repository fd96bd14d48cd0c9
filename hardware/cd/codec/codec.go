// Package codec adapts third-party audio decoders to the single
// interface the CD-DA pipeline needs: a pull-based source of stereo (or
// mono) PCM frames at the codec's native rate (spec.md §4.3 "Resampler",
// "mono→stereo upsample"). Concrete adapters wrap go-audio/wav,
// hajimehoshi/go-mp3, mewkiz/flac, and jfreymuth/oggvorbis, one per
// WAVE/MP3/FLAC/Ogg track type a CUE sheet can name.
package codec

import "io"

// Codec is a decoded audio track: fixed sample rate and channel count,
// with ReadFrame pulling one frame at a time as a left/right pair (mono
// tracks return the same sample on both sides).
type Codec interface {
	SampleRate() uint32
	Channels() int
	ReadFrame() (left, right int16, ok bool)
	Seek(frame uint32) error
	Close() error
}

// unsupportedCodecError is returned by Open when the track type doesn't
// match any registered adapter.
type unsupportedCodecError struct{ kind string }

func (e unsupportedCodecError) Error() string { return "codec: unsupported track type: " + e.kind }

// OpenFunc opens a Codec from a seekable reader; each adapter file in
// this package registers one OpenFunc under its format name.
type OpenFunc func(r io.ReadSeeker) (Codec, error)

var registry = map[string]OpenFunc{}

func register(name string, fn OpenFunc) { registry[name] = fn }

// Open dispatches to the adapter registered for kind ("wav", "mp3",
// "flac", "ogg").
func Open(kind string, r io.ReadSeeker) (Codec, error) {
	fn, ok := registry[kind]
	if !ok {
		return nil, unsupportedCodecError{kind: kind}
	}
	return fn(r)
}
