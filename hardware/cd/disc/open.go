package disc

import (
	"bytes"
	"io"

	"github.com/segacore/mdcore/curated"
	"github.com/segacore/mdcore/hardware/cd/codec"
)

const sectorSize2352 = 2352
const sectorSize2048 = 2048
const framesPerSecond = 75

// FileOpener resolves a CUE FILE entry's filename to a seekable reader,
// since the filename in the sheet is relative to wherever the frontend
// keeps disc images.
type FileOpener func(name string) (io.ReadSeeker, error)

// Disc is an opened disc image, positioned at a (track, index) by
// SetState and readable sector-by-sector or frame-by-frame.
type Disc struct {
	format  Format
	indices []Index
	open    FileOpener

	current   *Index
	reader    io.ReadSeeker
	audio     codec.Codec
	sectorPos uint32
}

// Open sniffs data (the CUE text, or the raw image's leading bytes) and
// builds a Disc. For CUE images, open is used to resolve each FILE
// entry; for raw and ClownCD images, data itself is wrapped as the sole
// data track (a ClownCD blob's track table is not parsed).
func Open(data []byte, open FileOpener) (*Disc, error) {
	format := Sniff(data)

	d := &Disc{format: format, open: open}

	switch format {
	case FormatCUE:
		indices, err := ParseCUE(string(data))
		if err != nil {
			return nil, err
		}
		if len(indices) == 0 {
			return nil, curated.Errorf("disc: CUE sheet had no usable INDEX lines")
		}
		d.indices = indices
	case FormatRaw2352, FormatRaw2048, FormatClownCD:
		d.indices = []Index{{Track: 1, IndexNum: 1, Filename: "", Type: TrackMode1_2048}}
		if format == FormatRaw2352 {
			d.indices[0].Type = TrackMode1_2352
		}
		d.reader = bytes.NewReader(data)
	}

	return d, nil
}

// SetState implements spec.md §4.3 "Seek / read": switches track file
// if needed, then seeks to the requested sector (data tracks) or audio
// frame (audio tracks).
func (d *Disc) SetState(track, index int, sector, frame uint32) error {
	idx := d.findIndex(track, index)
	if idx == nil {
		return curated.Errorf("disc: no (track %d, index %d) in image", track, index)
	}

	if d.current == nil || d.current.Filename != idx.Filename || d.current.Track != idx.Track {
		if err := d.switchTrack(idx); err != nil {
			return err
		}
	}
	d.current = idx

	if idx.Type == TrackAudio {
		if d.audio != nil {
			return d.audio.Seek(frame)
		}
		return nil
	}

	d.sectorPos = sector
	if d.reader != nil {
		size := int64(sectorSize2048)
		if idx.Type == TrackMode1_2352 {
			size = sectorSize2352
		}
		_, err := d.reader.Seek(int64(sector)*size, io.SeekStart)
		return err
	}
	return nil
}

func (d *Disc) switchTrack(idx *Index) error {
	if d.open == nil {
		return nil
	}
	r, err := d.open(idx.Filename)
	if err != nil {
		return curated.Errorf("disc: opening track file %q: %v", idx.Filename, err)
	}

	if idx.Type == TrackAudio {
		kind := codecKindForFilename(idx.Filename)
		c, err := codec.Open(kind, r)
		if err != nil {
			return curated.Errorf("disc: opening audio codec for %q: %v", idx.Filename, err)
		}
		d.audio = c
		return nil
	}

	d.reader = r
	return nil
}

func codecKindForFilename(name string) string {
	lower := bytesToLowerSuffix(name)
	switch {
	case hasSuffix(lower, ".mp3"):
		return "mp3"
	case hasSuffix(lower, ".flac"):
		return "flac"
	case hasSuffix(lower, ".ogg"):
		return "ogg"
	default:
		return "wav"
	}
}

func bytesToLowerSuffix(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func (d *Disc) findIndex(track, index int) *Index {
	for i := range d.indices {
		if d.indices[i].Track == track && d.indices[i].IndexNum == index {
			return &d.indices[i]
		}
	}
	return nil
}

// ReadSector reads len(buf) bytes from the current data track's position
// (the caller sizes buf to the sector size it wants), zero-padding short
// reads per CD-DA semantics.
func (d *Disc) ReadSector(buf []byte) (int, error) {
	if d.reader == nil {
		return 0, curated.Errorf("disc: no data track positioned")
	}
	n, err := io.ReadFull(d.reader, buf)
	if n < len(buf) {
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
	}
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	d.sectorPos++
	return len(buf), err
}

// ReadAudioFrame pulls one stereo PCM frame from the current audio
// track at the codec's native rate (see AudioSampleRate); it does no
// resampling. Mono sources come back with the channel duplicated.
func (d *Disc) ReadAudioFrame() (left, right int16, ok bool) {
	if d.audio == nil {
		return 0, 0, false
	}
	return d.audio.ReadFrame()
}

// AudioSampleRate returns the current audio track's native rate, or 0 if
// no audio track is positioned.
func (d *Disc) AudioSampleRate() uint32 {
	if d.audio == nil {
		return 0
	}
	return d.audio.SampleRate()
}
