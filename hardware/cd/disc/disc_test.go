package disc_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/cd/disc"
	"github.com/segacore/mdcore/test"
)

func TestSniffRaw2048Fallback(t *testing.T) {
	data := make([]byte, 64)
	test.Equate(t, disc.Sniff(data), disc.FormatRaw2048)
}

func TestSniffCUEText(t *testing.T) {
	data := []byte("FILE \"game.bin\" BINARY\n  TRACK 01 MODE1/2048\n")
	test.Equate(t, disc.Sniff(data), disc.FormatCUE)
}

func TestParseCUETrackAndIndex(t *testing.T) {
	cue := `FILE "game.bin" BINARY
  TRACK 01 MODE1/2048
    INDEX 01 00:00:00
FILE "track02.wav" WAVE
  TRACK 02 AUDIO
    INDEX 00 00:00:00
    INDEX 01 00:02:00
`
	indices, err := disc.ParseCUE(cue)
	test.Equate(t, err, nil)
	test.Equate(t, len(indices), 3)
	test.Equate(t, indices[0].Track, 1)
	test.Equate(t, indices[2].Type, disc.TrackAudio)
	test.Equate(t, indices[2].StartFrame, uint32(150))
}

func TestOpenRawImageSetsStateWithoutError(t *testing.T) {
	data := make([]byte, sectorBytes(2048)*2)
	d, err := disc.Open(data, nil)
	test.Equate(t, err, nil)

	err = d.SetState(1, 1, 0, 0)
	test.Equate(t, err, nil)

	buf := make([]byte, 2048)
	n, err := d.ReadSector(buf)
	test.Equate(t, err, nil)
	test.Equate(t, n, 2048)
}

func sectorBytes(n int) int { return n }
