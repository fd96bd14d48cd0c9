// Package disc sniffs the handful of CD image container formats the core
// accepts — raw 2352-byte sectors, ClownCD track blobs, CUE sheets, and
// raw 2048-byte data dumps — parses CUE sheets, and exposes sector/audio-
// frame seek and read (spec.md §4.3 "Disc", "Seek / read"). A ClownCD
// blob is recognised by its magic but its track table is not read: the
// whole blob is treated as a single data track.
package disc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/segacore/mdcore/curated"
)

// Format identifies which container the backing file was sniffed as.
type Format int

const (
	FormatRaw2352 Format = iota
	FormatClownCD
	FormatCUE
	FormatRaw2048
)

// TrackType distinguishes how a track's payload should be interpreted.
type TrackType int

const (
	TrackMode1_2048 TrackType = iota
	TrackMode1_2352
	TrackAudio
)

var clownCDMagic = []byte("clowncd\x00\x00\x00")

// raw2352SyncPattern is the 12-byte sync pattern every raw CD-ROM sector
// starts with, followed by a mode-1 header.
var raw2352SyncPattern = []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

// ErrUnrecognizedFormat is returned when none of the sniffed formats match.
var ErrUnrecognizedFormat = curated.Errorf("disc: unrecognized image format")

// Index is one (track, index) entry parsed from a CUE sheet, or the
// single synthetic entry for a raw image.
type Index struct {
	Track      int
	IndexNum   int
	Filename   string
	Type       TrackType
	StartFrame uint32 // absolute frame number (75 frames/second) within Filename
	EndFrame   uint32 // exclusive; filled in by a second pass over the CUE
}

// Sniff inspects the first bytes of data and returns the format it
// matches, per the fixed-prefix test order of spec.md §4.3 "Disc".
func Sniff(data []byte) Format {
	if len(data) >= 16 && bytes.Equal(data[0:12], raw2352SyncPattern) {
		return FormatRaw2352
	}
	if bytes.HasPrefix(data, clownCDMagic) {
		return FormatClownCD
	}
	if looksLikeCUEText(data) {
		return FormatCUE
	}
	return FormatRaw2048
}

func looksLikeCUEText(data []byte) bool {
	text := string(data)
	if len(text) > 4096 {
		text = text[:4096]
	}
	lines := strings.SplitN(text, "\n", 4)
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		upper := strings.ToUpper(l)
		if strings.HasPrefix(upper, "FILE") || strings.HasPrefix(upper, "TRACK") || strings.HasPrefix(upper, "REM") {
			return true
		}
		return false
	}
	return false
}

// ParseCUE runs the line-at-a-time state machine described in spec.md
// §4.3 "Disc": FILE/TRACK/INDEX are recognized, everything else is
// ignored. The ending frame of each (track,index) is resolved by a
// second pass once every line has been read, matching the "scanning the
// CUE for the next INDEX that shares the same filename and has a greater
// sector" rule.
func ParseCUE(text string) ([]Index, error) {
	var indices []Index
	var currentFile string
	var currentTrack int
	var currentType TrackType

	lines := strings.Split(text, "\n")
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fields := splitCUEFields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "FILE":
			if len(fields) < 2 {
				continue
			}
			currentFile = fields[1]
		case "TRACK":
			if len(fields) < 3 {
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				continue
			}
			currentTrack = n
			currentType = parseTrackType(fields[2])
		case "INDEX":
			if len(fields) < 3 {
				continue
			}
			idxNum, err := strconv.Atoi(fields[1])
			if err != nil {
				continue
			}
			frame, err := parseMSF(fields[2])
			if err != nil {
				continue
			}
			indices = append(indices, Index{
				Track:      currentTrack,
				IndexNum:   idxNum,
				Filename:   currentFile,
				Type:       currentType,
				StartFrame: frame,
			})
		}
	}

	resolveEndFrames(indices)
	return indices, nil
}

func splitCUEFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

func parseTrackType(s string) TrackType {
	switch strings.ToUpper(s) {
	case "MODE1/2352":
		return TrackMode1_2352
	case "AUDIO":
		return TrackAudio
	default:
		return TrackMode1_2048
	}
}

// parseMSF converts an MM:SS:FF timestamp to an absolute frame count at
// 75 frames/second.
func parseMSF(s string) (uint32, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("disc: malformed MSF %q", s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	sec, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	f, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, err
	}
	return uint32(m*60*75 + sec*75 + f), nil
}

func resolveEndFrames(indices []Index) {
	for i := range indices {
		best := uint32(0xFFFFFFFF)
		for j := range indices {
			if indices[j].Filename != indices[i].Filename {
				continue
			}
			if indices[j].StartFrame > indices[i].StartFrame && indices[j].StartFrame < best {
				best = indices[j].StartFrame
			}
		}
		if best != 0xFFFFFFFF {
			indices[i].EndFrame = best
		}
	}
}
