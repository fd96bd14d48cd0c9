// Package savefile implements megacd.Frontend: disc seeking and a
// filesystem-backed BRAM save-file API, grounded on spec.md §4.5's
// "BIOS-call trampoline" and §6's save-file naming convention.
package savefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/segacore/mdcore/curated"
	"github.com/segacore/mdcore/hardware/cd/cdda"
	"github.com/segacore/mdcore/hardware/cd/disc"
)

// BRAM service codes, as the megacd trampoline passes them to
// BRAMOperation; hardware/megacd/bios.go names only their upper bound,
// svcBRAMMax, so the dispatch here must match its numbering by hand.
const (
	svcBRAMInit   = 0x00
	svcBRAMStat   = 0x01
	svcBRAMSearch = 0x02
	svcBRAMRead   = 0x03
	svcBRAMWrite  = 0x04
	svcBRAMDelete = 0x05
	svcBRAMFormat = 0x06
	svcBRAMVerify = 0x07
)

// Frontend implements megacd.Frontend against a real Disc and a
// directory of "<name>[.wp].brm" files. A whole file is read or
// buffered in memory per operation rather than streamed byte-by-byte,
// since the trampoline's own BRAMOperation contract (hardware/megacd/
// bios.go) only carries an op code and a filename, not a byte cursor.
type Frontend struct {
	Disc *disc.Disc
	Dir  string
}

// SeekTrack switches the Disc to the named audio track; the CDDA
// transport's play mode only affects how it loops, not where it starts.
func (f *Frontend) SeekTrack(track int, mode cdda.PlayMode) {
	_ = mode
	_ = f.Disc.SetState(track, 1, 0, 0)
}

// SeekSector switches the Disc to the given absolute data sector,
// always against the single data track a Mega-CD disc's first track is.
func (f *Frontend) SeekSector(sector uint32) {
	_ = f.Disc.SetState(1, 1, sector, 0)
}

func (f *Frontend) path(name string) string {
	return filepath.Join(f.Dir, strings.TrimSpace(name)+".brm")
}

func (f *Frontend) pathWriteProtected(name string) string {
	return filepath.Join(f.Dir, strings.TrimSpace(name)+".wp.brm")
}

func (f *Frontend) resolve(name string) (string, bool) {
	if p := f.path(name); fileExists(p) {
		return p, false
	}
	if p := f.pathWriteProtected(name); fileExists(p) {
		return p, true
	}
	return "", false
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// BRAMOperation dispatches one of the eight BRAM service codes spec.md
// §4.5 lists. filename is the 11-character name decoded from the
// Sub-68k's [A0]; ok mirrors what the trampoline reports back to the
// Sub-68k through the carry flag.
func (f *Frontend) BRAMOperation(op int, filename string) (result uint16, ok bool) {
	switch op {
	case svcBRAMInit:
		return 0, f.ensureDir() == nil

	case svcBRAMStat:
		p, _ := f.resolve(filename)
		if p == "" {
			return 0, false
		}
		info, err := os.Stat(p)
		if err != nil {
			return 0, false
		}
		return uint16(info.Size()), true

	case svcBRAMSearch:
		matches, err := filepath.Glob(filepath.Join(f.Dir, "*.brm"))
		if err != nil {
			return 0, false
		}
		return uint16(len(matches)), true

	case svcBRAMRead:
		p, _ := f.resolve(filename)
		if p == "" {
			return 0, false
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return 0, false
		}
		return uint16(len(data)), true

	case svcBRAMWrite:
		if err := f.ensureDir(); err != nil {
			return 0, false
		}
		if err := os.WriteFile(f.path(filename), nil, 0o644); err != nil {
			return 0, false
		}
		return 0, true

	case svcBRAMDelete:
		p, wp := f.resolve(filename)
		if p == "" || wp {
			return 0, false
		}
		if err := os.Remove(p); err != nil {
			return 0, false
		}
		return 0, true

	case svcBRAMFormat:
		if err := f.ensureDir(); err != nil {
			return 0, false
		}
		matches, _ := filepath.Glob(filepath.Join(f.Dir, "*.brm"))
		for _, p := range matches {
			_ = os.Remove(p)
		}
		return 0, true

	case svcBRAMVerify:
		p, _ := f.resolve(filename)
		return 0, p != ""
	}
	return 0, false
}

func (f *Frontend) ensureDir() error {
	if f.Dir == "" {
		return curated.Errorf("savefile: no BRAM directory configured")
	}
	return os.MkdirAll(f.Dir, 0o755)
}
