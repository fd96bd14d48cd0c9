package prefs

import (
	"path/filepath"

	"github.com/segacore/mdcore/hardware/clocks"
)

// Settings is the host-facing persisted configuration: region, the
// mixer's output sample rate, where BRAM save files live, and the
// per-bug emulation toggles spec.md §8/§9 call out as optionally
// disableable (a real console can't disable them; this core can, for
// comparison and debugging).
type Settings struct {
	disk *Disk

	region    String
	mixerRate Int
	bramDir   String

	bugFIFOShadowFill  Bool
	bugWordRAMDMADelay Bool
}

// NewSettings registers every field against a Disk backed by filename
// and seeds it with defaults (NTSC, 48 kHz, BRAM files alongside the
// prefs file, every documented bug left enabled).
func NewSettings(filename string) (*Settings, error) {
	dsk, err := NewDisk(filename)
	if err != nil {
		return nil, err
	}

	s := &Settings{disk: dsk}
	_ = s.region.Set("NTSC")
	_ = s.mixerRate.Set(48000)
	_ = s.bramDir.Set(filepath.Dir(filename))
	_ = s.bugFIFOShadowFill.Set(true)
	_ = s.bugWordRAMDMADelay.Set(true)

	for name, v := range map[string]Value{
		"region":              &s.region,
		"mixer.rate":          &s.mixerRate,
		"bram.directory":      &s.bramDir,
		"bug.fifoShadowFill":  &s.bugFIFOShadowFill,
		"bug.wordRAMDMADelay": &s.bugWordRAMDMADelay,
	} {
		if err := dsk.Add(name, v); err != nil {
			return nil, err
		}
	}

	_ = dsk.Load()
	return s, nil
}

// Save persists the current settings.
func (s *Settings) Save() error { return s.disk.Save() }

// Region maps the persisted region string onto clocks.Region, defaulting
// to NTSC for anything unrecognised.
func (s *Settings) Region() clocks.Region {
	if s.region.Get() == "PAL" {
		return clocks.PAL
	}
	return clocks.NTSC
}

func (s *Settings) SetRegion(r clocks.Region) {
	if r == clocks.PAL {
		_ = s.region.Set("PAL")
		return
	}
	_ = s.region.Set("NTSC")
}

// MixerRate is the host output sample rate mixer.Mixer.Render resamples
// every chip's native rate down to.
func (s *Settings) MixerRate() uint32 { return uint32(s.mixerRate.Get()) }

func (s *Settings) SetMixerRate(hz int) { _ = s.mixerRate.Set(hz) }

// BRAMDirectory is where save-file BRAM operations (spec.md §4.5
// "BIOS-call trampoline" BRAM services) read and write their
// "<name>[.wp].brm" files.
func (s *Settings) BRAMDirectory() string { return s.bramDir.Get() }

func (s *Settings) SetBRAMDirectory(dir string) { _ = s.bramDir.Set(dir) }

// FIFOShadowFillBug and WordRAMDMADelayBug report whether the
// correspondingly-named documented hardware quirk (spec.md §4.2 "DMA"
// fill bug, §9 delayed WORD-RAM DMA read) should be reproduced.
// Disabling one trades hardware accuracy for a "how would this look if
// Sega had fixed it" comparison.
func (s *Settings) FIFOShadowFillBug() bool  { return s.bugFIFOShadowFill.Get() }
func (s *Settings) WordRAMDMADelayBug() bool { return s.bugWordRAMDMADelay.Get() }
