// Package clocks defines the master clock rates the rest of the core derives
// every per-component rate from, per spec.md §4.1 "Time model".
package clocks

// Region selects which of the two master-clock families the machine runs.
type Region int

const (
	NTSC Region = iota
	PAL
)

// MasterClock is the Main-68k master clock rate, in Hz, for the given
// region. Every other component's tick rate (Sub-68k, Z80, FM, PSG, PCM) is
// derived from this value by the Scheduler's fixed-point domain conversion.
func (r Region) MasterClock() uint32 {
	switch r {
	case PAL:
		return 53203424
	default:
		return 53693175
	}
}

// Per-component sample/tick rates in Hz, per spec.md §4.4. These are fixed
// by each chip's own internal divider and do not shift between NTSC and
// PAL the way the 68k master clock does.
const (
	Z80Clock  = 3579545
	FMRate    = 53267  // YM2612 internal output-sample rate
	PSGRate   = 223722 // SN76489 at Z80/16
	PCMRate   = 32552  // RF5C164 at Sub-68k/0x180
	CDDARate  = 44100  // Red Book CD-DA
	MixerRate = 48000  // default host output rate (MIXER_OUTPUT_SAMPLE_RATE)
)
