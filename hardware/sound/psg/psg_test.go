package psg_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/sound/psg"
	"github.com/segacore/mdcore/test"
)

func TestToneLatchAndPeriod(t *testing.T) {
	p := psg.New()
	p.WriteData(0x80) // latch channel 0 tone, low nibble 0
	p.WriteData(0x10) // high byte of period

	// just confirm Update doesn't panic and returns a finite value.
	out := p.Update(100)
	test.ExpectSuccess(t, out == out) // NaN check via self-equality
}

func TestAttenuationSilencesChannel(t *testing.T) {
	p := psg.New()
	p.WriteData(0x9F) // latch register 1 (channel 0 attenuation), value 15 (silent)
	out := p.Update(50)
	test.Equate(t, out, 0.0)
}
