// Package psg implements the SN76489 programmable sound generator: three
// tone channels plus a noise channel, run at Z80/16 (spec.md §4.4 "PSG").
package psg

import "github.com/segacore/mdcore/hardware/sound/lowpass"

const NativeRate = 223722

type tone struct {
	period  uint16
	counter uint16
	output  bool
	atten   uint8 // 0..15, 15 == silent
}

type noise struct {
	control uint8
	lfsr    uint16
	counter uint16
	output  bool
	atten   uint8
}

// PSG is the chip's full register/oscillator state.
type PSG struct {
	tones    [3]tone
	nz       noise
	latch  int // which register the next data byte's low nibble targets
	filter *lowpass.FirstOrder
}

func New() *PSG {
	p := &PSG{filter: lowpass.NewFirstOrder(26.044, 24.044)}
	p.nz.lfsr = 1 << 15
	for i := range p.tones {
		p.tones[i].atten = 0x0F
	}
	p.nz.atten = 0x0F
	return p
}

// WriteData implements the PSG's single 8-bit write port. The top bit of
// the byte distinguishes a latch/data byte from a second data byte that
// completes a 10-bit tone period (spec.md §4.4 "PSG" register latches).
func (p *PSG) WriteData(v uint8) {
	if v&0x80 != 0 {
		p.latch = int(v>>4) & 0x7
		p.apply(p.latch, uint16(v&0x0F), true)
		return
	}
	p.apply(p.latch, uint16(v&0x3F), false)
}

// apply updates either a tone period's low/high half, an attenuation
// value, or the noise control byte, depending on which logical register
// is latched.
func (p *PSG) apply(reg int, v uint16, firstByte bool) {
	switch reg {
	case 0, 2, 4: // tone channel periods
		ch := reg / 2
		if firstByte {
			p.tones[ch].period = (p.tones[ch].period & 0x3F0) | v
		} else {
			p.tones[ch].period = (p.tones[ch].period & 0x00F) | (v << 4)
		}
	case 1, 3, 5: // tone channel attenuations
		ch := reg / 2
		p.tones[ch].atten = uint8(v) & 0x0F
	case 6: // noise control
		prevFlip := p.nz.control & 0x03
		p.nz.control = uint8(v) & 0x07
		if p.nz.control&0x03 != prevFlip {
			p.nz.lfsr = 1 << 15
		}
	case 7: // noise attenuation
		p.nz.atten = uint8(v) & 0x0F
	}
}

// noisePeriod resolves the noise channel's rate: either one of three
// fixed dividers, or channel 2's own tone period when control bits 0-1
// are both set (the SN76489's documented "noise follows tone 3" mode).
func (p *PSG) noisePeriod() uint16 {
	switch p.nz.control & 0x03 {
	case 0:
		return 0x10
	case 1:
		return 0x20
	case 2:
		return 0x40
	default:
		return p.tones[2].period
	}
}

// Update advances the chip by n native-rate cycles and returns the
// filtered, summed output of the four channels as a float in roughly
// [-1,1], ready for the mixer to resample.
func (p *PSG) Update(n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		for ch := range p.tones {
			t := &p.tones[ch]
			if t.counter == 0 {
				t.counter = t.period
				t.output = !t.output
			} else {
				t.counter--
			}
			if t.output && t.atten < 15 {
				sum += attenLevel(t.atten)
			}
		}

		period := p.noisePeriod()
		if p.nz.counter == 0 {
			p.nz.counter = period
			flipped := !p.nz.output
			p.nz.output = flipped
			if flipped {
				bit := (p.nz.lfsr & 1) ^ ((p.nz.lfsr >> 3) & 1)
				if p.nz.control&0x04 == 0 {
					bit = p.nz.lfsr & 1 // periodic noise: plain shift, no feedback tap
				}
				p.nz.lfsr = (p.nz.lfsr >> 1) | (bit << 15)
			}
		} else {
			p.nz.counter--
		}
		if p.nz.lfsr&1 != 0 && p.nz.atten < 15 {
			sum += attenLevel(p.nz.atten)
		}
	}
	avg := sum / float64(n)
	return p.filter.Apply(avg)
}

// attenLevel converts a 4-bit attenuation (0 == loudest, 15 == silent)
// into a linear amplitude in [0,1] using the SN76489's 2 dB/step table,
// collapsed to a straightforward exponential approximation.
func attenLevel(atten uint8) float64 {
	if atten >= 15 {
		return 0
	}
	level := 1.0
	for i := uint8(0); i < atten; i++ {
		level *= 0.7943 // 10^(-2/20), 2 dB per step
	}
	return level * 0.25
}
