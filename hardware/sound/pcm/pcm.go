// Package pcm implements the RF5C164 8-channel wavetable chip, run at
// MCD-68k/0x180 (≈32,552 Hz) (spec.md §4.4 "PCM (RF5C164)").
package pcm

import "github.com/segacore/mdcore/hardware/sound/lowpass"

const NativeRate = 32552
const BankSize = 4 * 1024
const channelCount = 8

// endMarker is the wavetable byte value that triggers looping back to a
// channel's configured loop address.
const endMarker = 0xFF

type channel struct {
	enabled  bool
	envelope uint8
	pan      uint8 // 4 bits left, 4 bits right, matching the real register layout
	step     uint16
	cursor   uint16 // 16.? fixed point: integer part selects the wave byte
	loopAddr uint8
	waveBank uint8
}

// PCM holds the chip's 64 KiB wave memory (16 banks of 4 KiB) and eight
// channel oscillators.
type PCM struct {
	Memory   [16 * BankSize]byte
	channels [channelCount]channel

	bankSelect uint8
	enabled    bool

	filter *lowpass.SecondOrder
}

func New() *PCM {
	return &PCM{filter: lowpass.NewSecondOrder(3.526, 0.132, 0.606)}
}

// SelectBank sets which 4 KiB bank subsequent Memory writes target.
func (p *PCM) SelectBank(bank uint8) { p.bankSelect = bank }

// SetEnabled turns the whole chip on or off, mirroring the RF5C164's
// global enable bit.
func (p *PCM) SetEnabled(enabled bool) { p.enabled = enabled }

// WriteWave writes one byte into the currently selected bank.
func (p *PCM) WriteWave(offset uint16, v uint8) {
	p.Memory[p.waveAddress(offset)] = v
}

// ReadWave reads one byte from the currently selected bank, mirroring
// WriteWave's addressing so the Sub-68k's 4 KiB wave window reads back
// whatever it last wrote through the same window.
func (p *PCM) ReadWave(offset uint16) uint8 {
	return p.Memory[p.waveAddress(offset)]
}

func (p *PCM) waveAddress(offset uint16) uint32 {
	return uint32(p.bankSelect)*BankSize + uint32(offset&(BankSize-1))
}

// WriteChannel updates a channel's envelope, pan, step, loop address, or
// enable state.
func (p *PCM) WriteChannel(ch int, envelope, pan uint8, step uint16, loopAddr, waveBank uint8, enable bool) {
	if ch < 0 || ch >= channelCount {
		return
	}
	c := &p.channels[ch]
	c.envelope, c.pan, c.step, c.loopAddr, c.waveBank = envelope, pan, step, loopAddr, waveBank
	if enable && !c.enabled {
		c.cursor = uint16(loopAddr) << 8
	}
	c.enabled = enable
}

// Update advances the chip by n native-rate samples and returns the
// filtered, summed stereo output as two floats in roughly [-1,1].
func (p *PCM) Update(n int) (left, right float64) {
	if !p.enabled {
		return 0, 0
	}
	var sumL, sumR float64
	for i := 0; i < n; i++ {
		for ch := range p.channels {
			c := &p.channels[ch]
			if !c.enabled {
				continue
			}
			addr := uint32(c.waveBank)*BankSize + uint32(c.cursor>>8)
			sample := int8(p.Memory[addr%uint32(len(p.Memory))])
			if uint8(sample) == endMarker {
				c.cursor = uint16(c.loopAddr) << 8
				continue
			}

			level := float64(sample) / 128 * (float64(c.envelope) / 255)
			leftPan := float64(c.pan>>4) / 15
			rightPan := float64(c.pan&0x0F) / 15
			sumL += level * leftPan
			sumR += level * rightPan

			c.cursor += c.step
		}
	}
	l := p.filter.Apply(sumL / float64(n))
	r := p.filter.Apply(sumR / float64(n))
	return clamp(l), clamp(r)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
