// Package fm implements the YM2612 FM synthesiser: six 4-operator FM
// channels, an LFO, two timers, and a DAC channel override, run at
// master/6/24 (spec.md §4.4 "FM (YM2612)").
package fm

import "github.com/segacore/mdcore/hardware/sound/lowpass"

const NativeRate = 53267

// lfoThresholds is the fixed divider table the LFO's 3-bit frequency
// select indexes into.
var lfoThresholds = [8]uint8{0x6C, 0x4D, 0x47, 0x43, 0x3E, 0x2C, 0x08, 0x05}

// detuneKeyCodes buckets an operator's frequency number into one of four
// key-code classes the detune table is indexed by.
var detuneKeyCodes = [16]uint8{0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 3, 3, 3, 3, 3, 3}

// detuneTable is the real per-block, per-key-code, per-detune-magnitude
// phase delta the chip adds or subtracts from an operator's step; the
// detune register's bit 2 (op.detune&0x4) selects the sign.
var detuneTable = [8][4][4]uint8{
	{{0, 0, 1, 2}, {0, 0, 1, 2}, {0, 0, 1, 2}, {0, 0, 1, 2}},
	{{0, 1, 2, 2}, {0, 1, 2, 3}, {0, 1, 2, 3}, {0, 1, 2, 3}},
	{{0, 1, 2, 4}, {0, 1, 3, 4}, {0, 1, 3, 4}, {0, 1, 3, 5}},
	{{0, 2, 4, 5}, {0, 2, 4, 6}, {0, 2, 4, 6}, {0, 2, 5, 7}},
	{{0, 2, 5, 8}, {0, 3, 6, 8}, {0, 3, 6, 9}, {0, 3, 7, 10}},
	{{0, 4, 8, 11}, {0, 4, 8, 12}, {0, 4, 9, 13}, {0, 5, 10, 14}},
	{{0, 5, 11, 16}, {0, 6, 12, 17}, {0, 6, 13, 19}, {0, 7, 14, 20}},
	{{0, 8, 16, 22}, {0, 8, 16, 22}, {0, 8, 16, 22}, {0, 8, 16, 22}},
}

type envelopePhase int

const (
	envAttack envelopePhase = iota
	envDecay
	envSustain
	envRelease
)

// algoOp describes one operator's place in an algorithm's modulation
// graph: up to two earlier operators summed as its modulation input (-1
// == none), and whether its output is summed into the channel's carrier
// output.
type algoOp struct {
	modSources [2]int
	carrier    bool
}

// algorithmGraph lists, for each of the YM2612's 8 algorithms and each of
// the 4 operators in execution order, where its modulation input comes
// from (spec.md §4.4 "FM"). Algorithms 1 and 2 each sum two independent
// modulator chains into a later operator, which a single-modSource model
// can't express, hence the second slot.
var algorithmGraph = [8][4]algoOp{
	0: {{[2]int{-1, -1}, false}, {[2]int{0, -1}, false}, {[2]int{1, -1}, false}, {[2]int{2, -1}, true}},
	1: {{[2]int{-1, -1}, false}, {[2]int{-1, -1}, false}, {[2]int{0, 1}, false}, {[2]int{2, -1}, true}},
	2: {{[2]int{-1, -1}, false}, {[2]int{-1, -1}, false}, {[2]int{1, -1}, false}, {[2]int{0, 2}, true}},
	3: {{[2]int{-1, -1}, false}, {[2]int{0, -1}, false}, {[2]int{-1, -1}, false}, {[2]int{1, 2}, true}},
	4: {{[2]int{-1, -1}, false}, {[2]int{0, -1}, true}, {[2]int{-1, -1}, false}, {[2]int{2, -1}, true}},
	5: {{[2]int{-1, -1}, false}, {[2]int{0, -1}, true}, {[2]int{0, -1}, true}, {[2]int{0, -1}, true}},
	6: {{[2]int{-1, -1}, false}, {[2]int{0, -1}, true}, {[2]int{-1, -1}, true}, {[2]int{-1, -1}, true}},
	7: {{[2]int{-1, -1}, true}, {[2]int{-1, -1}, true}, {[2]int{-1, -1}, true}, {[2]int{-1, -1}, true}},
}

// operator is one of the four phase/envelope generators feeding a
// channel's algorithm DAG.
type operator struct {
	fnum  uint16
	block uint8

	phase     uint32 // 15 integer + 17 fractional bits
	phaseStep uint32

	envPhase                                        envelopePhase
	envLevel                                         uint16 // 0..0x3FF, 0 == loudest
	totalLevel                                       uint8
	attackRate, decayRate, sustainRate, releaseRate uint8
	sustainLevel                                     uint8
	keyScale                                         uint8
	multiplier                                       uint8
	detune                                           uint8 // raw 3-bit field: bit 2 sign, bits 1-0 magnitude class
	amEnable                                          bool
	keyOn                                             bool

	ssgEnabled, ssgAttack, ssgAlternate, ssgHold bool
	ssgInverted                                   bool
}

// setFrequency latches an operator's own frequency number and block and
// rederives its phase step. Every operator shares a channel's frequency
// except channel 3's in per-operator frequency mode (spec.md §4.4 "FM"
// FM3 special mode), where each gets its own.
func (op *operator) setFrequency(fnum uint16, block uint8) {
	op.fnum = fnum & 0x7FF
	op.block = block & 0x7
	op.recalcPhaseStep()
}

// recalcPhaseStep rederives the per-sample phase increment from the
// operator's frequency, detune, and multiplier, reproducing the real
// chip's detune table and the 17-bit wraparound its adder's width causes
// (spec.md §4.4 "FM"; fixes Comix Zone's track 5 and other GEMS-engine
// games that rely on it). The LFO's phase-modulation contribution is
// folded in separately, per sample, in output.
func (op *operator) recalcPhaseStep() {
	fnum := uint32(op.fnum)
	block := uint32(op.block)

	step := (fnum << 1) & 0xFFF
	step <<= block
	step >>= 2 // octave-0 half-rate correction, then 16-bit down to 15-bit

	delta := uint32(detuneTable[block][detuneKeyCodes[fnum>>7]][op.detune&0x3])
	if op.detune&0x4 != 0 {
		step -= delta
	} else {
		step += delta
	}
	step &= 0x1FFFF

	mult := uint32(op.multiplier) * 2
	if mult == 0 {
		mult = 1
	}
	op.phaseStep = (step * mult / 2) << 6
}

// output advances the operator by one sample and returns its signed
// sample, clamped to -256..256, given the modulation input from earlier
// operators in the algorithm chain (spec.md §4.4 "FM"). No wider
// intermediate sample is produced: the sine lookup is already scaled to
// 256.
func (op *operator) output(modulation int32, lfoPhaseMod, lfoAmpMod uint8) int32 {
	op.advanceEnvelope()

	step := op.phaseStep
	if lfoPhaseMod != 0 {
		step = step + (step*uint32(lfoPhaseMod))>>7
	}
	op.phase = (op.phase + step) & 0x7FFFFFFF // preserve the documented 17-bit fractional wrap

	idx := (uint32(int32(op.phase>>17) + modulation)) & 0x3FF
	quadrant := idx >> 8
	tableIdx := idx & 0xFF
	if quadrant&1 != 0 {
		tableIdx = 0xFF - tableIdx
	}
	sine := sineTable[tableIdx]
	if quadrant&2 != 0 {
		sine = -sine
	}

	envLevel := op.envLevel
	if op.ssgEnabled && op.ssgInverted {
		envLevel = 0x3FF - envLevel
	}

	level := int32(envLevel) + int32(op.totalLevel)<<2
	if op.amEnable {
		level += int32(lfoAmpMod)
	}
	if level > 0x3FF {
		level = 0x3FF
	}

	attenuated := (sine * int32(0x400-level)) >> 10
	if attenuated > 256 {
		attenuated = 256
	}
	if attenuated < -256 {
		attenuated = -256
	}
	return attenuated
}

func (op *operator) advanceEnvelope() {
	switch op.envPhase {
	case envAttack:
		if op.attackRate == 0 {
			return
		}
		step := uint16(op.attackRate) * 2
		if op.envLevel <= step {
			op.envLevel = 0
			op.envPhase = envDecay
			return
		}
		op.envLevel -= step
	case envDecay:
		target := uint16(op.sustainLevel) << 5
		if op.envLevel >= target {
			op.envPhase = envSustain
			return
		}
		op.envLevel += uint16(op.decayRate)
	case envSustain:
		op.envLevel += uint16(op.sustainRate)
		op.clampOrLoopSSGEG()
	case envRelease:
		op.envLevel += uint16(op.releaseRate)
		op.clampOrLoopSSGEG()
	}
}

// clampOrLoopSSGEG caps envLevel at full attenuation, or, when SSG-EG is
// enabled and envLevel has run past its halfway mark, restarts or freezes
// the cycle per the programmed alternate/hold bits (spec.md §4.4 "FM"
// SSG-EG), instead of just saturating silently.
func (op *operator) clampOrLoopSSGEG() {
	if op.ssgEnabled && op.envLevel >= 0x200 {
		if op.ssgAlternate {
			op.ssgInverted = !op.ssgInverted
		}
		if op.ssgHold {
			op.envLevel = 0x3FF
			return
		}
		op.envLevel = 0
		if op.ssgAttack != op.ssgInverted {
			op.envPhase = envAttack
		} else {
			op.envPhase = envDecay
		}
		return
	}
	if op.envLevel > 0x3FF {
		op.envLevel = 0x3FF
	}
}

func (op *operator) keyEvent(on bool) {
	if on && !op.keyOn {
		op.envPhase = envAttack
		op.phase = 0
		op.ssgInverted = false
	} else if !on && op.keyOn {
		op.envPhase = envRelease
	}
	op.keyOn = on
}

// channel is one of the six FM voices; channel 6 can be overridden by
// the DAC.
type channel struct {
	ops         [4]operator
	algorithm   uint8
	feedback    uint8
	panLeft     bool
	panRight    bool
	feedbackAvg [2]int32

	fnumLatch  uint16
	blockLatch uint8
}

// setFrequencies applies one frequency to every operator, the normal
// (non-FM3-special-mode) behaviour.
func (c *channel) setFrequencies(fnum uint16, block uint8) {
	for i := range c.ops {
		c.ops[i].setFrequency(fnum, block)
	}
}

func (c *channel) render(lfoPhaseMod, lfoAmpMod uint8) int32 {
	graph := algorithmGraph[c.algorithm&0x7]

	fb := (c.feedbackAvg[0] + c.feedbackAvg[1]) >> 1
	shift := c.feedback
	var fbMod int32
	if shift > 0 {
		fbMod = fb << (shift - 1) >> 7
	}

	var outs [4]int32
	var sum int32
	for i := range c.ops {
		mod := int32(0)
		for _, src := range graph[i].modSources {
			if src >= 0 {
				mod += outs[src]
			}
		}
		if i == 0 {
			mod += fbMod
		}
		outs[i] = c.ops[i].output(mod>>1, lfoPhaseMod, lfoAmpMod)
		if graph[i].carrier {
			sum += outs[i]
		}
	}

	c.feedbackAvg[0], c.feedbackAvg[1] = c.feedbackAvg[1], outs[0]

	if sum > 256 {
		sum = 256
	}
	if sum < -256 {
		sum = -256
	}
	return sum
}

// freqPair is a latched frequency-number/block pair, used to remember
// channel 3's four per-operator frequency slots across mode toggles.
type freqPair struct {
	fnum  uint16
	block uint8
}

// FM is the full six-channel chip state.
type FM struct {
	Channels [6]channel

	dacEnable bool
	dacTest   bool
	dacSample int8

	lfoEnable bool
	lfoFreq   uint8
	lfoPhase  uint32

	timerA       uint16
	timerACount  uint16
	timerAEnable bool
	timerAFired  bool
	timerB       uint8
	timerBCount  uint16
	timerBEnable bool
	timerBFired  bool

	// Channel 3 special mode (spec.md §4.4 "FM" FmChannel): each of its
	// four operators can take an independently-programmed frequency
	// instead of sharing one, and CSM mode re-keys it on every Timer A
	// expiry to sample-and-hold its output.
	ch3PerOpFreq   bool
	ch3CSM         bool
	ch3Freq        [4]freqPair
	ch3MultiFreqHi uint8

	ladderEffect bool

	filter *lowpass.FirstOrder
}

func New() *FM {
	return &FM{ladderEffect: true, filter: lowpass.NewFirstOrder(6.910, 4.910)}
}

// WriteTimerA sets the 10-bit reload value (spec.md §4.4 "Timers").
func (f *FM) WriteTimerA(v uint16) { f.timerA = v & 0x3FF }

// WriteTimerB sets the 8-bit reload value.
func (f *FM) WriteTimerB(v uint8) { f.timerB = v }

// channelOperator maps a register's offset within its 0x30-aligned block
// to (operator index, channel index), per the YM2612's per-operator
// register layout: operators are interleaved across the three channels
// of a part in slot order 0,2,1,3.
func channelOperator(offset uint8) (op, ch int) {
	ch = int(offset & 0x3)
	opSlot := int(offset>>2) & 0x3
	// hardware slot order is 1,3,2,4; map to our 0-indexed op array.
	order := [4]int{0, 2, 1, 3}
	return order[opSlot], ch
}

// ch3MultiOpMap maps channel 3's multi-frequency register slot (0xA8's
// low two bits) onto the operator it programs; the mapping is reversed
// from the ordinary per-operator register layout, a real hardware quirk.
var ch3MultiOpMap = [3]int{2, 0, 1}

// WriteRegister applies one YM2612 register-port write. part selects the
// A0/A1 register block (0 == channels 1-3, 1 == channels 4-6); reg/data
// are the two bytes latched by consecutive writes to the chip's register
// and data ports (spec.md §4.4 "FM (YM2612)").
func (f *FM) WriteRegister(part int, reg, data uint8) {
	channelBase := 3 * part

	switch {
	case reg == 0x22:
		f.lfoEnable = data&0x8 != 0
		f.lfoFreq = data & 0x7
	case reg == 0x24:
		f.timerA = (f.timerA & 0x3) | uint16(data)<<2
	case reg == 0x25:
		f.timerA = (f.timerA & 0x3FC) | uint16(data&0x3)
	case reg == 0x26:
		f.timerB = data
	case reg == 0x27:
		perOp := data&0xC0 != 0
		if perOp != f.ch3PerOpFreq {
			f.ch3PerOpFreq = perOp
			ch3 := &f.Channels[2]
			for i := range ch3.ops {
				src := 3
				if perOp {
					src = i
				}
				ch3.ops[i].setFrequency(f.ch3Freq[src].fnum, f.ch3Freq[src].block)
			}
		}
		f.ch3CSM = data&0xC0 == 0x80
		f.timerAEnable = data&0x1 != 0
		f.timerBEnable = data&0x2 != 0
		if data&0x10 != 0 {
			f.timerAFired = false
		}
		if data&0x20 != 0 {
			f.timerBFired = false
		}
	case reg == 0x28:
		ch := int(data & 0x7)
		if ch >= 6 {
			return
		}
		for opIdx := 0; opIdx < 4; opIdx++ {
			if data&(0x10<<uint(opIdx)) != 0 {
				f.Channels[ch].ops[opIdx].keyEvent(true)
			} else {
				f.Channels[ch].ops[opIdx].keyEvent(false)
			}
		}
	case reg == 0x2A:
		f.dacSample = int8(data - 0x80)
	case reg == 0x2B:
		f.dacEnable = data&0x80 != 0
	case reg >= 0xA0 && reg < 0xA4:
		f.writeFrequencyRegister(channelBase, reg, data)
	case reg >= 0xA4 && reg < 0xA8:
		f.writeFrequencyRegister(channelBase, reg, data)
	case part == 0 && reg >= 0xA8 && reg < 0xAC:
		f.writeChannel3MultiFreqLow(reg, data)
	case part == 0 && reg >= 0xAC && reg < 0xB0:
		f.ch3MultiFreqHi = data & 0x3F
	case reg >= 0x30 && reg < 0xA0:
		f.writeOperatorRegister(channelBase, reg, data)
	case reg >= 0xB0 && reg < 0xB8:
		ch := channelBase + int(reg&0x3)
		if ch >= 6 {
			return
		}
		switch reg & 0xFC {
		case 0xB0:
			f.Channels[ch].feedback = (data >> 3) & 0x7
			f.Channels[ch].algorithm = data & 0x7
		case 0xB4:
			f.Channels[ch].panLeft = data&0x80 != 0
			f.Channels[ch].panRight = data&0x40 != 0
		}
	}
}

// writeFrequencyRegister latches the F-number/block registers that set a
// channel's base pitch. Channel 3 (index 2) is special-cased per spec.md
// §4.4 "FM" FmChannel: while per-operator frequency mode is enabled, this
// write only retunes operator 4, the other three keeping their
// independently-programmed frequencies.
func (f *FM) writeFrequencyRegister(channelBase int, reg, data uint8) {
	offset := (reg - 0xA0) % 4
	ch := channelBase + int(offset)
	if ch >= 6 {
		return
	}
	c := &f.Channels[ch]

	if reg < 0xA4 {
		c.fnumLatch = (c.fnumLatch & 0x700) | uint16(data)
		if ch == 2 {
			f.ch3Freq[3] = freqPair{c.fnumLatch, c.blockLatch}
			if f.ch3PerOpFreq {
				c.ops[3].setFrequency(c.fnumLatch, c.blockLatch)
				return
			}
		}
		c.setFrequencies(c.fnumLatch, c.blockLatch)
		return
	}

	c.blockLatch = (data >> 3) & 0x7
	c.fnumLatch = (c.fnumLatch & 0xFF) | uint16(data&0x7)<<8
	if ch == 2 {
		f.ch3Freq[3] = freqPair{c.fnumLatch, c.blockLatch}
	}
}

// writeChannel3MultiFreqLow programs one of channel 3's three
// non-carrier operators' frequency-number low bits, combining with the
// shared high-bits/block cache most recently written to 0xAC-0xAF.
func (f *FM) writeChannel3MultiFreqLow(reg, data uint8) {
	slot := int(reg - 0xA8)
	if slot == 3 {
		return // no fourth slot; real hardware has a gap here too
	}
	opIdx := ch3MultiOpMap[slot]
	fnum := uint16(data) | uint16(f.ch3MultiFreqHi&0x7)<<8
	block := (f.ch3MultiFreqHi >> 3) & 0x7
	f.ch3Freq[opIdx] = freqPair{fnum, block}
	if f.ch3PerOpFreq {
		f.Channels[2].ops[opIdx].setFrequency(fnum, block)
	}
}

func (f *FM) writeOperatorRegister(channelBase int, reg, data uint8) {
	block := reg & 0xF0
	offset := reg & 0x0F
	opIdx, chOff := channelOperator(offset)
	ch := channelBase + chOff
	if ch >= 6 {
		return
	}
	op := &f.Channels[ch].ops[opIdx]

	switch block {
	case 0x30:
		op.detune = (data >> 4) & 0x7
		op.multiplier = data & 0xF
		op.recalcPhaseStep()
	case 0x40:
		op.totalLevel = data & 0x7F
	case 0x50:
		op.keyScale = (data >> 6) & 0x3
		op.attackRate = data & 0x1F
	case 0x60:
		op.amEnable = data&0x80 != 0
		op.decayRate = data & 0x1F
	case 0x70:
		op.sustainRate = data & 0x1F
	case 0x80:
		op.sustainLevel = (data >> 4) & 0xF
		op.releaseRate = (data & 0xF) * 2
	case 0x90:
		op.ssgEnabled = data&0x08 != 0
		op.ssgAttack = data&0x04 != 0
		op.ssgAlternate = data&0x02 != 0
		op.ssgHold = data&0x01 != 0
	}
}

func (f *FM) tickTimers() {
	if f.timerAEnable {
		if f.timerACount == 0 {
			f.timerACount = 0x400 - f.timerA
			f.timerAFired = true
			if f.ch3CSM {
				ch3 := &f.Channels[2]
				for i := range ch3.ops {
					ch3.ops[i].keyEvent(true)
					ch3.ops[i].keyEvent(false)
				}
			}
		} else {
			f.timerACount--
		}
	}
	if f.timerBEnable {
		if f.timerBCount == 0 {
			f.timerBCount = 0x10 * (0x100 - uint16(f.timerB))
			f.timerBFired = true
		} else {
			f.timerBCount--
		}
	}
}

func (f *FM) lfoOutputs() (phaseMod, ampMod uint8) {
	if !f.lfoEnable {
		return 0, 0
	}
	threshold := lfoThresholds[f.lfoFreq&0x7]
	f.lfoPhase++
	if uint8(f.lfoPhase) >= threshold {
		f.lfoPhase = 0
	}
	step := uint8(f.lfoPhase) * 2
	return step, step / 2
}

// OutputSample advances the chip by one native-rate sample and returns
// the filtered, ladder-corrected signed output (spec.md §4.4 "FM").
func (f *FM) OutputSample() int16 {
	f.tickTimers()
	phaseMod, ampMod := f.lfoOutputs()

	var sum int32
	for i := range f.Channels {
		if i == 5 && f.dacEnable {
			sample := int32(f.dacSample) * 2
			if f.dacTest {
				sample *= 4
			}
			sum += sample
			continue
		}
		sum += f.Channels[i].render(phaseMod, ampMod)
	}

	if f.ladderEffect {
		if sum > 0 {
			sum += 4
		} else {
			sum -= 3
		}
	}

	filtered := f.filter.Apply(float64(sum) / 256.0)
	scaled := filtered * 8192
	if scaled > 32767 {
		scaled = 32767
	}
	if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}
