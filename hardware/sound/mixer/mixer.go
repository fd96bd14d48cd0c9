// Package mixer sums the FM, PSG, and PCM chips' output (plus whatever
// CD-DA audio the frontend feeds in) into a single stereo 16-bit PCM
// stream at the host's output rate, and tracks a rolling queue-depth
// average the frontend can use to keep emulation speed in lockstep with
// audio drain (spec.md §4.4 "Mixer").
package mixer

import (
	"github.com/segacore/mdcore/hardware/cd/resample"
	"github.com/segacore/mdcore/hardware/sound/fm"
	"github.com/segacore/mdcore/hardware/sound/pcm"
	"github.com/segacore/mdcore/hardware/sound/psg"
)

const windowSize = 16

// Mixer owns one resampler per source, each converting from that chip's
// native rate to OutputRate.
type Mixer struct {
	OutputRate uint32

	fmSrc  *fm.FM
	psgSrc *psg.PSG
	pcmSrc *pcm.PCM

	fmResample  *resample.Resampler
	psgResample *resample.Resampler
	pcmResample *resample.Resampler

	queueDepths [windowSize]int
	queueHead   int
}

// New builds a Mixer wired to the three chip sources. outputRate is
// typically the host audio device's rate (commonly 44,100 or 48,000 Hz).
func New(f *fm.FM, p *psg.PSG, c *pcm.PCM, outputRate uint32) *Mixer {
	return &Mixer{
		OutputRate:  outputRate,
		fmSrc:       f,
		psgSrc:      p,
		pcmSrc:      c,
		fmResample:  resample.New(fm.NativeRate, outputRate),
		psgResample: resample.New(psg.NativeRate, outputRate),
		pcmResample: resample.New(pcm.NativeRate, outputRate),
	}
}

// Begin is called by the host at the start of a frame's audio
// generation; it is a no-op placeholder matching the begin/end shape the
// frontend callbacks expect (spec.md §4.4 "Mixer" "host calls begin/end
// around each frame").
func (m *Mixer) Begin() {}

// End is called by the host once a frame's audio has been produced.
func (m *Mixer) End() {}

// Render produces n stereo frames into left/right: it takes n samples
// from each of FM, PSG and PCM, passes each set through that chip's
// resampler, and adds the CD-DA frames when they are given.
func (m *Mixer) Render(n int, left, right []int16, cddaL, cddaR []int16) {
	fmBuf := make([]int16, n)
	for i := range fmBuf {
		fmBuf[i] = m.fmSrc.OutputSample()
	}

	psgBuf := make([]int16, n)
	for i := range psgBuf {
		psgBuf[i] = int16(m.psgSrc.Update(1) * 32767)
	}

	pcmL := make([]int16, n)
	pcmR := make([]int16, n)
	for i := 0; i < n; i++ {
		l, r := m.pcmSrc.Update(1)
		pcmL[i] = int16(l * 32767)
		pcmR[i] = int16(r * 32767)
	}

	resL := make([]int16, n)
	resR := make([]int16, n)
	idx := 0
	m.fmResample.Pull(n, func() (int16, int16, bool) {
		if idx >= len(fmBuf) {
			return 0, 0, false
		}
		v := fmBuf[idx]
		idx++
		return v, v, true
	}, resL, resR)

	pIdx := 0
	psgResL := make([]int16, n)
	psgResR := make([]int16, n)
	m.psgResample.Pull(n, func() (int16, int16, bool) {
		if pIdx >= len(psgBuf) {
			return 0, 0, false
		}
		v := psgBuf[pIdx]
		pIdx++
		return v, v, true
	}, psgResL, psgResR)

	cIdx := 0
	pcmResL := make([]int16, n)
	pcmResR := make([]int16, n)
	m.pcmResample.Pull(n, func() (int16, int16, bool) {
		if cIdx >= len(pcmL) {
			return 0, 0, false
		}
		l, r := pcmL[cIdx], pcmR[cIdx]
		cIdx++
		return l, r, true
	}, pcmResL, pcmResR)

	for i := 0; i < n; i++ {
		sumL := int32(resL[i]) + int32(psgResL[i]) + int32(pcmResL[i])
		sumR := int32(resR[i]) + int32(psgResR[i]) + int32(pcmResR[i])
		if i < len(cddaL) {
			sumL += int32(cddaL[i])
			sumR += int32(cddaR[i])
		}
		left[i] = clamp16(sumL)
		right[i] = clamp16(sumR)
	}
}

// ObserveQueueDepth records the host's currently queued frame count into
// the rolling window the frontend uses to compute a playback-speed ratio
// (spec.md §4.4 "Mixer" — "the average number of host-queued frames over
// a rolling window of 16 samples").
func (m *Mixer) ObserveQueueDepth(depth int) {
	m.queueDepths[m.queueHead%windowSize] = depth
	m.queueHead++
}

// AverageQueueDepth returns the rolling window's average queue depth.
func (m *Mixer) AverageQueueDepth() float64 {
	n := m.queueHead
	if n > windowSize {
		n = windowSize
	}
	if n == 0 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		sum += m.queueDepths[i]
	}
	return float64(sum) / float64(n)
}

// SpeedRatio returns a numerator/denominator playback-speed ratio derived
// from the rolling average queue depth relative to a target depth, for
// the frontend to apply to the audio stream's frequency-scaling input
// (spec.md §4.4 "Mixer").
func (m *Mixer) SpeedRatio(targetDepth int) (numerator, denominator int) {
	avg := m.AverageQueueDepth()
	if avg <= 0 || targetDepth <= 0 {
		return 1, 1
	}
	const scale = 1000
	numerator = int(avg * scale)
	denominator = targetDepth * scale
	if numerator == 0 {
		numerator = 1
	}
	return numerator, denominator
}

func clamp16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
