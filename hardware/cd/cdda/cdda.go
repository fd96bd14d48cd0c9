// Package cdda implements Red Book audio playback: pulling stereo
// samples from the disc, applying master/session volume and fades, and
// reporting frame-accurate play/pause state to the BIOS trampoline
// (spec.md §4.3 "CDDA").
package cdda

// FramesPerSecond is the Red Book CD-DA sector rate; update_fade is
// documented as driven at this rate on real hardware.
const FramesPerSecond = 75

// Source pulls one stereo sample at a time from the positioned audio
// track.
type Source interface {
	ReadAudioFrame() (left, right int16, ok bool)
}

// PlayMode controls whether playback stops, loops the current track, or
// advances through all tracks once a track ends, per spec.md §4.5 "BIOS
// call trampoline" music service codes.
type PlayMode int

const (
	PlayOnce PlayMode = iota
	PlayRepeat
	PlayAll
)

// CDDA holds playback state: the transport flags, master/session
// volume, and an in-flight fade.
type CDDA struct {
	src Source

	playing bool
	paused  bool
	mode    PlayMode

	masterVolume  int32 // 0..1024
	sessionVolume int32

	fadeTarget    int32
	fadeStep      int32
	fadeRemaining int32
}

// New returns a CDDA with full volume and no fade in progress.
func New(src Source) *CDDA {
	return &CDDA{src: src, masterVolume: 1024, sessionVolume: 1024}
}

func (c *CDDA) Play(mode PlayMode) { c.playing = true; c.paused = false; c.mode = mode }
func (c *CDDA) Stop()              { c.playing = false; c.paused = false }
func (c *CDDA) Pause()             { c.paused = true }
func (c *CDDA) Resume()            { c.paused = false }

// SetVolume sets master or session volume directly (spec.md §4.5 "BIOS
// call trampoline" FDRSET).
func (c *CDDA) SetVolume(master bool, v int32) {
	if master {
		c.masterVolume = clampVolume(v)
	} else {
		c.sessionVolume = clampVolume(v)
	}
}

// FadeTo begins a linear crossfade of session volume toward target,
// decrementing by step per UpdateFade call (spec.md §4.5 "BIOS call
// trampoline" FDRCHG, §4.3 "CDDA" fade_to).
func (c *CDDA) FadeTo(target, step int32) {
	c.fadeTarget = clampVolume(target)
	c.fadeStep = step
	c.fadeRemaining = abs32(c.fadeTarget - c.sessionVolume)
}

// UpdateFade advances the in-flight fade by one step; intended to be
// called once per output frame (the source calls it at 75 Hz; the
// spec explicitly allows ticking it at the frontend's frame rate
// instead).
func (c *CDDA) UpdateFade() {
	if c.fadeRemaining <= 0 {
		return
	}
	delta := c.fadeStep
	if delta > c.fadeRemaining {
		delta = c.fadeRemaining
	}
	if c.sessionVolume < c.fadeTarget {
		c.sessionVolume += delta
	} else {
		c.sessionVolume -= delta
	}
	c.fadeRemaining -= delta
}

// Update pulls up to frames stereo samples into left/right, scaling by
// the combined volume and zero-padding anything the source couldn't
// supply (spec.md §4.3 "CDDA" update()).
func (c *CDDA) Update(frames int, left, right []int16) {
	for i := 0; i < frames; i++ {
		if !c.playing || c.paused {
			left[i], right[i] = 0, 0
			continue
		}

		l, r, ok := c.src.ReadAudioFrame()
		if !ok {
			left[i], right[i] = 0, 0
			continue
		}

		scale := float64(c.masterVolume) / 1024 * float64(c.sessionVolume) / 1024
		left[i] = scaleSample(l, scale)
		right[i] = scaleSample(r, scale)
	}
}

func scaleSample(v int16, scale float64) int16 {
	f := float64(v) * scale
	if f > 32767 {
		f = 32767
	}
	if f < -32768 {
		f = -32768
	}
	return int16(f)
}

func clampVolume(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 1024 {
		return 1024
	}
	return v
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
