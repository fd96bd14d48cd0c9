// Package scheduler implements the cycle accountant described in spec.md
// §4.1: a shared notion of "time", expressed as a 32-bit Main-68k master
// clock cycle count, against which every other component is synced before
// its state is observed by another component.
package scheduler

// Component is anything the Scheduler can drive forward: a CPU, the Z80,
// or an audio chip ticking once per sample. Step executes one atomic unit
// of work (one instruction, one LFO tick, one sample) and returns its
// cycle-length in the component's own clock domain; Clock.Sync calls
// Step again once that many cycles have passed.
type Component interface {
	// Step executes the next atomic unit and returns how many cycles (in
	// this component's own domain) the unit just executed cost.
	Step() uint32

	// Halted reports whether the component should be skipped over (bus
	// request, reset-held) rather than stepped.
	Halted() bool
}

// Clock tracks one component's progress against the Scheduler's shared
// cycle count: how far it has run (CurrentCycle) and how many cycles
// remain in the atomic unit currently in flight (Countdown).
//
// This is the "cycle countdown + current cycle pair" of spec.md §9,
// expressed as a single primitive struct with the Scheduler as its only
// operator.
type Clock struct {
	CurrentCycle uint32
	Countdown    uint32
}

// Sync advances the clock up to target, running whole atomic units of c
// via Step until either the countdown would take it past target or c
// reports Halted. See spec.md §4.1 "Sync primitive".
//
// Invariant: after Sync returns, cl.CurrentCycle == target (spec.md §8).
// Invariant: Countdown > 0 immediately after a step, so calling Sync again
// with the same target is a no-op (spec.md §4.1 invariant 2, §8 idempotence).
func (cl *Clock) Sync(c Component, target uint32) {
	for cl.CurrentCycle < target {
		if c.Halted() {
			cl.CurrentCycle = target
			break
		}

		remaining := target - cl.CurrentCycle
		run := cl.Countdown
		if run > remaining {
			run = remaining
		}

		cl.CurrentCycle += run
		cl.Countdown -= run

		if cl.Countdown == 0 {
			cl.Countdown = c.Step()
		}
	}
}

// Domain performs an exact fixed-point conversion of a cycle count from one
// clock domain to another, per spec.md §4.1: the scale constant is
// 0x80000000*dst/src, a Q31 fixed-point ratio, giving sub-cycle precision
// without ever needing a floating-point division in the hot path. The
// scale is precomputed once in two 16-bit halves, matching the source's
// split-multiplication technique for platforms without a native 32x32->64
// multiply; Go's uint64 arithmetic performs the equivalent sum exactly.
type Domain struct {
	scaleHi uint32 // bits 16..31 of the Q31 scale
	scaleLo uint32 // bits 0..15 of the Q31 scale
}

// NewDomain derives the scale factor for converting a cycle count in the
// srcRate domain into the dstRate domain.
func NewDomain(srcRate, dstRate uint32) Domain {
	scale := uint64(0x80000000) * uint64(dstRate) / uint64(srcRate)
	return Domain{
		scaleHi: uint32(scale >> 16),
		scaleLo: uint32(scale & 0xFFFF),
	}
}

// Convert maps a cycle count from the source domain into the destination
// domain: cycles * (scaleHi<<16 | scaleLo) >> 31.
func (d Domain) Convert(cycles uint32) uint32 {
	scale := uint64(d.scaleHi)<<16 | uint64(d.scaleLo)
	return uint32((uint64(cycles) * scale) >> 31)
}

// MasterClock satisfies random.Source: the scheduler's own progress is the
// natural source of "ambient randomness" for power-on memory contents.
type MasterClock struct {
	Clock
}

// Cycle returns the current master-clock cycle count.
func (m *MasterClock) Cycle() uint32 {
	return m.CurrentCycle
}
