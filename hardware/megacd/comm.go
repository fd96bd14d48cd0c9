package megacd

// CommBlock is the Main<->Sub communication area: a flag word plus eight
// command words Main writes and eight status words Sub writes (spec.md
// §3 "CommBlock").
type CommBlock struct {
	Flag     uint16
	Command  [8]uint16
	Status   [8]uint16
}

// IRQState tracks the Sub-68k's interrupt enable bitmap and the two
// countdown-driven interrupts (spec.md §4.5 and §9 Open Question:
// IRQ3's reload arithmetic is preserved verbatim rather than corrected,
// since at least one known title depends on the "off by one" behaviour).
type IRQState struct {
	EnableMask uint8 // bit N enables level N's interrupt

	irq1Pending bool
	irq2Pending bool

	irq3Countdown uint16
	irq3Reload    uint16
	irq3Enabled   bool
}

// LatchIRQ1 is raised by the graphics ASIC on completing a render, and
// by the CDC on certain transfer completions.
func (s *IRQState) LatchIRQ1() {
	if s.EnableMask&(1<<1) != 0 {
		s.irq1Pending = true
	}
}

// TakeIRQ1 clears and reports whether IRQ1 was pending.
func (s *IRQState) TakeIRQ1() bool {
	p := s.irq1Pending
	s.irq1Pending = false
	return p
}

// RequestIRQ2 is raised by Main's RESET/HALT register writing its
// interrupt-trigger bit, the Sub-68k's level-2 IRQ.
func (s *IRQState) RequestIRQ2() {
	if s.EnableMask&(1<<2) != 0 {
		s.irq2Pending = true
	}
}

// TakeIRQ2 clears and reports whether IRQ2 was pending.
func (s *IRQState) TakeIRQ2() bool {
	p := s.irq2Pending
	s.irq2Pending = false
	return p
}

// SetIRQ3Reload programs IRQ3's countdown period, in units of the
// Sub-68k's horizontal sync, and whether it's enabled.
func (s *IRQState) SetIRQ3Reload(reload uint16, enabled bool) {
	// The real firmware reloads the countdown from the *previous*
	// register value rather than the one just written, an inconsistency
	// several CD titles' timing code implicitly relies on; preserved
	// here by loading irq3Countdown from the old irq3Reload before
	// storing the new one.
	s.irq3Countdown = s.irq3Reload
	s.irq3Reload = reload
	s.irq3Enabled = enabled
}

// TickIRQ3 advances the countdown by one unit, returning true on the
// tick it reaches zero; the following tick reloads it from the
// last-programmed value, so a reload of N fires once every N+1 ticks.
func (s *IRQState) TickIRQ3() bool {
	if !s.irq3Enabled {
		return false
	}
	if s.irq3Countdown == 0 {
		s.irq3Countdown = s.irq3Reload
		return false
	}
	s.irq3Countdown--
	if s.irq3Countdown == 0 {
		return s.EnableMask&(1<<3) != 0
	}
	return false
}
