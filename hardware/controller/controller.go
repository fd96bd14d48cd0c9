// Package controller implements the two standard controller ports: the
// programmable 8-bit IoPort register pair and the TH-strobe 3/6-button
// protocol layered on top of it, per spec.md §2 "Controller/IOPort".
package controller

// Button identifies one physical button the frontend can report state for.
type Button int

const (
	Up Button = iota
	Down
	Left
	Right
	A
	B
	C
	Start
	X
	Y
	Z
	Mode
)

// Source is queried by Controller for the live state of each button; the
// frontend implements this (spec.md §6 input_requested).
type Source interface {
	ButtonDown(port int, b Button) bool
}

// IoPort is one of the three programmable 8-bit I/O ports (two controller
// ports plus the expansion port), per spec.md §3 "IoPort".
type IoPort struct {
	DataMask   uint8 // which bits are driven as outputs
	LastWrite  uint8
	Controller *Controller
}

// WriteData latches a byte written to the port's data register and, if a
// controller is attached, lets it react to the TH line transitioning.
func (p *IoPort) WriteData(v uint8) {
	prev := p.LastWrite
	p.LastWrite = v
	if p.Controller != nil {
		p.Controller.onWrite(prev, v)
	}
}

// ReadData returns the byte the attached controller currently presents
// on the bus, or the last written value with input bits floating high if
// no controller is attached.
func (p *IoPort) ReadData() uint8 {
	if p.Controller != nil {
		return p.Controller.read(p.LastWrite)
	}
	return p.LastWrite | ^p.DataMask
}

// thBit is the TH line, bit 6 of the controller data register.
const thBit = 0x40

// Controller implements the 6-button TH-strobe protocol: four reads at
// alternating TH level cycle through {face buttons, start/A, (nothing),
// mode ID nibble} depending on how many TH transitions have happened
// recently, per spec.md §3 "Controller" / §8 scenario 4.
type Controller struct {
	Port int
	src  Source

	th          bool
	strobeCount int

	// countdown models the TH-strobe timing window: after a handful of
	// cycles with no further TH toggle, the protocol resets to the 3-button
	// view (spec.md §3 "TH-line countdown").
	countdown int
}

// NewController attaches button Source src to logical port (0 or 1).
func NewController(port int, src Source) *Controller {
	return &Controller{Port: port, src: src}
}

func (c *Controller) onWrite(prev, v uint8) {
	th := v&thBit != 0
	if th != c.th {
		c.strobeCount++
		c.countdown = 8
	}
	c.th = th
}

// Tick decrements the strobe countdown; intended to be called once per
// scanline by the machine so a controller that stops being strobed falls
// back to reporting standard 3-button state.
func (c *Controller) Tick() {
	if c.countdown > 0 {
		c.countdown--
		if c.countdown == 0 {
			c.strobeCount = 0
		}
	}
}

func (c *Controller) pressed(b Button) uint8 {
	if c.src != nil && c.src.ButtonDown(c.Port, b) {
		return 0
	}
	return 1 // active-low: 1 == released
}

// read returns the byte visible on the data bus for the current TH level
// and strobe phase, with bit 6 (TH) echoing the last written value.
func (c *Controller) read(lastWrite uint8) uint8 {
	var low6 uint8

	if c.th {
		// TH high: {C, B, Right, Left, Down, Up} in bits 5..0, per
		// spec.md §8 scenario 4.
		low6 = c.pressed(C)<<5 | c.pressed(B)<<4 | c.pressed(Right)<<3 |
			c.pressed(Left)<<2 | c.pressed(Down)<<1 | c.pressed(Up)
	} else {
		switch c.strobeCount % 4 {
		case 3:
			// fourth TH-low phase of the 6-button handshake: the low
			// nibble reports the button ID instead of button state.
			low6 = 0x0
		default:
			// {Start, A, 0, 0, Down, Up}
			low6 = c.pressed(Start)<<5 | c.pressed(A)<<4 | 0<<3 | 0<<2 |
				c.pressed(Down)<<1 | c.pressed(Up)
		}
	}

	th := uint8(0)
	if lastWrite&thBit != 0 {
		th = thBit
	}
	return th | 0x80 | low6
}
