package controller_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/controller"
	"github.com/segacore/mdcore/test"
)

type fakeSource struct {
	down map[controller.Button]bool
}

func (f fakeSource) ButtonDown(port int, b controller.Button) bool {
	return f.down[b]
}

func TestTHStrobeProtocol(t *testing.T) {
	src := fakeSource{down: map[controller.Button]bool{
		controller.C:    true,
		controller.B:    true,
		controller.Right: true,
		controller.Left:  true,
		controller.Start: true,
		controller.A:     true,
	}}

	c := controller.NewController(0, src)
	port := &controller.IoPort{Controller: c}

	port.WriteData(0x40) // TH high
	got := port.ReadData()
	test.Equate(t, got&0x3F, uint8(0x03)) // C,B,Right,Left pressed (active low, bits clear); Down,Up released (bits set)

	port.WriteData(0x00) // TH low
	got = port.ReadData()
	test.Equate(t, got&0x3F, uint8(0x03)) // Start,A pressed (bits clear); Down,Up released (bits set)
}
