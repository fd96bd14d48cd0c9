package mdcore_test

import (
	"testing"

	"github.com/segacore/mdcore"
	"github.com/segacore/mdcore/hardware/controller"
	"github.com/segacore/mdcore/test"
)

type fakeControllerSrc struct{}

func (fakeControllerSrc) ButtonDown(port int, b controller.Button) bool { return false }

type fakeVideoFrontend struct {
	scanlines int
}

func (f *fakeVideoFrontend) ColourUpdated(index uint8, rgb444 uint16) {}
func (f *fakeVideoFrontend) ScanlineRendered(y int, pixels []uint8, left, right, screenW, screenH int) {
	f.scanlines++
}

// TestNewCartridgeOnlyBoot exercises the cartridge-only construction and
// boot path with no CPU interpreters attached: Iterate should still
// advance the Main-68k clock line by line and drive scanlines through the
// video frontend.
func TestNewCartridgeOnlyBoot(t *testing.T) {
	video := &fakeVideoFrontend{}
	cfg := mdcore.Config{
		VideoFrontend: video,
		ControllerSrc: fakeControllerSrc{},
		ROM:           make([]byte, 0x10000),
	}

	m, err := mdcore.New(cfg)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m.MegaCDPresent, false)

	m.Iterate()

	if video.scanlines == 0 {
		t.Fatalf("expected Iterate to render at least one scanline, got %d", video.scanlines)
	}
}

// TestNewRejectsEmptyROM confirms the cartridge layer's validation is
// surfaced through New rather than swallowed.
func TestNewRejectsEmptyROM(t *testing.T) {
	cfg := mdcore.Config{
		VideoFrontend: &fakeVideoFrontend{},
		ControllerSrc: fakeControllerSrc{},
	}

	_, err := mdcore.New(cfg)
	test.ExpectFailure(t, err)
}
