package fm_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/sound/fm"
	"github.com/segacore/mdcore/test"
)

func TestOutputSampleDoesNotPanic(t *testing.T) {
	chip := fm.New()
	for i := 0; i < 100; i++ {
		_ = chip.OutputSample()
	}
	test.ExpectSuccess(t, true)
}

func TestTimerAReload(t *testing.T) {
	chip := fm.New()
	chip.WriteTimerA(0x3FF) // reload value near max: short countdown (0x400-0x3FF=1)
	for i := 0; i < 5; i++ {
		chip.OutputSample()
	}
	test.ExpectSuccess(t, true)
}
