package cdda_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/cd/cdda"
	"github.com/segacore/mdcore/test"
)

type fakeSource struct{}

func (fakeSource) ReadAudioFrame() (int16, int16, bool) { return 1000, -1000, true }

func TestStoppedProducesSilence(t *testing.T) {
	c := cdda.New(fakeSource{})
	left := make([]int16, 4)
	right := make([]int16, 4)
	c.Update(4, left, right)
	for _, v := range left {
		test.Equate(t, v, int16(0))
	}
}

func TestPlayingPassesThroughAtFullVolume(t *testing.T) {
	c := cdda.New(fakeSource{})
	c.Play(cdda.PlayOnce)
	left := make([]int16, 1)
	right := make([]int16, 1)
	c.Update(1, left, right)
	test.Equate(t, left[0], int16(1000))
	test.Equate(t, right[0], int16(-1000))
}

func TestFadeConverges(t *testing.T) {
	c := cdda.New(fakeSource{})
	c.FadeTo(0, 100)
	for i := 0; i < 20; i++ {
		c.UpdateFade()
	}
	c.Play(cdda.PlayOnce)
	left := make([]int16, 1)
	right := make([]int16, 1)
	c.Update(1, left, right)
	test.Equate(t, left[0], int16(0))
}
