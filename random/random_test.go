package random_test

import (
	"testing"

	"github.com/segacore/mdcore/random"
	"github.com/segacore/mdcore/test"
)

type cycleSource struct{}

func (cycleSource) Cycle() uint32 { return 1234 }

func TestRandomDeterministic(t *testing.T) {
	a := random.NewRandom(cycleSource{})
	b := random.NewRandom(cycleSource{})
	a.ZeroSeed = true
	b.ZeroSeed = true

	for i := 1; i < 256; i++ {
		test.ExpectEquality(t, a.Rewindable(i), b.Rewindable(i))
	}
}

func TestRandomFill(t *testing.T) {
	r := random.NewRandom(cycleSource{})
	buf := make([]byte, 16)
	r.Fill(buf, 0)

	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
		}
	}
	test.ExpectFailure(t, allZero)
}
