package resample_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/cd/resample"
	"github.com/segacore/mdcore/test"
)

func TestIdentityRateRoundTrips(t *testing.T) {
	r := resample.New(44100, 44100)
	input := []int16{100, 200, 300, 400, 500}
	idx := 0
	left := make([]int16, len(input))
	right := make([]int16, len(input))

	r.Pull(len(input), func() (int16, int16, bool) {
		if idx >= len(input) {
			return 0, 0, false
		}
		v := input[idx]
		idx++
		return v, v, true
	}, left, right)

	for i, v := range input {
		test.ExpectApproximate(t, float64(left[i]), float64(v), 0.01)
	}
}

func TestDownsampleProducesFewerDistinctSteps(t *testing.T) {
	r := resample.New(44100, 22050)
	n := 10
	idx := 0
	left := make([]int16, n)
	right := make([]int16, n)

	r.Pull(n, func() (int16, int16, bool) {
		idx++
		return int16(idx), int16(idx), true
	}, left, right)

	// halving the rate consumes two input frames per output frame, so
	// the output steps over every other input value: 1, 3, 5, ...
	for i := 0; i < n; i++ {
		test.Equate(t, left[i], int16(2*i+1))
	}
}
