package lowpass_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/sound/lowpass"
	"github.com/segacore/mdcore/test"
)

func TestFirstOrderConvergesOnConstantInput(t *testing.T) {
	f := lowpass.NewFirstOrder(6.910, 4.910)
	var out float64
	for i := 0; i < 10000; i++ {
		out = f.Apply(1.0)
	}
	test.ExpectApproximate(t, out, 1.0, 0.01)
}

func TestSecondOrderConvergesOnConstantInput(t *testing.T) {
	f := lowpass.NewSecondOrder(3.526, 0.132, 0.606)
	var out float64
	for i := 0; i < 10000; i++ {
		out = f.Apply(1.0)
	}
	test.ExpectApproximate(t, out, 1.0, 0.01)
}
