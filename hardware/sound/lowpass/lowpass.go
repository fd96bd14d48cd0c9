// Package lowpass implements the first- and second-order IIR filters each
// sound chip runs its output through before the mixer resamples it
// (spec.md §4.4 "Post-mix pass").
package lowpass

// FirstOrder is a one-pole low-pass filter, used by the FM and PSG cores.
// It's built from a two-stage cascade of the same pole so that it shares
// the "magic coefficient pair" shape the original firmware documents its
// filters against, even though a single pole only needs one coefficient.
type FirstOrder struct {
	a, b   float64
	p1, p2 float64
}

// NewFirstOrder builds a filter from its magic coefficient pair.
func NewFirstOrder(a, b float64) *FirstOrder {
	return &FirstOrder{a: magic(a), b: magic(b)}
}

func magic(v float64) float64 { return v / (v + 1) }

// Apply filters one sample and returns the filtered output.
func (f *FirstOrder) Apply(sample float64) float64 {
	f.p1 = f.a*sample + (1-f.a)*f.p1
	f.p2 = f.b*f.p1 + (1-f.b)*f.p2
	return f.p2
}

// SecondOrder is a three-stage cascaded low-pass filter used by the PCM
// core, which needs steeper rolloff to avoid aliasing its comparatively
// coarse 32,552 Hz native rate up to the mixer's output rate.
type SecondOrder struct {
	a, b, c    float64
	p1, p2, p3 float64
}

// NewSecondOrder builds a filter from its three magic coefficients.
func NewSecondOrder(a, b, c float64) *SecondOrder {
	return &SecondOrder{a: magic(a), b: magic(b), c: magic(c)}
}

// Apply filters one sample through three cascaded poles.
func (f *SecondOrder) Apply(sample float64) float64 {
	f.p1 = f.a*sample + (1-f.a)*f.p1
	f.p2 = f.b*f.p1 + (1-f.b)*f.p2
	f.p3 = f.c*f.p2 + (1-f.c)*f.p3
	return f.p3
}
