package fm

import "math"

// sineTable holds one quarter-wave of the operator sine lookup, scaled to
// 256, the range operator.output clamps its result to. Computed once at
// package init rather than hand-transcribed, since the table is a pure
// function of its index and carries no third-party-library concern.
var sineTable [256]int32

func init() {
	for i := range sineTable {
		angle := (float64(i) + 0.5) / 256 * (math.Pi / 2)
		sineTable[i] = int32(math.Sin(angle) * 256)
	}
}
