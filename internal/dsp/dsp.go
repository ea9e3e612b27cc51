// Package dsp holds small numeric helpers shared by the decode pipeline
// (internal/floor1, internal/setup and the top-level vorbis package):
// integer logarithm and
// generic clamping, the same two primitives the Vorbis I format leans on
// throughout its bitstream field-width and curve-rendering definitions.
package dsp

import "golang.org/x/exp/constraints"

// Clamp restricts v to [lo, hi] inclusive.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ILog returns the position of the highest set bit in v, counted from 1
// (ILog(0) == 0, ILog(1) == 1, ILog(2) == 2, ILog(4) == 3), matching the
// Vorbis I specification's `ilog` used to size bitstream fields from a
// maximum value.
func ILog[T constraints.Integer](v T) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// Abs returns the absolute value of a signed integer.
func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
