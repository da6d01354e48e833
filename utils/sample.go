// SPDX-License-Identifier: EPL-2.0

// Package utils holds scalar sample helpers shared by the decoders, the
// resampler and the file sinks.
package utils

// CubicInterpolate evaluates a Catmull-Rom spline through four consecutive
// samples. x is the fractional position between y1 and y2 (0 <= x <= 1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}

// Clamp limits x to [-1, 1].
func Clamp(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	default:
		return x
	}
}

// FullScale is the largest positive integer value for bitDepth bits.
func FullScale(bitDepth int) int {
	if bitDepth < 2 || bitDepth > 32 {
		return 0
	}

	return int(int64(1)<<(bitDepth-1) - 1)
}

// FloatToInt scales a float sample to a signed integer of bitDepth bits.
// Out of range input is clamped. The positive full scale is used for both
// polarities so the result never overflows.
func FloatToInt(x float32, bitDepth int) int {
	return int(float64(Clamp(x)) * float64(FullScale(bitDepth)))
}

// IntToFloat is the inverse of FloatToInt.
func IntToFloat(v int, bitDepth int) float32 {
	fs := FullScale(bitDepth)
	if fs == 0 {
		return 0
	}

	return Clamp(float32(float64(v) / float64(fs)))
}

// Float32ToInt16 is FloatToInt for 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	return int16(Clamp(x) * 32767.0)
}
