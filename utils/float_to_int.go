// SPDX-License-Identifier: EPL-2.0

// Package utils holds sample conversion and interpolation helpers.
package utils

// Float32ToInt16 scales x from [-1, 1] to 16 bits. Values outside the
// range are clamped.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1 from overflowing
	return int16(x * 32767.0)
}

// Float32ToInt16Slice converts src into dst and returns the number of
// samples converted, the shorter of the two lengths.
func Float32ToInt16Slice(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Float32ToInt16(src[i])
	}

	return n
}
