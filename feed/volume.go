// SPDX-License-Identifier: EPL-2.0

package feed

// Shift is the number of bits a raw sample is shifted right to reach the
// output width at the given volume. Negative means a left shift.
func Shift(decoderBits, outputBits, volume int) int {
	return (decoderBits - outputBits) - volume
}

// ShiftRaw shifts raw by shift bits, right for positive values and left for
// negative ones, in 32-bit arithmetic.
func ShiftRaw(raw int32, shift int) int32 {
	switch {
	case shift == 0:
		return raw
	case shift > 0:
		return raw >> shift
	default:
		return raw << -shift
	}
}

// Apply converts raw to an output sample. The result wraps to 16 bits.
func Apply(raw int32, shift int) int16 {
	return int16(ShiftRaw(raw, shift))
}
