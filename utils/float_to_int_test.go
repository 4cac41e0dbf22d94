// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float32
		want  int16
	}{
		{0, 0},
		{1, math.MaxInt16},
		{-1, -math.MaxInt16},
		{0.5, 16383},
		{-0.5, -16383},
		{0.001, 32},
		// vorbis can overshoot full scale slightly
		{1.0001, math.MaxInt16},
		{-1.5, -math.MaxInt16},
		{100, math.MaxInt16},
	}

	for _, tt := range tests {
		if got := Float32ToInt16(tt.input); got != tt.want {
			t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFloat32ToInt16_MonotonicAndSymmetric(t *testing.T) {
	t.Parallel()

	prev := Float32ToInt16(-1)
	for i := -100; i <= 100; i++ {
		f := float32(i) / 100
		got := Float32ToInt16(f)

		if got < prev {
			t.Fatalf("Float32ToInt16(%v) = %d, below previous %d", f, got, prev)
		}
		if neg := Float32ToInt16(-f); got != -neg {
			t.Errorf("Float32ToInt16(%v) = %d, Float32ToInt16(%v) = %d", f, got, -f, neg)
		}
		prev = got
	}
}

func TestFloat32ToInt16Slice(t *testing.T) {
	t.Parallel()

	src := []float32{0, 0.5, -0.5, 2, -2}

	tests := []struct {
		name string
		dst  int
		want int
	}{
		{name: "same length", dst: 5, want: 5},
		{name: "short dst", dst: 3, want: 3},
		{name: "long dst", dst: 8, want: 5},
		{name: "empty dst", dst: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dst := make([]int16, tt.dst)
			if n := Float32ToInt16Slice(dst, src); n != tt.want {
				t.Fatalf("Float32ToInt16Slice() = %d, want %d", n, tt.want)
			}

			for i := range tt.want {
				if dst[i] != Float32ToInt16(src[i]) {
					t.Errorf("dst[%d] = %d, want %d", i, dst[i], Float32ToInt16(src[i]))
				}
			}
		})
	}
}

// BenchmarkFloat32ToInt16Slice converts one block of stereo vorbis output
func BenchmarkFloat32ToInt16Slice(b *testing.B) {
	src := make([]float32, 2*4096)
	dst := make([]int16, len(src))
	for i := range src {
		src[i] = float32(math.Sin(float64(i) * 0.1))
	}

	b.ReportAllocs()
	for b.Loop() {
		Float32ToInt16Slice(dst, src)
	}
}
