// SPDX-License-Identifier: EPL-2.0

package monitor

import (
	"sync/atomic"

	"github.com/ik5/pcm56play/audio"
)

// Ring is a single producer, single consumer queue of stereo samples.
// Push drops the sample when the ring is full.
type Ring struct {
	buf  []uint32
	mask uint64

	head atomic.Uint64 // next read, owned by the consumer
	tail atomic.Uint64 // next write, owned by the producer

	dropped atomic.Uint64
}

// NewRing returns a ring holding at least capacity samples, rounded up to
// a power of two.
func NewRing(capacity int) *Ring {
	n := 1
	for n < capacity {
		n <<= 1
	}

	return &Ring{buf: make([]uint32, n), mask: uint64(n - 1)}
}

func (r *Ring) Push(s audio.StereoSample) bool {
	t := r.tail.Load()
	if t-r.head.Load() == uint64(len(r.buf)) {
		r.dropped.Add(1)
		return false
	}

	r.buf[t&r.mask] = s.Pack()
	r.tail.Store(t + 1)

	return true
}

func (r *Ring) Pop() (audio.StereoSample, bool) {
	h := r.head.Load()
	if h == r.tail.Load() {
		return audio.StereoSample{}, false
	}

	s := audio.UnpackStereo(r.buf[h&r.mask])
	r.head.Store(h + 1)

	return s, true
}

// Len is the number of queued samples.
func (r *Ring) Len() int { return int(r.tail.Load() - r.head.Load()) }

// Dropped counts samples lost to a full ring.
func (r *Ring) Dropped() uint64 { return r.dropped.Load() }
