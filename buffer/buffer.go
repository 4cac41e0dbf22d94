// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"sync/atomic"

	"github.com/ik5/pcm56play/audio"
)

const slotCount = 2

// Buffer is a two-slot single-producer single-consumer sample buffer.
// Samples are stored packed in atomic words so concurrent access from the
// two contexts needs no lock.
type Buffer struct {
	slots    [slotCount][]atomic.Uint32
	limit    [slotCount]atomic.Uint32
	readSlot atomic.Uint32
	readPos  uint32 // owned by the consumer
	needData atomic.Bool
	swaps    atomic.Uint64
	capacity uint32
}

// New returns a buffer whose slots hold capacity samples each, already
// reset. It panics if capacity is not positive.
func New(capacity int) *Buffer {
	if capacity <= 0 || capacity > 1<<24 {
		panic("buffer: capacity out of range")
	}

	b := &Buffer{capacity: uint32(capacity)}
	for i := range b.slots {
		b.slots[i] = make([]atomic.Uint32, capacity)
	}
	b.Reset()

	return b
}

// Reset returns the buffer to its initial state: slot 0 is the read slot
// and counts as full of silence, slot 1 is full as well and the needs-data
// edge is raised so the producer's first NeedsData empties it.
// It must not run concurrently with Get, Put or NeedsData.
func (b *Buffer) Reset() {
	for i := range b.slots {
		for j := range b.slots[i] {
			b.slots[i][j].Store(0)
		}
		b.limit[i].Store(b.capacity)
	}

	b.readSlot.Store(0)
	b.readPos = 0
	b.swaps.Store(0)
	b.needData.Store(true)
}

func (b *Buffer) get() (audio.StereoSample, bool) {
	if b.capacity == 0 {
		return audio.StereoSample{}, false
	}

	r := b.readSlot.Load()
	if b.readPos >= b.limit[r].Load() {
		r ^= 1
		b.readSlot.Store(r)
		b.readPos = 0
		b.needData.Store(true)
		b.swaps.Add(1)
	}

	w := b.slots[r][b.readPos].Load()
	b.readPos++

	return audio.UnpackStereo(w), true
}

func (b *Buffer) put(s audio.StereoSample) bool {
	w := b.readSlot.Load() ^ 1

	n := b.limit[w].Load()
	if n >= b.capacity {
		return false
	}

	b.slots[w][n].Store(s.Pack())
	b.limit[w].Store(n + 1)

	return true
}

func (b *Buffer) needsData() bool {
	if !b.needData.CompareAndSwap(true, false) {
		return false
	}

	b.limit[b.readSlot.Load()^1].Store(0)

	return true
}

// Capacity is the number of samples a single slot holds.
func (b *Buffer) Capacity() int { return int(b.capacity) }

// ReadSlot is the slot the consumer currently drains.
func (b *Buffer) ReadSlot() int { return int(b.readSlot.Load()) }

// WriteSlot is the slot the producer currently fills. It is always the
// other slot than ReadSlot.
func (b *Buffer) WriteSlot() int { return int(b.readSlot.Load() ^ 1) }

// Fill reports how many valid samples slot i holds.
func (b *Buffer) Fill(i int) int { return int(b.limit[i&1].Load()) }

// Swaps counts slot swaps since the last Reset.
func (b *Buffer) Swaps() uint64 { return b.swaps.Load() }

// ISR returns the consumer side of the buffer. Only the sample clock
// callback may use it.
func (b *Buffer) ISR() ISR { return ISR{b: b} }

// Task returns the producer side of the buffer. Only the feed loop may
// use it.
func (b *Buffer) Task() Task { return Task{b: b} }

// ISR is the interrupt-context view: non-blocking Get only.
type ISR struct {
	b *Buffer
}

// Get returns the next sample, swapping slots when the read slot is
// exhausted. ok is false only for a view of a zero Buffer.
func (v ISR) Get() (audio.StereoSample, bool) { return v.b.get() }

// Task is the task-context view: Put and NeedsData.
type Task struct {
	b *Buffer
}

// Put appends s to the write slot. It returns false, dropping s, when the
// slot is full.
func (v Task) Put(s audio.StereoSample) bool { return v.b.put(s) }

// NeedsData reports true once per slot swap and empties the write slot
// for refilling.
func (v Task) NeedsData() bool { return v.b.needsData() }
