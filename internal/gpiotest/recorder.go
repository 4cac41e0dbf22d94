// SPDX-License-Identifier: EPL-2.0

// Package gpiotest provides an output register that records every write,
// for asserting pin-level protocols in tests.
package gpiotest

import (
	"errors"
	"sync"
)

// Op is the kind of register write.
type Op uint8

const (
	OpSet Op = iota + 1
	OpClear
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpClear:
		return "clear"
	default:
		return "?"
	}
}

// Write is one recorded register write.
type Write struct {
	Op   Op
	Mask uint32
}

var ErrPinInUse = errors.New("gpiotest: pin already configured")

// Recorder implements dac.Port in memory.
type Recorder struct {
	mu         sync.Mutex
	writes     []Write
	level      uint32
	configured uint32
	resets     []uint8

	// ConfigureErr, when set, is returned by ConfigureOutput.
	ConfigureErr error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ConfigureOutput(mask uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ConfigureErr != nil {
		return r.ConfigureErr
	}
	if r.configured&mask != 0 {
		return ErrPinInUse
	}
	r.configured |= mask

	return nil
}

func (r *Recorder) Set(mask uint32) {
	r.mu.Lock()
	r.writes = append(r.writes, Write{Op: OpSet, Mask: mask})
	r.level |= mask
	r.mu.Unlock()
}

func (r *Recorder) Clear(mask uint32) {
	r.mu.Lock()
	r.writes = append(r.writes, Write{Op: OpClear, Mask: mask})
	r.level &^= mask
	r.mu.Unlock()
}

func (r *Recorder) ResetPin(pin uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configured &^= 1 << pin
	r.level &^= 1 << pin
	r.resets = append(r.resets, pin)

	return nil
}

// Writes returns a copy of the recorded writes.
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Write, len(r.writes))
	copy(out, r.writes)

	return out
}

// Level is the current output level of all lines.
func (r *Recorder) Level() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.level
}

// Configured is the mask of lines currently configured as outputs.
func (r *Recorder) Configured() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.configured
}

// Resets lists the pins passed to ResetPin, in order.
func (r *Recorder) Resets() []uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]uint8(nil), r.resets...)
}

// Reset forgets the recorded writes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.writes = r.writes[:0]
	r.mu.Unlock()
}
