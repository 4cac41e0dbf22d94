// SPDX-License-Identifier: EPL-2.0

// Package pcm56 emulates a pair of PCM56 serial-input DACs wired the way
// the dac package drives them: shared clock and latch-enable, one data
// line per chip. It implements dac.Port, so a dac.Driver can be pointed at
// it on hosts without GPIO and the recovered words inspected or played.
//
// Each chip samples its data line on the rising edge of the clock into a
// 16-bit shift register and transfers the register to its output on the
// falling edge of latch-enable.
package pcm56

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/dac"
)

var ErrNotConfigured = errors.New("pcm56: line not configured as output")

// Pair is the emulated stereo DAC pair.
type Pair struct {
	clk, ch1, ch2, le uint32

	mu         sync.Mutex
	configured uint32

	// written only from the driving goroutine
	level  atomic.Uint32
	shift1 uint16
	shift2 uint16
	bits   int

	out     atomic.Uint32
	latches atomic.Uint64
	short   atomic.Uint64

	onLatch func(audio.StereoSample)
}

// Option configures a Pair.
type Option func(*Pair)

// WithLatchHook calls fn with every committed sample, from the driving
// goroutine. fn must not block.
func WithLatchHook(fn func(audio.StereoSample)) Option {
	return func(p *Pair) { p.onLatch = fn }
}

// New returns a pair wired to pins.
func New(pins dac.PinConfig, opts ...Option) *Pair {
	p := &Pair{
		clk: 1 << pins.Clock,
		ch1: 1 << pins.Ch1Data,
		ch2: 1 << pins.Ch2Data,
		le:  1 << pins.LatchEnable,
	}
	for _, o := range opts {
		o(p)
	}

	return p
}

func (p *Pair) ConfigureOutput(mask uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.configured&mask != 0 {
		return dac.ErrPinInUse
	}
	p.configured |= mask

	return nil
}

func (p *Pair) ResetPin(pin uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := uint32(1) << pin
	if p.configured&m == 0 {
		return ErrNotConfigured
	}
	p.configured &^= m
	p.level.Store(p.level.Load() &^ m)

	return nil
}

func (p *Pair) Set(mask uint32) {
	prev := p.level.Load()
	cur := prev | mask
	p.level.Store(cur)

	if prev&p.clk == 0 && cur&p.clk != 0 {
		p.shift1 = p.shift1<<1 | bit(cur, p.ch1)
		p.shift2 = p.shift2<<1 | bit(cur, p.ch2)
		p.bits++
	}
}

func (p *Pair) Clear(mask uint32) {
	prev := p.level.Load()
	cur := prev &^ mask
	p.level.Store(cur)

	if prev&p.le != 0 && cur&p.le == 0 {
		p.commit()
	}
}

func (p *Pair) commit() {
	if p.bits < 16 {
		p.short.Add(1)
	}
	p.bits = 0

	s := audio.StereoSample{Ch1: int16(p.shift1), Ch2: int16(p.shift2)}
	p.out.Store(s.Pack())
	p.latches.Add(1)

	if p.onLatch != nil {
		p.onLatch(s)
	}
}

func bit(level, mask uint32) uint16 {
	if level&mask != 0 {
		return 1
	}

	return 0
}

// Output is the sample currently presented on the analog outputs.
func (p *Pair) Output() audio.StereoSample {
	return audio.UnpackStereo(p.out.Load())
}

// Latches counts committed samples.
func (p *Pair) Latches() uint64 { return p.latches.Load() }

// ShortFrames counts latches that happened with fewer than 16 clocks.
func (p *Pair) ShortFrames() uint64 { return p.short.Load() }

// Level is the current state of all lines.
func (p *Pair) Level() uint32 { return p.level.Load() }
