// SPDX-License-Identifier: EPL-2.0

// Package periph drives the DAC and relay lines through periph.io.
//
// Lines are looked up as "GPIO<n>". Each Set or Clear touches only the
// lines in its mask, one pin write per line, so a frame is much slower than
// on a memory mapped register port. It is still exact in ordering.
package periph

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/ik5/pcm56play/dac"
)

var (
	ErrPinNotFound = errors.New("periph: pin not found")
	ErrNotOutput   = errors.New("periph: pin not configured as output")
)

var initOnce = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

// Init loads the host drivers. It is safe to call more than once.
func Init() error {
	if err := initOnce(); err != nil {
		return fmt.Errorf("periph: host init: %w", err)
	}
	return nil
}

// Lookup resolves a pin name, nil when unknown.
type Lookup func(name string) gpio.PinIO

type Option func(*Port)

// WithLookup replaces gpioreg.ByName.
func WithLookup(fn Lookup) Option {
	return func(p *Port) { p.lookup = fn }
}

func name(n uint8) string { return fmt.Sprintf("GPIO%d", n) }

// Port is a dac.Port over periph pins.
type Port struct {
	lookup Lookup
	pins   [dac.MaxPin + 1]gpio.PinIO
	errs   atomic.Uint64
}

func NewPort(opts ...Option) *Port {
	p := &Port{lookup: gpioreg.ByName}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Port) ConfigureOutput(mask uint32) error {
	for m := mask; m != 0; m &= m - 1 {
		n := uint8(bits.TrailingZeros32(m))

		pin := p.lookup(name(n))
		if pin == nil {
			return fmt.Errorf("%w: %s", ErrPinNotFound, name(n))
		}
		if err := pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("periph: %s: %w", name(n), err)
		}
		p.pins[n] = pin
	}

	return nil
}

// Set drives the configured lines in mask high. Unconfigured lines are
// ignored.
func (p *Port) Set(mask uint32) { p.write(mask, gpio.High) }

// Clear drives the configured lines in mask low.
func (p *Port) Clear(mask uint32) { p.write(mask, gpio.Low) }

func (p *Port) write(mask uint32, l gpio.Level) {
	for m := mask; m != 0; m &= m - 1 {
		if pin := p.pins[bits.TrailingZeros32(m)]; pin != nil {
			if err := pin.Out(l); err != nil {
				p.errs.Add(1)
			}
		}
	}
}

// WriteErrors counts failed pin writes. Set and Clear cannot return
// errors, a non-zero count means frames were corrupted.
func (p *Port) WriteErrors() uint64 { return p.errs.Load() }

// ResetPin switches the line back to a floating input.
func (p *Port) ResetPin(n uint8) error {
	if int(n) >= len(p.pins) || p.pins[n] == nil {
		return fmt.Errorf("%w: %s", ErrNotOutput, name(n))
	}

	pin := p.pins[n]
	p.pins[n] = nil
	if err := pin.In(gpio.Float, gpio.NoEdge); err != nil {
		return fmt.Errorf("periph: %s: %w", name(n), err)
	}

	return nil
}

var _ dac.Port = (*Port)(nil)
