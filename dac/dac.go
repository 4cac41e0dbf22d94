// SPDX-License-Identifier: EPL-2.0

package dac

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ik5/pcm56play/audio"
)

// MaxPin is the highest GPIO number a single output register can address.
const MaxPin = 31

// latchBit is the frame bit during which latch-enable is raised.
const latchBit = 14

// Port is a 32-line output register.
type Port interface {
	// ConfigureOutput switches the lines in mask to push-pull outputs.
	ConfigureOutput(mask uint32) error
	// Set drives the lines in mask high, leaving the others untouched.
	Set(mask uint32)
	// Clear drives the lines in mask low, leaving the others untouched.
	Clear(mask uint32)
	// ResetPin returns a line to its default floating input state.
	ResetPin(pin uint8) error
}

// PinConfig maps the DAC lines to GPIO numbers.
type PinConfig struct {
	Clock       uint8
	Ch1Data     uint8
	Ch2Data     uint8
	LatchEnable uint8
}

func (c PinConfig) pins() [4]uint8 {
	return [4]uint8{c.Clock, c.Ch1Data, c.Ch2Data, c.LatchEnable}
}

// Validate checks the pins are addressable and distinct.
func (c PinConfig) Validate() error {
	var seen uint32
	for _, p := range c.pins() {
		if p > MaxPin {
			return fmt.Errorf("%w: %d", ErrInvalidPin, p)
		}
		if seen&(1<<p) != 0 {
			return fmt.Errorf("%w: %d", ErrDuplicatePin, p)
		}
		seen |= 1 << p
	}

	return nil
}

// Mask is the union of all four line bitmasks.
func (c PinConfig) Mask() uint32 {
	var m uint32
	for _, p := range c.pins() {
		m |= 1 << p
	}

	return m
}

// Driver owns the four DAC lines of a Port for its lifetime.
type Driver struct {
	port Port
	cfg  PinConfig

	clk uint32
	ch1 uint32
	ch2 uint32
	le  uint32

	writes atomic.Uint64
	closed atomic.Bool
}

// New validates cfg and configures its lines as outputs on port.
func New(port Port, cfg PinConfig) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := port.ConfigureOutput(cfg.Mask()); err != nil {
		return nil, fmt.Errorf("dac: configure outputs: %w", err)
	}

	return &Driver{
		port: port,
		cfg:  cfg,
		clk:  1 << cfg.Clock,
		ch1:  1 << cfg.Ch1Data,
		ch2:  1 << cfg.Ch2Data,
		le:   1 << cfg.LatchEnable,
	}, nil
}

// Write shifts s into both DACs and latches it. It performs 65 register
// writes, never blocks and never allocates.
func (d *Driver) Write(s audio.StereoSample) {
	v1, v2 := uint16(s.Ch1), uint16(s.Ch2)

	for i := 15; i >= 0; i-- {
		mask := uint16(1) << i

		var set, reset uint32
		if i == latchBit {
			set |= d.le
		}

		if v1&mask != 0 {
			set |= d.ch1
		} else {
			reset |= d.ch1
		}

		if v2&mask != 0 {
			set |= d.ch2
		} else {
			reset |= d.ch2
		}

		// clear before set so no data line is briefly high by accident
		d.port.Clear(reset)
		d.port.Set(set)

		d.port.Set(d.clk)
		d.port.Clear(d.clk)
	}

	d.port.Clear(d.le)
	d.writes.Add(1)
}

// Writes counts samples written since New.
func (d *Driver) Writes() uint64 { return d.writes.Load() }

// Pins returns the driver's pin mapping.
func (d *Driver) Pins() PinConfig { return d.cfg }

// Close releases the four lines. Calling it more than once is a no-op.
func (d *Driver) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	for _, p := range d.cfg.pins() {
		if err := d.port.ResetPin(p); err != nil {
			errs = append(errs, fmt.Errorf("dac: reset gpio %d: %w", p, err))
		}
	}

	return errors.Join(errs...)
}
