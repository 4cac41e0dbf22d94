// SPDX-License-Identifier: EPL-2.0

package periph

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Relay switches the amplifier power and source relays together.
type Relay struct {
	pins []gpio.PinIO
}

// NewRelay configures the given lines as low outputs. Negative numbers
// are skipped.
func NewRelay(lookup Lookup, lines ...int) (*Relay, error) {
	if lookup == nil {
		return nil, errors.New("periph: nil lookup")
	}

	r := &Relay{}
	for _, n := range lines {
		if n < 0 {
			continue
		}

		pin := lookup(fmt.Sprintf("GPIO%d", n))
		if pin == nil {
			return nil, fmt.Errorf("%w: GPIO%d", ErrPinNotFound, n)
		}
		if err := pin.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("periph: GPIO%d: %w", n, err)
		}
		r.pins = append(r.pins, pin)
	}

	return r, nil
}

func (r *Relay) Set(on bool) error {
	l := gpio.Low
	if on {
		l = gpio.High
	}

	var errs []error
	for _, pin := range r.pins {
		if err := pin.Out(l); err != nil {
			errs = append(errs, fmt.Errorf("periph: %s: %w", pin.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// Close releases the relay lines, leaving the relays off.
func (r *Relay) Close() error {
	var errs []error
	for _, pin := range r.pins {
		errs = append(errs, pin.Out(gpio.Low), pin.Halt())
	}

	return errors.Join(errs...)
}
