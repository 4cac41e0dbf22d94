// SPDX-License-Identifier: EPL-2.0

package dac

import "errors"

var (
	// ErrInvalidPin indicates a GPIO number outside 0..31
	ErrInvalidPin = errors.New("dac: gpio must be in range 0..31")

	// ErrDuplicatePin indicates two DAC lines mapped to the same GPIO
	ErrDuplicatePin = errors.New("dac: gpio assigned to more than one line")

	// ErrPinInUse is returned by ports when a line is already owned
	ErrPinInUse = errors.New("dac: gpio already in use")
)
