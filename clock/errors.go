// SPDX-License-Identifier: EPL-2.0

package clock

import "errors"

var (
	// ErrInvalidRate indicates parameters that give no usable alarm period
	ErrInvalidRate = errors.New("clock: invalid sample rate or calibration")

	// ErrTimerSetup wraps any failure while arming the timer
	ErrTimerSetup = errors.New("clock: timer setup failed")

	// ErrTimerState is returned by timers driven out of order
	ErrTimerState = errors.New("clock: timer in wrong state")
)
