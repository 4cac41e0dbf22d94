// SPDX-License-Identifier: EPL-2.0

package clock

// Callback runs in alarm context. It must not block or allocate. The return
// value mirrors the hardware driver convention and is ignored by soft timers.
type Callback func() bool

// Alarm configures when the timer fires.
type Alarm struct {
	// Count is the tick count at which the alarm fires.
	Count uint64
	// Reload is the counter value after an auto-reload.
	Reload uint64
	// AutoReload makes the alarm periodic.
	AutoReload bool
}

// Timer is a general purpose up-counting timer with one alarm. The
// lifecycle is RegisterCallback, Enable, SetAlarm, Start and, on teardown,
// Stop, Disable, Delete.
type Timer interface {
	// ResolutionHz is the counter frequency.
	ResolutionHz() uint64
	RegisterCallback(cb Callback) error
	Enable() error
	SetAlarm(a Alarm) error
	Start() error
	// Stop halts the counter. When it returns no callback is running or
	// will run until the next Start.
	Stop() error
	Disable() error
	Delete() error
}
