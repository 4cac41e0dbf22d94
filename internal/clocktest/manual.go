// SPDX-License-Identifier: EPL-2.0

// Package clocktest provides a timer that only fires when told to, for
// driving a SampleClock deterministically in tests.
package clocktest

import (
	"sync"

	"github.com/ik5/pcm56play/clock"
)

// ManualTimer implements clock.Timer. Fire runs the registered callback
// when the timer is started.
type ManualTimer struct {
	mu      sync.Mutex
	res     uint64
	cb      clock.Callback
	alarm   clock.Alarm
	running bool
	calls   []string

	// Fail maps a lifecycle step ("register", "enable", "alarm", "start",
	// "stop", "disable", "delete") to the error it returns.
	Fail map[string]error
}

func NewManualTimer(resolutionHz uint64) *ManualTimer {
	return &ManualTimer{res: resolutionHz, Fail: map[string]error{}}
}

func (m *ManualTimer) step(name string) error {
	m.calls = append(m.calls, name)
	return m.Fail[name]
}

func (m *ManualTimer) ResolutionHz() uint64 { return m.res }

func (m *ManualTimer) RegisterCallback(cb clock.Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.step("register"); err != nil {
		return err
	}
	m.cb = cb

	return nil
}

func (m *ManualTimer) Enable() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.step("enable")
}

func (m *ManualTimer) SetAlarm(a clock.Alarm) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.step("alarm"); err != nil {
		return err
	}
	m.alarm = a

	return nil
}

func (m *ManualTimer) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.step("start"); err != nil {
		return err
	}
	m.running = true

	return nil
}

func (m *ManualTimer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false

	return m.step("stop")
}

func (m *ManualTimer) Disable() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.step("disable")
}

func (m *ManualTimer) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cb = nil

	return m.step("delete")
}

// Fire runs the callback n times. It returns how many ran; none do when the
// timer is stopped or deleted.
func (m *ManualTimer) Fire(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.cb == nil {
		return 0
	}

	for range n {
		m.cb()
	}

	return n
}

// Calls lists the lifecycle steps invoked so far.
func (m *ManualTimer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.calls...)
}

// Alarm returns the configured alarm.
func (m *ManualTimer) Alarm() clock.Alarm {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.alarm
}

// Running reports whether the timer is started.
func (m *ManualTimer) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}
