// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"runtime"
	"sync"
	"time"
)

// DefaultSoftTick is how often a SoftTimer wakes up to run due alarms.
const DefaultSoftTick = time.Millisecond

// SoftTimer emulates a hardware alarm timer with a goroutine pinned to an
// OS thread. The goroutine wakes every tick and runs every alarm that fell
// due since the last wakeup, so the average rate is exact while individual
// callbacks arrive in bursts.
type SoftTimer struct {
	resolution uint64
	tick       time.Duration

	mu      sync.Mutex
	cb      Callback
	alarm   Alarm
	armed   bool
	enabled bool
	deleted bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSoftTimer returns a timer counting at resolutionHz that wakes every
// tick. Zero values select DefaultResolutionHz and DefaultSoftTick.
func NewSoftTimer(resolutionHz uint64, tick time.Duration) *SoftTimer {
	if resolutionHz == 0 {
		resolutionHz = DefaultResolutionHz
	}
	if tick <= 0 {
		tick = DefaultSoftTick
	}

	return &SoftTimer{resolution: resolutionHz, tick: tick}
}

func (t *SoftTimer) ResolutionHz() uint64 { return t.resolution }

func (t *SoftTimer) RegisterCallback(cb Callback) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.deleted || t.enabled || cb == nil {
		return ErrTimerState
	}
	t.cb = cb

	return nil
}

func (t *SoftTimer) Enable() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.deleted || t.enabled {
		return ErrTimerState
	}
	t.enabled = true

	return nil
}

func (t *SoftTimer) SetAlarm(a Alarm) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.deleted || a.Count == 0 {
		return ErrTimerState
	}
	t.alarm = a
	t.armed = true

	return nil
}

func (t *SoftTimer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.deleted || !t.enabled || !t.armed || t.cb == nil || t.stop != nil {
		return ErrTimerState
	}

	period := time.Duration(float64(t.alarm.Count) / float64(t.resolution) * float64(time.Second))
	if period <= 0 {
		period = 1
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.cb, period, t.alarm.AutoReload, t.stop, t.done)

	return nil
}

func (t *SoftTimer) run(cb Callback, period time.Duration, periodic bool, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	start := time.Now()
	var fired uint64

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			due := uint64(now.Sub(start) / period)
			for ; fired < due; fired++ {
				select {
				case <-stop:
					return
				default:
				}

				cb()

				if !periodic {
					return
				}
			}
		}
	}
}

// Stop halts the alarm goroutine and waits for it to exit. It must not be
// called from the callback.
func (t *SoftTimer) Stop() error {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return nil
	}

	close(stop)
	<-done

	return nil
}

func (t *SoftTimer) Disable() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return ErrTimerState
	}
	t.enabled = false

	return nil
}

func (t *SoftTimer) Delete() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil || t.enabled {
		return ErrTimerState
	}
	t.deleted = true
	t.cb = nil

	return nil
}
