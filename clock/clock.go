// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ik5/pcm56play/audio"
)

const (
	// DefaultResolutionHz is the counter frequency of the ESP32 general
	// purpose timer the player was tuned on.
	DefaultResolutionHz = 40_000_000

	// DefaultOversampling is one alarm per sample.
	DefaultOversampling = 1

	// DefaultCalibration leaves the nominal rate untouched.
	DefaultCalibration = 1.0
)

// Source yields samples in alarm context.
type Source interface {
	Get() (audio.StereoSample, bool)
}

// Sink consumes samples in alarm context.
type Sink interface {
	Write(s audio.StereoSample)
}

// Config holds the fixed timing parameters of a clock.
type Config struct {
	SampleRate   int
	Oversampling int
	Calibration  float64
}

func (c Config) withDefaults() Config {
	if c.Oversampling == 0 {
		c.Oversampling = DefaultOversampling
	}
	if c.Calibration == 0 {
		c.Calibration = DefaultCalibration
	}

	return c
}

// AlarmTicks converts a sample rate into an alarm period in timer ticks.
func AlarmTicks(resolutionHz uint64, sampleRate, oversampling int, calibration float64) (uint64, error) {
	if resolutionHz == 0 || sampleRate <= 0 || oversampling <= 0 || calibration <= 0 {
		return 0, ErrInvalidRate
	}

	ticks := uint64(float64(resolutionHz) * calibration / float64(sampleRate*oversampling))
	if ticks == 0 {
		return 0, fmt.Errorf("%w: %d Hz exceeds timer resolution", ErrInvalidRate, sampleRate)
	}

	return ticks, nil
}

// SampleClock drives a Sink from a Source at a fixed rate.
type SampleClock struct {
	timer  Timer
	ticks  uint64
	fired  atomic.Uint64
	closed atomic.Bool
}

// New arms t to move one sample from src to sink per alarm and starts it.
// A setup failure is wrapped in ErrTimerSetup; the timer is released
// before returning.
func New(t Timer, src Source, sink Sink, cfg Config) (*SampleClock, error) {
	cfg = cfg.withDefaults()

	ticks, err := AlarmTicks(t.ResolutionHz(), cfg.SampleRate, cfg.Oversampling, cfg.Calibration)
	if err != nil {
		return nil, err
	}

	sc := &SampleClock{timer: t, ticks: ticks}

	cb := func() bool {
		if s, ok := src.Get(); ok {
			sink.Write(s)
		}
		sc.fired.Add(1)

		return true
	}

	if err := t.RegisterCallback(cb); err != nil {
		return nil, setupError("register callback", err, t.Delete())
	}

	if err := t.Enable(); err != nil {
		return nil, setupError("enable", err, t.Delete())
	}

	alarm := Alarm{Count: ticks, AutoReload: true}
	if err := t.SetAlarm(alarm); err != nil {
		return nil, setupError("set alarm", err, t.Disable(), t.Delete())
	}

	if err := t.Start(); err != nil {
		return nil, setupError("start", err, t.Disable(), t.Delete())
	}

	return sc, nil
}

func setupError(step string, err error, cleanup ...error) error {
	return fmt.Errorf("%w: %s: %w", ErrTimerSetup, step, errors.Join(append([]error{err}, cleanup...)...))
}

// AlarmTicks is the alarm period in timer ticks.
func (sc *SampleClock) AlarmTicks() uint64 { return sc.ticks }

// Fired counts callbacks run so far.
func (sc *SampleClock) Fired() uint64 { return sc.fired.Load() }

// Close stops, disables and deletes the timer. It is safe to call more
// than once; only the first call touches the timer.
func (sc *SampleClock) Close() error {
	if !sc.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if err := sc.timer.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop: %w", err))
	}
	if err := sc.timer.Disable(); err != nil {
		errs = append(errs, fmt.Errorf("disable: %w", err))
	}
	if err := sc.timer.Delete(); err != nil {
		errs = append(errs, fmt.Errorf("delete: %w", err))
	}

	return errors.Join(errs...)
}
