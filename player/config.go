// SPDX-License-Identifier: EPL-2.0

package player

import (
	"time"

	"github.com/ik5/pcm56play/clock"
	"github.com/ik5/pcm56play/dac"
)

const (
	DefaultMaxSampleRate = 44100
	DefaultMaxSourceRate = 192000
	DefaultBufferSize    = 4608
	DefaultBackoff       = time.Second
	DefaultIdlePoll      = 25 * time.Millisecond

	// DefaultCalibration trims the alarm period of the reference board
	// so its sample clock matches the nominal rate.
	DefaultCalibration = 0.995428
)

// DefaultPins is the wiring of the reference board.
var DefaultPins = dac.PinConfig{Clock: 14, Ch1Data: 26, Ch2Data: 25, LatchEnable: 27}

// Config is fixed for the lifetime of a Player.
type Config struct {
	Pins dac.PinConfig

	// MaxSampleRate is the fastest rate the DAC is clocked at. Faster
	// streams are resampled down to it.
	MaxSampleRate int
	// MaxSourceRate rejects faster streams.
	MaxSourceRate int
	// SampleRate is the output rate Run asks for, 0 follows the stream.
	SampleRate int
	Oversampling  int
	Calibration   float64

	// BufferSize is the capacity of each buffer slot in samples.
	BufferSize int
	OutputBits int

	// Backoff is the pause after a failed track and between album tracks.
	Backoff time.Duration
	// IdlePoll is how often Run looks for commands while idle.
	IdlePoll time.Duration
}

func DefaultConfig() Config {
	return Config{
		Pins:          DefaultPins,
		MaxSampleRate: DefaultMaxSampleRate,
		MaxSourceRate: DefaultMaxSourceRate,
		Oversampling:  clock.DefaultOversampling,
		Calibration:   DefaultCalibration,
		BufferSize:    DefaultBufferSize,
		OutputBits:    16,
		Backoff:       DefaultBackoff,
		IdlePoll:      DefaultIdlePoll,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxSampleRate <= 0 {
		c.MaxSampleRate = d.MaxSampleRate
	}
	if c.MaxSourceRate <= 0 {
		c.MaxSourceRate = d.MaxSourceRate
	}
	if c.Oversampling <= 0 {
		c.Oversampling = d.Oversampling
	}
	if c.Calibration <= 0 {
		c.Calibration = d.Calibration
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.OutputBits <= 0 {
		c.OutputBits = d.OutputBits
	}
	if c.Backoff <= 0 {
		c.Backoff = d.Backoff
	}
	if c.IdlePoll <= 0 {
		c.IdlePoll = d.IdlePoll
	}

	return c
}
